package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Clark-Hu/store-ratings/internal/auth"
	"github.com/Clark-Hu/store-ratings/internal/config"
	"github.com/Clark-Hu/store-ratings/internal/domain"
	"github.com/Clark-Hu/store-ratings/internal/repository"
)

// HealthChecker reports whether the backing database is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg     config.Config
	health  HealthChecker
	repo    *repository.Repository
	hasher  *auth.Hasher
	tokens  *auth.Tokens
	revoker auth.Revoker
	logger  *log.Logger
	router  chi.Router
	httpSrv *http.Server
}

// Deps bundles the collaborators a Server needs.
type Deps struct {
	Health  HealthChecker
	Repo    *repository.Repository
	Hasher  *auth.Hasher
	Tokens  *auth.Tokens
	Revoker auth.Revoker
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, deps Deps, logger *log.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if logger == nil {
		logger = log.Default()
	}
	revoker := deps.Revoker
	if revoker == nil {
		revoker = auth.NewMemoryRevoker()
	}

	s := &Server{
		cfg:     cfg,
		health:  deps.Health,
		repo:    deps.Repo,
		hasher:  deps.Hasher,
		tokens:  deps.Tokens,
		revoker: revoker,
		logger:  logger,
		router:  r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Post("/logout", s.handleLogout)
			r.Post("/auth/update-password", s.handleUpdatePassword)
			r.Get("/stores", s.handleListStores)
			r.Put("/stores/{id}", s.handleUpdateStore)
			r.Get("/stores/{id}/ratings", s.handleListStoreRatings)
			r.Get("/store-owner/{id}/ratings", s.handleListOwnerRatings)

			r.With(s.requireRole(domain.RoleAdmin)).Get("/users", s.handleListUsers)
			r.With(s.requireRole(domain.RoleAdmin)).Post("/admin/users", s.handleCreateUser)
			r.With(s.requireRole(domain.RoleAdmin)).Get("/stats", s.handleStats)
			r.With(s.requireRole(domain.RoleAdmin)).Post("/stores", s.handleCreateStore)
			r.With(s.requireRole(domain.RoleUser)).Post("/ratings", s.handleSubmitRating)
		})
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start boots the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.health == nil || s.health.HealthCheck(ctx) != nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
