package httpserver

import (
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Clark-Hu/store-ratings/internal/domain"
	"github.com/Clark-Hu/store-ratings/internal/query"
	"github.com/Clark-Hu/store-ratings/internal/repository"
)

// parseListParams reads the shared list options. Unknown values are kept
// as-is and resolved by the query engine's fallbacks. Search text is kept
// verbatim.
func parseListParams(values url.Values) query.Params {
	return query.Params{
		Search:    values.Get("search"),
		SortField: strings.TrimSpace(values.Get("sortBy")),
		Order:     query.ParseOrder(values.Get("order")),
		Bucket:    domain.ParseBucket(strings.TrimSpace(values.Get("filter"))),
	}
}

// sortRequested reports whether the caller asked for an ordering. Without one
// lists keep storage order (creation time, then id), the fixed base order that
// clients sorting on their own side start from.
func sortRequested(values url.Values) bool {
	return values.Has("sortBy") || values.Has("order")
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	p := query.UserSpec.Normalize(parseListParams(r.URL.Query()))
	users, err := s.repo.Users.List(r.Context(), p.Search)
	if err != nil {
		s.respondDomainError(w, "list users", err)
		return
	}
	if sortRequested(r.URL.Query()) {
		users = query.Users(users, p)
	} else {
		users = query.Filter(users, query.UserSpec, p)
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	user, err := s.createUser(r, domain.NewUser{
		Name:     req.Name,
		Email:    req.Email,
		Address:  req.Address,
		Role:     domain.Role(req.Role),
		Password: req.Password,
	})
	if err != nil {
		s.respondDomainError(w, "create user", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) createUser(r *http.Request, in domain.NewUser) (domain.User, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.User{}, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, err
	}
	return s.repo.Users.Create(r.Context(), repository.UserCreateParams{
		Name:         in.Name,
		Email:        in.Email,
		Address:      in.Address,
		Role:         in.Role,
		PasswordHash: hash,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var stats statsResponse
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.repo.Users.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalStores, err = s.repo.Stores.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalRatings, err = s.repo.Ratings.Count(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.respondDomainError(w, "fetch stats", err)
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}
