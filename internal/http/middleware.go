package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/Clark-Hu/store-ratings/internal/auth"
	"github.com/Clark-Hu/store-ratings/internal/domain"
)

type ctxKey int

const claimsKey ctxKey = iota

// authenticate admits requests carrying a valid, unrevoked bearer token and
// stores its claims on the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
			return
		}
		claims, err := s.tokens.Parse(raw)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
			return
		}
		revoked, err := s.revoker.IsRevoked(r.Context(), claims.TokenID)
		if err != nil {
			s.logger.Printf("revocation lookup error: %v", err)
			s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Unable to verify session")
			return
		}
		if revoked {
			s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Session has been logged out")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// requireRole rejects authenticated callers whose role is not listed.
func (s *Server) requireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := claimsFrom(r.Context())
			if !ok {
				s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Not allowed")
		})
	}
}

func claimsFrom(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(auth.Claims)
	return c, ok
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}
