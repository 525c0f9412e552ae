package httpserver

import (
	"net/http"
	"strings"

	"github.com/Clark-Hu/store-ratings/internal/domain"
	"github.com/Clark-Hu/store-ratings/internal/repository"
)

// handleSubmitRating creates the caller's rating for a store, or replaces it
// when one already exists: 201 on create, 200 on replace.
func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req ratingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if req.UserID != "" && req.UserID != claims.UserID {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Not allowed")
		return
	}
	in := domain.RatingInput{
		UserID:  claims.UserID,
		StoreID: strings.TrimSpace(req.StoreID),
		Value:   req.Rating,
		Comment: req.Comment,
	}
	if err := in.Validate(); err != nil {
		s.respondDomainError(w, "submit rating", err)
		return
	}

	rating, inserted, err := s.repo.Ratings.Upsert(r.Context(), repository.RatingUpsertParams{
		UserID:  in.UserID,
		StoreID: in.StoreID,
		Value:   in.Value,
		Comment: in.Comment,
	})
	if err != nil {
		s.respondDomainError(w, "submit rating", err)
		return
	}

	status := http.StatusOK
	if inserted {
		status = http.StatusCreated
	}
	s.respondJSON(w, status, toRatingResponse(rating))
}
