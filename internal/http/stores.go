package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/store-ratings/internal/aggregate"
	"github.com/Clark-Hu/store-ratings/internal/auth"
	"github.com/Clark-Hu/store-ratings/internal/domain"
	"github.com/Clark-Hu/store-ratings/internal/query"
	"github.com/Clark-Hu/store-ratings/internal/repository"
)

func (s *Server) handleListStores(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	values := r.URL.Query()
	p := query.StoreSpec.Normalize(parseListParams(values))

	userID := strings.TrimSpace(values.Get("userId"))
	if userID != "" && userID != claims.UserID && claims.Role != domain.RoleAdmin {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Not allowed")
		return
	}

	stores, err := s.repo.Stores.List(r.Context(), p.Search)
	if err != nil {
		s.respondDomainError(w, "list stores", err)
		return
	}
	views, err := s.annotate(r.Context(), stores, userID)
	if err != nil {
		s.respondDomainError(w, "list stores", err)
		return
	}
	if sortRequested(values) {
		views = query.Stores(views, p)
	} else {
		views = query.Filter(views, query.StoreSpec, p)
	}

	resp := make([]storeResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, toStoreResponse(v))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// annotate derives each store's aggregates from its ratings and, when userID
// is set, attaches that user's own rating.
func (s *Server) annotate(ctx context.Context, stores []domain.Store, userID string) ([]domain.StoreView, error) {
	ids := make([]string, 0, len(stores))
	for _, st := range stores {
		ids = append(ids, st.ID)
	}
	ratings, err := s.repo.Ratings.ListForStores(ctx, ids)
	if err != nil {
		return nil, err
	}
	summaries := aggregate.ByStore(ratings)
	own := make(map[string]domain.Rating)
	if userID != "" {
		for _, rt := range ratings {
			if rt.UserID == userID {
				own[rt.StoreID] = rt
			}
		}
	}

	views := make([]domain.StoreView, 0, len(stores))
	for _, st := range stores {
		sum := summaries[st.ID]
		v := domain.StoreView{
			Store:         st,
			AverageRating: sum.Average,
			TotalRatings:  sum.Count,
		}
		if rt, ok := own[st.ID]; ok {
			v.MyRating = rt.Value
			v.MyComment = rt.Comment
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *Server) handleCreateStore(w http.ResponseWriter, r *http.Request) {
	var req storeCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	in := domain.NewStore{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
		OwnerID: req.OwnerID,
	}.Normalize()
	if err := in.Validate(); err != nil {
		s.respondDomainError(w, "create store", err)
		return
	}
	if in.OwnerID != "" {
		owner, err := s.repo.Users.GetByID(r.Context(), in.OwnerID)
		if err != nil {
			s.respondDomainError(w, "create store", err)
			return
		}
		if owner.Role != domain.RoleStoreOwner {
			s.respondDomainError(w, "create store", domain.FieldError("owner_id", "owner must have the store_owner role"))
			return
		}
	}

	store, err := s.repo.Stores.Create(r.Context(), repository.StoreCreateParams{
		Name:    in.Name,
		Email:   in.Email,
		Address: in.Address,
		OwnerID: in.OwnerID,
	})
	if err != nil {
		s.respondDomainError(w, "create store", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, toStoreResponse(domain.StoreView{Store: store}))
}

func (s *Server) handleUpdateStore(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	store, ok := s.ownedStore(w, r, claims)
	if !ok {
		return
	}

	var req storeUpdateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	in := domain.StoreUpdate{Name: req.Name, Email: req.Email, Address: req.Address}.Normalize()
	if err := in.Validate(); err != nil {
		s.respondDomainError(w, "update store", err)
		return
	}

	updated, err := s.repo.Stores.Update(r.Context(), store.ID, repository.StoreUpdateParams{
		Name:    in.Name,
		Email:   in.Email,
		Address: in.Address,
	})
	if err != nil {
		s.respondDomainError(w, "update store", err)
		return
	}
	views, err := s.annotate(r.Context(), []domain.Store{updated}, "")
	if err != nil {
		s.respondDomainError(w, "update store", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toStoreResponse(views[0]))
}

func (s *Server) handleListStoreRatings(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	store, ok := s.ownedStore(w, r, claims)
	if !ok {
		return
	}
	views, err := s.repo.Ratings.ListByStore(r.Context(), store.ID)
	if err != nil {
		s.respondDomainError(w, "list store ratings", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toRatingViewResponses(views))
}

func (s *Server) handleListOwnerRatings(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())
	ownerID := chi.URLParam(r, "id")
	if ownerID == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "missing owner id")
		return
	}
	if ownerID != claims.UserID && claims.Role != domain.RoleAdmin {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Not allowed")
		return
	}
	views, err := s.repo.Ratings.ListByOwner(r.Context(), ownerID)
	if err != nil {
		s.respondDomainError(w, "list owner ratings", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toRatingViewResponses(views))
}

// ownedStore loads the {id} store and checks the caller is an admin or its
// owner. It writes the error response itself when it returns false.
func (s *Server) ownedStore(w http.ResponseWriter, r *http.Request, claims auth.Claims) (domain.Store, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "missing store id")
		return domain.Store{}, false
	}
	store, err := s.repo.Stores.GetByID(r.Context(), id)
	if err != nil {
		s.respondDomainError(w, "fetch store", err)
		return domain.Store{}, false
	}
	if claims.Role == domain.RoleAdmin {
		return store, true
	}
	if claims.Role != domain.RoleStoreOwner || store.OwnerID != claims.UserID {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Not allowed")
		return domain.Store{}, false
	}
	return store, true
}
