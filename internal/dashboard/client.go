// Package dashboard implements the admin, owner and user dashboards on top of
// a Client that talks to the rating platform.
//
// Every refresh replaces a dashboard's data as a whole snapshot. Responses that
// belong to a request superseded by a newer one are dropped, and a failed
// request leaves the previous snapshot in place and records a Notice instead.
package dashboard

import (
	"context"

	"github.com/Clark-Hu/store-ratings/internal/domain"
	"github.com/Clark-Hu/store-ratings/internal/query"
)

// Client is the set of platform operations the dashboards consume.
type Client interface {
	ListUsers(ctx context.Context, p query.Params) ([]domain.User, error)
	// ListStores annotates each store with its aggregates and, when
	// requestingUserID is set, with that user's own rating.
	ListStores(ctx context.Context, p query.Params, requestingUserID string) ([]domain.StoreView, error)
	ListRatingsForStore(ctx context.Context, storeID string) ([]domain.RatingView, error)
	ListRatingsForOwner(ctx context.Context, ownerID string) ([]domain.RatingView, error)
	UpsertRating(ctx context.Context, in domain.RatingInput) (domain.Rating, bool, error)
	CreateUser(ctx context.Context, in domain.NewUser) (domain.User, error)
	CreateStore(ctx context.Context, in domain.NewStore) (domain.Store, error)
	UpdateStore(ctx context.Context, storeID string, in domain.StoreUpdate) (domain.Store, error)
	UpdatePassword(ctx context.Context, in domain.PasswordChange) error
	Stats(ctx context.Context) (domain.Stats, error)
}
