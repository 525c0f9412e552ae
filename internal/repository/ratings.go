package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/store-ratings/internal/domain"
)

// RatingsRepository persists ratings, one per (user, store) pair.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

const ratingColumns = `id, user_id, store_id, rating, comment, created_at, updated_at`

// RatingUpsertParams captures the payload required to upsert a rating.
type RatingUpsertParams struct {
	UserID  string
	StoreID string
	Value   int
	Comment string
}

// Upsert inserts or replaces the rating of a user for a store and reports
// whether it was newly created. Concurrent upserts for the same pair resolve to
// the last write; the unique constraint never lets a duplicate through.
func (r *RatingsRepository) Upsert(ctx context.Context, params RatingUpsertParams) (domain.Rating, bool, error) {
	const query = `
        INSERT INTO ratings (id, user_id, store_id, rating, comment)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (user_id, store_id)
        DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, updated_at = now()
        RETURNING id, user_id, store_id, rating, comment, created_at, updated_at, (xmax = 0) AS inserted
    `

	var rating domain.Rating
	var inserted bool
	err := r.pool.QueryRow(ctx, query, uuid.NewString(), params.UserID, params.StoreID, params.Value, params.Comment).Scan(
		&rating.ID,
		&rating.UserID,
		&rating.StoreID,
		&rating.Value,
		&rating.Comment,
		&rating.CreatedAt,
		&rating.UpdatedAt,
		&inserted,
	)
	if err != nil {
		return domain.Rating{}, false, translate("upsert rating", err)
	}
	return rating, inserted, nil
}

// ListForStores returns every rating of the given stores, the input of the
// per-store aggregation.
func (r *RatingsRepository) ListForStores(ctx context.Context, storeIDs []string) ([]domain.Rating, error) {
	if len(storeIDs) == 0 {
		return []domain.Rating{}, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM ratings WHERE store_id = ANY($1) ORDER BY created_at, id`, ratingColumns)
	return r.list(ctx, query, storeIDs)
}

func (r *RatingsRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Rating, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate("list ratings", err)
	}
	defer rows.Close()

	ratings := make([]domain.Rating, 0)
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, translate("scan rating", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list ratings", err)
	}
	return ratings, nil
}

const ratingViewQuery = `
    SELECT r.id, r.user_id, r.store_id, r.rating, r.comment, r.created_at, r.updated_at,
           u.name, u.email, s.name
    FROM ratings r
    JOIN users u ON u.id = r.user_id
    JOIN stores s ON s.id = r.store_id
`

// ListByStore returns the ratings of a store with author and store details.
func (r *RatingsRepository) ListByStore(ctx context.Context, storeID string) ([]domain.RatingView, error) {
	return r.listViews(ctx, ratingViewQuery+` WHERE r.store_id = $1 ORDER BY r.created_at DESC, r.id`, storeID)
}

// ListByOwner returns the ratings of every store an owner is linked to.
func (r *RatingsRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.RatingView, error) {
	return r.listViews(ctx, ratingViewQuery+` WHERE s.owner_id = $1 ORDER BY r.created_at DESC, r.id`, ownerID)
}

func (r *RatingsRepository) listViews(ctx context.Context, query string, args ...interface{}) ([]domain.RatingView, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate("list rating views", err)
	}
	defer rows.Close()

	views := make([]domain.RatingView, 0)
	for rows.Next() {
		var v domain.RatingView
		if err := rows.Scan(
			&v.ID, &v.UserID, &v.StoreID, &v.Value, &v.Comment, &v.CreatedAt, &v.UpdatedAt,
			&v.UserName, &v.UserEmail, &v.StoreName,
		); err != nil {
			return nil, translate("scan rating view", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list rating views", err)
	}
	return views, nil
}

// Count returns the number of ratings.
func (r *RatingsRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ratings`).Scan(&n); err != nil {
		return 0, translate("count ratings", err)
	}
	return n, nil
}

func scanRating(row pgx.Row) (domain.Rating, error) {
	var rating domain.Rating
	if err := row.Scan(
		&rating.ID,
		&rating.UserID,
		&rating.StoreID,
		&rating.Value,
		&rating.Comment,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	); err != nil {
		return domain.Rating{}, err
	}
	return rating, nil
}
