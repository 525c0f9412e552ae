package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/store-ratings/internal/domain"
)

// StoresRepository persists stores. Aggregates are never stored here; they are
// derived from the ratings table on read.
type StoresRepository struct {
	pool *pgxpool.Pool
}

const storeColumns = `id, name, email, address, COALESCE(owner_id, ''), created_at, updated_at`

// StoreCreateParams bundles the fields required to create a store.
type StoreCreateParams struct {
	Name    string
	Email   string
	Address string
	OwnerID string
}

// StoreUpdateParams carries the owner-editable fields.
type StoreUpdateParams struct {
	Name    string
	Email   string
	Address string
}

// Create inserts a store. An OwnerID that names no user yields ErrNotFound.
func (r *StoresRepository) Create(ctx context.Context, params StoreCreateParams) (domain.Store, error) {
	query := fmt.Sprintf(`
        INSERT INTO stores (id, name, email, address, owner_id)
        VALUES ($1,$2,$3,$4,NULLIF($5, ''))
        RETURNING %s
    `, storeColumns)
	row := r.pool.QueryRow(ctx, query, uuid.NewString(), params.Name, params.Email, params.Address, params.OwnerID)
	s, err := scanStore(row)
	if err != nil {
		return domain.Store{}, translate("create store", err)
	}
	return s, nil
}

// GetByID fetches a store by identifier.
func (r *StoresRepository) GetByID(ctx context.Context, id string) (domain.Store, error) {
	query := fmt.Sprintf(`SELECT %s FROM stores WHERE id = $1`, storeColumns)
	s, err := scanStore(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return domain.Store{}, translate("get store", err)
	}
	return s, nil
}

// List returns stores whose name or address contains search,
// case-insensitively, in storage order: creation time then id.
func (r *StoresRepository) List(ctx context.Context, search string) ([]domain.Store, error) {
	query := fmt.Sprintf(`SELECT %s FROM stores`, storeColumns)
	var args []interface{}
	if search != "" {
		query += ` WHERE name ILIKE $1 OR address ILIKE $1`
		args = append(args, likePattern(search))
	}
	query += ` ORDER BY created_at, id`
	return r.list(ctx, query, args...)
}

func (r *StoresRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Store, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate("list stores", err)
	}
	defer rows.Close()

	stores := make([]domain.Store, 0)
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, translate("scan store", err)
		}
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list stores", err)
	}
	return stores, nil
}

// Update replaces the editable fields of a store.
func (r *StoresRepository) Update(ctx context.Context, id string, params StoreUpdateParams) (domain.Store, error) {
	query := fmt.Sprintf(`
        UPDATE stores
        SET name = $2,
            email = $3,
            address = $4,
            updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, storeColumns)
	s, err := scanStore(r.pool.QueryRow(ctx, query, id, params.Name, params.Email, params.Address))
	if err != nil {
		return domain.Store{}, translate("update store", err)
	}
	return s, nil
}

// Count returns the number of stores.
func (r *StoresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM stores`).Scan(&n); err != nil {
		return 0, translate("count stores", err)
	}
	return n, nil
}

func scanStore(row pgx.Row) (domain.Store, error) {
	var s domain.Store
	if err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Address, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return domain.Store{}, err
	}
	return s, nil
}
