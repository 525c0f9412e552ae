package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/store-ratings/internal/domain"
	"github.com/Clark-Hu/store-ratings/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = domain.ErrNotFound

// ErrConflict indicates a unique constraint rejected the write.
var ErrConflict = domain.ErrConflict

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Users   *UsersRepository
	Stores  *StoresRepository
	Ratings *RatingsRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Users:   &UsersRepository{pool: pool},
		Stores:  &StoresRepository{pool: pool},
		Ratings: &RatingsRepository{pool: pool},
	}
}

// translate maps driver errors onto the domain sentinels.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, ErrConflict)
		case "23503":
			return fmt.Errorf("%s: referenced row missing: %w", op, ErrNotFound)
		case "23514":
			return fmt.Errorf("%s: %w", op, domain.FieldError(pgErr.ConstraintName, "value violates "+pgErr.ConstraintName))
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// likePattern builds an ILIKE substring pattern with wildcards escaped.
func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(search) + "%"
}
