package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/store-ratings/internal/domain"
)

// UsersRepository persists platform accounts.
type UsersRepository struct {
	pool *pgxpool.Pool
}

const userColumns = `id, name, email, address, role, created_at, updated_at`

// UserCreateParams bundles the fields required to create a user.
type UserCreateParams struct {
	Name         string
	Email        string
	Address      string
	Role         domain.Role
	PasswordHash string
}

// Create inserts a user. A taken email yields ErrConflict.
func (r *UsersRepository) Create(ctx context.Context, params UserCreateParams) (domain.User, error) {
	query := fmt.Sprintf(`
        INSERT INTO users (id, name, email, address, role, password_hash)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING %s
    `, userColumns)
	row := r.pool.QueryRow(ctx, query, uuid.NewString(), params.Name, strings.ToLower(params.Email), params.Address, string(params.Role), params.PasswordHash)
	user, err := scanUser(row)
	if err != nil {
		return domain.User{}, translate("create user", err)
	}
	return user, nil
}

// GetByID fetches a user by identifier.
func (r *UsersRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return domain.User{}, translate("get user", err)
	}
	return user, nil
}

// GetByEmail returns the user and its password hash for login.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (domain.User, string, error) {
	query := fmt.Sprintf(`SELECT %s, password_hash FROM users WHERE email = $1`, userColumns)
	var (
		user domain.User
		role string
		hash string
	)
	err := r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))).Scan(
		&user.ID, &user.Name, &user.Email, &user.Address, &role, &user.CreatedAt, &user.UpdatedAt, &hash,
	)
	if err != nil {
		return domain.User{}, "", translate("get user by email", err)
	}
	user.Role = domain.Role(role)
	return user, hash, nil
}

// PasswordHash returns the stored hash of a user.
func (r *UsersRepository) PasswordHash(ctx context.Context, id string) (string, error) {
	var hash string
	if err := r.pool.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1`, id).Scan(&hash); err != nil {
		return "", translate("get password hash", err)
	}
	return hash, nil
}

// List returns users whose name or email contains search, case-insensitively.
// Rows come in storage order, creation time then id.
func (r *UsersRepository) List(ctx context.Context, search string) ([]domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users`, userColumns)
	var args []interface{}
	if search != "" {
		query += ` WHERE name ILIKE $1 OR email ILIKE $1`
		args = append(args, likePattern(search))
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate("list users", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, translate("scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list users", err)
	}
	return users, nil
}

// UpdatePassword replaces the stored hash.
func (r *UsersRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
	if err != nil {
		return translate("update password", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update password: %w", ErrNotFound)
	}
	return nil
}

// Count returns the number of users.
func (r *UsersRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, translate("count users", err)
	}
	return n, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		user domain.User
		role string
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Address, &role, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return domain.User{}, err
	}
	user.Role = domain.Role(role)
	return user, nil
}
