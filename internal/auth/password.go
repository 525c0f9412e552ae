// Package auth hashes passwords, issues and verifies session tokens, and keeps
// track of tokens revoked by logout.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Clark-Hu/store-ratings/internal/domain"
)

// Hasher hashes passwords with bcrypt.
type Hasher struct {
	cost int
}

// NewHasher returns a hasher with the given cost, or bcrypt's default when
// cost is out of range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare returns domain.ErrUnauthorized when password does not match hash.
func (h *Hasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return domain.ErrUnauthorized
	default:
		return fmt.Errorf("compare password: %w", err)
	}
}
