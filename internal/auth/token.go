package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Clark-Hu/store-ratings/internal/domain"
)

// Claims is what a verified session token says about its holder.
type Claims struct {
	TokenID   string
	UserID    string
	Email     string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a token service. The secret must not be empty.
func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for user. Each token carries a fresh id so it can be
// revoked on its own.
func (t *Tokens) Issue(user domain.User) (string, Claims, error) {
	now := t.now().UTC().Truncate(time.Second)
	c := Claims{
		TokenID:   uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		IssuedAt:  now,
		ExpiresAt: now.Add(t.ttl),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email: c.Email,
		Role:  string(c.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        c.TokenID,
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, c, nil
}

// Parse verifies raw and returns its claims. Every failure wraps
// domain.ErrUnauthorized.
func (t *Tokens) Parse(raw string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &tokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claims{}, fmt.Errorf("%w: invalid token claims", domain.ErrUnauthorized)
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return Claims{}, fmt.Errorf("%w: token has no subject or id", domain.ErrUnauthorized)
	}
	return Claims{
		TokenID:   claims.ID,
		UserID:    claims.Subject,
		Email:     claims.Email,
		Role:      role,
		IssuedAt:  claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}
