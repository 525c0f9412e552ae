package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "auth:revoked:"

// Revoker remembers logged-out tokens until they would have expired anyway.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ConnectRedis builds a client from a redis:// URL or a host:port address.
func ConnectRedis(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// RedisRevoker stores revoked token ids as keys with a TTL.
type RedisRevoker struct {
	client *redis.Client
}

// NewRedisRevoker returns a Revoker backed by client.
func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{client: client}
}

// Revoke marks tokenID revoked until expiresAt. Expired tokens are ignored.
func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID has a live revocation key.
func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

// MemoryRevoker is the single-process Revoker used when no Redis is configured.
type MemoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevoker returns an empty in-process Revoker.
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{revoked: make(map[string]time.Time), now: time.Now}
}

// Revoke records tokenID until expiresAt and drops entries that have expired.
func (m *MemoryRevoker) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for id, exp := range m.revoked {
		if !exp.After(now) {
			delete(m.revoked, id)
		}
	}
	if expiresAt.After(now) {
		m.revoked[tokenID] = expiresAt
	}
	return nil
}

// IsRevoked reports whether tokenID was revoked and has not expired yet.
func (m *MemoryRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.revoked[tokenID]
	return ok && exp.After(m.now()), nil
}
