package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationCache remembers revoked refresh token ids so hot refresh paths can
// skip the database. It is advisory: a miss means "ask the database".
type RevocationCache interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
	MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error
	Ping(ctx context.Context) error
}

// RedisRevocationCache stores one key per revoked jti.
// Key format: revoked:<jti>
type RedisRevocationCache struct {
	client *redis.Client
}

// NewRedisRevocationCache wraps a connected client.
func NewRedisRevocationCache(client *redis.Client) *RedisRevocationCache {
	return &RedisRevocationCache{client: client}
}

// IsRevoked reports whether jti has been marked revoked.
func (c *RedisRevocationCache) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

// MarkRevoked records jti until the token would have expired anyway.
func (c *RedisRevocationCache) MarkRevoked(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, c.key(jti), "1", ttl).Err()
}

// Ping checks the connection.
func (c *RedisRevocationCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *RedisRevocationCache) Close() error {
	return c.client.Close()
}

func (c *RedisRevocationCache) key(jti string) string {
	return "revoked:" + strings.TrimSpace(jti)
}

var _ RevocationCache = (*RedisRevocationCache)(nil)
