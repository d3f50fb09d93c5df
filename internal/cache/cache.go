// Package cache holds rendered status snapshots for a freshness window.
package cache

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Cache stores JSON-serializable values with a TTL
type Cache interface {
	// Get decodes the value at key into dest and reports whether it was found
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

// New returns a Redis-backed cache when client is set, otherwise an
// in-process one.
func New(client *redis.Client) Cache {
	if client != nil {
		return NewRedisCache(client)
	}
	return NewMemoryCache()
}
