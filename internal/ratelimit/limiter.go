// Package ratelimit implements fixed one-minute request windows keyed by
// client identity.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Limiter decides whether a request identified by key fits in the current
// minute window. resetSec is the time left in the window when denied.
type Limiter interface {
	Allow(ctx context.Context, key string, rpm int) (allowed bool, resetSec int, err error)
}

// RedisLimiter shares counters across replicas through Redis
type RedisLimiter struct {
	redis *redis.Client
	now   func() time.Time
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{redis: client, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, rpm int) (bool, int, error) {
	now := l.now().UTC()
	window := now.Unix() / 60
	rk := fmt.Sprintf("rl:%s:%d", key, window)

	pipe := l.redis.TxPipeline()
	incr := pipe.Incr(ctx, rk)
	pipe.Expire(ctx, rk, time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}
	if int(incr.Val()) > rpm {
		return false, 60 - int(now.Unix()%60), nil
	}
	return true, 0, nil
}

// MemoryLimiter keeps per-process counters. Used when Redis is not configured.
type MemoryLimiter struct {
	mu     sync.Mutex
	window int64
	counts map[string]int
	now    func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{counts: make(map[string]int), now: time.Now}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, rpm int) (bool, int, error) {
	now := l.now().UTC()
	window := now.Unix() / 60

	l.mu.Lock()
	defer l.mu.Unlock()
	if window != l.window {
		// new minute, drop all previous counters
		l.window = window
		l.counts = make(map[string]int)
	}
	l.counts[key]++
	if l.counts[key] > rpm {
		return false, 60 - int(now.Unix()%60), nil
	}
	return true, 0, nil
}
