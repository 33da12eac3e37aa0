package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts hits per key in fixed windows.
type RateLimiter interface {
	// Allow records one hit for key and reports whether it is within limit.
	Allow(ctx context.Context, key string) (bool, error)
}

const ratePrefix = "campuslink:rate:"

type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, limit: limit, window: window}
}

// Allow uses INCR and sets the expiry on the first hit of a window.
func (r *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := ratePrefix + key

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return incr.Val() <= int64(r.limit), nil
}

type window struct {
	count   int
	resetAt time.Time
}

type MemoryRateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	windows map[string]*window
	now     func() time.Time
}

func NewMemoryRateLimiter(limit int, win time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		limit:   limit,
		window:  win,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (m *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		for k, old := range m.windows {
			if !now.Before(old.resetAt) {
				delete(m.windows, k)
			}
		}
		w = &window{resetAt: now.Add(m.window)}
		m.windows[key] = w
	}
	w.count++
	return w.count <= m.limit, nil
}
