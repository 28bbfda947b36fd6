package ratelimiter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter decides whether the caller identified by key may proceed. When it
// may not, retryAfter is a hint for the Retry-After header.
type Limiter interface {
	Allow(ctx context.Context, key string) (ok bool, retryAfter time.Duration, err error)
}

type redisWindow struct {
	rdb    *redis.Client
	prefix string
	window time.Duration
}

// NewRedisWindow allows one call per key per window, shared across instances.
func NewRedisWindow(rdb *redis.Client, prefix string, window time.Duration) Limiter {
	return &redisWindow{rdb: rdb, prefix: prefix, window: window}
}

func (l *redisWindow) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := fmt.Sprintf("rate_limit:%s:%s", l.prefix, key)

	wasSet, err := l.rdb.SetNX(ctx, k, "locked", l.window).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	if wasSet {
		return true, 0, nil
	}

	ttl, err := l.rdb.TTL(ctx, k).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}
	return false, ttl, nil
}

type memoryBucket struct {
	mu       sync.Mutex
	limiters map[string]*entry
	limit    rate.Limit
	burst    int
	idle     time.Duration
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemory keeps one token bucket per key in process. Buckets idle for
// longer than ten refill periods are dropped on the next call.
func NewMemory(limit rate.Limit, burst int) Limiter {
	idle := 10 * time.Minute
	if limit > 0 {
		idle = 10 * time.Duration(float64(time.Second)/float64(limit))
	}
	return &memoryBucket{
		limiters: make(map[string]*entry),
		limit:    limit,
		burst:    burst,
		idle:     idle,
	}
}

func (l *memoryBucket) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for k, e := range l.limiters {
		if now.Sub(e.lastSeen) > l.idle {
			delete(l.limiters, k)
		}
	}

	e, ok := l.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now

	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay, nil
	}
	return true, 0, nil
}

// New picks the shared redis window when a client is configured and falls
// back to a per-process bucket of one call per window.
func New(rdb *redis.Client, prefix string, window time.Duration) Limiter {
	if rdb != nil {
		return NewRedisWindow(rdb, prefix, window)
	}
	return NewMemory(rate.Every(window), 1)
}
