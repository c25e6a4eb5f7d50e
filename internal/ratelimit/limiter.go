package ratelimit

import (
	"context"
	"time"

	"github.com/shortloop/shortloop/internal/cache"
)

// Limiter decides whether a request from an identity may proceed.
type Limiter interface {
	Allow(ctx context.Context, id Identity) (allowed bool, err error)
}

// FixedWindowLimiter counts requests per identity in discrete windows backed
// by the cache's atomic conditional increment. Denied calls never write, so
// the window always expires relative to the last allowed request; a client
// hammering past the limit does not keep itself locked out. This is not a
// sliding window: the counter resets when its TTL expires, which can admit
// short bursts at window edges. That is an accepted tradeoff of the design.
type FixedWindowLimiter struct {
	cache  cache.Cache
	limit  int64
	window time.Duration
}

// NewFixedWindowLimiter creates a new fixed-window rate limiter.
func NewFixedWindowLimiter(c cache.Cache, limit int64, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		cache:  c,
		limit:  limit,
		window: window,
	}
}

func (l *FixedWindowLimiter) Allow(ctx context.Context, id Identity) (bool, error) {
	_, incremented, err := l.cache.IncrementBelow(ctx, id.Key(), l.limit, l.window)
	if err != nil {
		return false, err
	}

	return incremented, nil
}

// Compile-time check.
var _ Limiter = (*FixedWindowLimiter)(nil)
