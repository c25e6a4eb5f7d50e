package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is not present or has expired.
var ErrMiss = errors.New("cache miss")

// Cache is a key/value cache with per-key TTL. Entries are derived data and
// rebuildable; the cache is never the source of truth.
type Cache interface {
	// Get returns the value for key, or ErrMiss.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key with the given TTL. A zero TTL means no
	// expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// IncrementBelow atomically increments the counter at key and
	// refreshes its TTL, but only while the current count is below limit.
	// A missing or expired key counts from 1. At or above limit nothing is
	// written, so the key still expires ttl after the last successful
	// increment; incremented reports whether this call wrote. The check
	// and the increment are a single operation at the cache layer so
	// concurrent callers never race on a stale read.
	IncrementBelow(ctx context.Context, key string, limit int64, ttl time.Duration) (count int64, incremented bool, err error)
}
