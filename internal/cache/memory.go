package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value   string
	count   int64
	expires time.Time // zero means no expiry
}

func (e *entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && e.expires.Before(now)
}

// Memory is an in-memory Cache with lazy expiry. Used in tests and for
// running without Redis.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewMemory creates a new in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*entry)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || e.expired(time.Now()) {
		delete(m.entries, key)

		return "", ErrMiss
	}

	return e.value, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &entry{value: value}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}

	m.entries[key] = e

	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)

	return nil
}

func (m *Memory) IncrementBelow(_ context.Context, key string, limit int64, ttl time.Duration) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()

	e, ok := m.entries[key]
	if !ok || e.expired(now) {
		e = &entry{}
		m.entries[key] = e
	}

	if e.count >= limit {
		return e.count, false, nil
	}

	e.count++
	e.expires = now.Add(ttl)

	return e.count, true, nil
}

// Compile-time check.
var _ Cache = (*Memory)(nil)
