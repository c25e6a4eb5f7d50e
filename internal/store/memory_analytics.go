package store

import (
	"context"
	"sync"
	"time"

	"github.com/shortloop/shortloop/internal/analytics"
)

// MemoryAnalyticsStore is an in-memory implementation of analytics.Store.
type MemoryAnalyticsStore struct {
	mu         sync.RWMutex
	events     []analytics.ClickEvent
	windowDays int
	topLimit   int
}

// NewMemoryAnalyticsStore creates a new in-memory analytics store with the
// default aggregation bounds.
func NewMemoryAnalyticsStore() *MemoryAnalyticsStore {
	return &MemoryAnalyticsStore{
		windowDays: analytics.DefaultStatsWindowDays,
		topLimit:   analytics.DefaultTopLimit,
	}
}

func (m *MemoryAnalyticsStore) LogHit(_ context.Context, event *analytics.ClickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, *event)

	return nil
}

func (m *MemoryAnalyticsStore) Aggregate(_ context.Context, shortCode string) (*analytics.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var filtered []analytics.ClickEvent

	for _, e := range m.events {
		if e.ShortCode == shortCode {
			filtered = append(filtered, e)
		}
	}

	return analytics.Aggregate(filtered, time.Now(), m.windowDays, m.topLimit), nil
}

// Len returns the number of stored events.
func (m *MemoryAnalyticsStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.events)
}

// Compile-time check.
var _ analytics.Store = (*MemoryAnalyticsStore)(nil)
