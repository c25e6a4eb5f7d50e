package store

import (
	"context"

	"github.com/shortloop/shortloop/internal/analytics"
	"go.uber.org/zap"
)

// NoopAnalyticsStore logs click events instead of persisting them. Used by
// the worker when no database is configured.
type NoopAnalyticsStore struct {
	logger *zap.Logger
}

// NewNoopAnalyticsStore creates a new no-op analytics store.
func NewNoopAnalyticsStore(logger *zap.Logger) *NoopAnalyticsStore {
	return &NoopAnalyticsStore{logger: logger}
}

func (n *NoopAnalyticsStore) LogHit(_ context.Context, event *analytics.ClickEvent) error {
	n.logger.Info("click event received",
		zap.String("shortCode", event.ShortCode),
		zap.Time("timestamp", event.Timestamp),
		zap.String("referrer", event.Referrer),
		zap.String("country", event.Country),
	)

	return nil
}

func (n *NoopAnalyticsStore) Aggregate(_ context.Context, _ string) (*analytics.Stats, error) {
	return &analytics.Stats{
		DailyClicks:  []analytics.DailyCount{},
		TopReferrers: []analytics.ReferrerCount{},
		TopCountries: []analytics.CountryCount{},
	}, nil
}

// Compile-time check.
var _ analytics.Store = (*NoopAnalyticsStore)(nil)
