package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shortloop/shortloop/internal/analytics"
	"go.uber.org/zap"
)

// StatsHandler serves aggregated click stats.
type StatsHandler struct {
	store  analytics.Store
	logger *zap.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(store analytics.Store, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{store: store, logger: logger}
}

// Get returns the stats for a short code. Unknown codes yield zero stats
// rather than an error; the aggregation simply finds no events.
func (h *StatsHandler) Get(ctx context.Context, req *StatsRequest) (*StatsResponse, error) {
	stats, err := h.store.Aggregate(ctx, req.Code)
	if err != nil {
		h.logger.Error("failed to aggregate stats",
			zap.String("code", req.Code),
			zap.Error(err),
		)

		return nil, huma.Error503ServiceUnavailable("service temporarily unavailable")
	}

	return &StatsResponse{Body: *stats}, nil
}
