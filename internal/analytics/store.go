package analytics

import "context"

// Store persists click events and serves aggregated stats. LogHit must be
// safe to apply more than once for the same logical event: clicks are
// append-only counters and duplicate-count inflation from at-least-once
// delivery is tolerated.
type Store interface {
	LogHit(ctx context.Context, event *ClickEvent) error
	Aggregate(ctx context.Context, shortCode string) (*Stats, error)
}
