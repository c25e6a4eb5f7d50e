package messaging

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Runnable represents a component that can be started and shut down.
type Runnable interface {
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup manages a pool of consumers with unified lifecycle. Workers
// in the pool share a broker-side consumer group, so adding consumers scales
// processing without coordination in-process.
type ConsumerGroup struct {
	consumers []Runnable
	closers   []io.Closer
	logger    *zap.Logger
}

// NewConsumerGroup creates a new consumer group.
func NewConsumerGroup(logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{logger: logger}
}

// Add registers a consumer to the group.
func (g *ConsumerGroup) Add(consumer Runnable) {
	g.consumers = append(g.consumers, consumer)
}

// AddCloser registers a resource (subscriber connections and the like) to be
// closed after all consumers have shut down.
func (g *ConsumerGroup) AddCloser(c io.Closer) {
	g.closers = append(g.closers, c)
}

// Size returns the number of consumers in the group.
func (g *ConsumerGroup) Size() int {
	return len(g.consumers)
}

// Start starts all consumers. On failure, consumers started so far are shut
// down before the error is returned.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	for i, consumer := range g.consumers {
		if err := consumer.Start(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = g.consumers[j].Shutdown()
			}

			return fmt.Errorf("failed to start consumer %d: %w", i, err)
		}
	}

	g.logger.Info("consumer group started", zap.Int("workers", len(g.consumers)))

	return nil
}

// Shutdown stops all consumers gracefully, then closes registered resources.
// All consumers are attempted; the first error wins.
func (g *ConsumerGroup) Shutdown() error {
	g.logger.Info("shutting down consumer group")

	var firstErr error

	for _, consumer := range g.consumers {
		if err := consumer.Shutdown(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, c := range g.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
