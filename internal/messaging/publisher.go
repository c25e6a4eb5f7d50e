package messaging

import (
	"encoding/json"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/backoff"
	"github.com/Rican7/retry/strategy"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

const (
	publishAttempts = 3
	publishBackoff  = 50 * time.Millisecond
)

// Publish is a function that publishes a typed event. It returns once the
// event is accepted for delivery; it never blocks on downstream persistence.
type Publish[T any] func(event *T) error

// NewPublishFunc creates a typed publish function for a specific topic.
// Transient publish failures are retried with a bounded linear backoff
// before the error is surfaced to the caller.
func NewPublishFunc[T any](publisher message.Publisher, topic string, logger *zap.Logger) Publish[T] {
	return func(event *T) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}

		publish := func(attempt uint) error {
			if attempt > 0 {
				logger.Warn("retrying publish",
					zap.String("topic", topic),
					zap.Uint("attempt", attempt),
				)
			}

			msg := message.NewMessage(watermill.NewUUID(), payload)

			return publisher.Publish(topic, msg)
		}

		return retry.Retry(publish,
			strategy.Limit(publishAttempts),
			strategy.Backoff(backoff.Linear(publishBackoff)),
		)
	}
}

// PublisherGroup manages the underlying publisher lifecycle.
type PublisherGroup struct {
	publisher message.Publisher
}

// NewPublisherGroup creates a new publisher group.
func NewPublisherGroup(publisher message.Publisher) *PublisherGroup {
	return &PublisherGroup{publisher: publisher}
}

// Publisher returns the underlying message publisher for creating typed
// publish functions.
func (g *PublisherGroup) Publisher() message.Publisher {
	return g.publisher
}

// Shutdown closes the underlying publisher.
func (g *PublisherGroup) Shutdown() error {
	return g.publisher.Close()
}
