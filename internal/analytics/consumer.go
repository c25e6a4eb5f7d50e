package analytics

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/shortloop/shortloop/internal/geo"
	"github.com/shortloop/shortloop/internal/messaging"
	"go.uber.org/zap"
)

// NewClickConsumer returns a consumer that drains click events into the
// store. Country resolution happens here on the worker side so the redirect
// path never waits on a geo lookup.
func NewClickConsumer(
	subscriber message.Subscriber,
	publisher message.Publisher,
	store Store,
	resolver geo.Resolver,
	maxRetries int,
	logger *zap.Logger,
) *messaging.Consumer[ClickEvent] {
	handler := func(ctx context.Context, event *ClickEvent) error {
		if event.Referrer == "" {
			event.Referrer = DirectReferrer
		}

		if event.Country == "" && event.ClientIP != "" {
			event.Country = resolver.CountryCode(ctx, event.ClientIP)
		}

		return store.LogHit(ctx, event)
	}

	return messaging.NewConsumer(subscriber, publisher, TopicLinkClicked, handler, maxRetries, logger)
}
