package analytics_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/shortloop/shortloop/internal/analytics"
	"github.com/shortloop/shortloop/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type channelSubscriber struct {
	msgChan chan *message.Message
}

func (s *channelSubscriber) Subscribe(_ context.Context, _ string) (<-chan *message.Message, error) {
	return s.msgChan, nil
}

func (s *channelSubscriber) Close() error { return nil }

type discardPublisher struct{}

func (discardPublisher) Publish(_ string, _ ...*message.Message) error { return nil }
func (discardPublisher) Close() error                                  { return nil }

type staticResolver struct {
	country string
	calls   int
}

func (r *staticResolver) CountryCode(_ context.Context, _ string) string {
	r.calls++

	return r.country
}

func deliver(t *testing.T, sub *channelSubscriber, event analytics.ClickEvent) {
	t.Helper()

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	msg := message.NewMessage(uuid.NewString(), payload)
	sub.msgChan <- msg

	select {
	case <-msg.Acked():
	case <-msg.Nacked():
		t.Fatal("click event was nacked")
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for ack")
	}
}

func TestClickConsumer(t *testing.T) {
	t.Run("logs events with resolved country", func(t *testing.T) {
		sub := &channelSubscriber{msgChan: make(chan *message.Message, 10)}
		events := store.NewMemoryAnalyticsStore()
		resolver := &staticResolver{country: "US"}

		consumer := analytics.NewClickConsumer(sub, discardPublisher{}, events, resolver, 5, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))
		assert.Equal(t, analytics.TopicLinkClicked, consumer.Topic())

		deliver(t, sub, analytics.ClickEvent{
			ShortCode: "abc123",
			Timestamp: time.Now().UTC(),
			Referrer:  "https://news.example",
			ClientIP:  "203.0.113.7",
		})

		require.NoError(t, consumer.Shutdown())

		require.Equal(t, 1, events.Len())
		assert.Equal(t, 1, resolver.calls)

		stats, err := events.Aggregate(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.TotalClicks)
		require.Len(t, stats.TopCountries, 1)
		assert.Equal(t, "US", stats.TopCountries[0].Country)
	})

	t.Run("defaults missing referrer to direct", func(t *testing.T) {
		sub := &channelSubscriber{msgChan: make(chan *message.Message, 10)}
		events := store.NewMemoryAnalyticsStore()

		consumer := analytics.NewClickConsumer(sub, discardPublisher{}, events, &staticResolver{}, 5, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))

		deliver(t, sub, analytics.ClickEvent{
			ShortCode: "abc123",
			Timestamp: time.Now().UTC(),
		})

		require.NoError(t, consumer.Shutdown())

		stats, err := events.Aggregate(context.Background(), "abc123")
		require.NoError(t, err)
		require.Len(t, stats.TopReferrers, 1)
		assert.Equal(t, analytics.DirectReferrer, stats.TopReferrers[0].Referrer)
	})

	t.Run("drains a high-volume burst into exact totals", func(t *testing.T) {
		const clicks = 1000

		sub := &channelSubscriber{msgChan: make(chan *message.Message, clicks)}
		events := store.NewMemoryAnalyticsStore()

		consumer := analytics.NewClickConsumer(sub, discardPublisher{}, events, &staticResolver{}, 5, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))

		now := time.Now().UTC()
		acks := make([]<-chan struct{}, 0, clicks)

		for n := 0; n < clicks; n++ {
			payload, err := json.Marshal(analytics.ClickEvent{
				ShortCode: "abc123",
				Timestamp: now,
				Referrer:  "direct",
			})
			require.NoError(t, err)

			msg := message.NewMessage(uuid.NewString(), payload)
			acks = append(acks, msg.Acked())
			sub.msgChan <- msg
		}

		deadline := time.After(10 * time.Second)

		for _, acked := range acks {
			select {
			case <-acked:
			case <-deadline:
				t.Fatal("timeout draining click events")
			}
		}

		require.NoError(t, consumer.Shutdown())

		stats, err := events.Aggregate(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, int64(clicks), stats.TotalClicks)
		require.Len(t, stats.DailyClicks, 1)
		assert.Equal(t, int64(clicks), stats.DailyClicks[0].Count)
	})

	t.Run("skips geo lookup when country is already set", func(t *testing.T) {
		sub := &channelSubscriber{msgChan: make(chan *message.Message, 10)}
		events := store.NewMemoryAnalyticsStore()
		resolver := &staticResolver{country: "US"}

		consumer := analytics.NewClickConsumer(sub, discardPublisher{}, events, resolver, 5, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))

		deliver(t, sub, analytics.ClickEvent{
			ShortCode: "abc123",
			Timestamp: time.Now().UTC(),
			ClientIP:  "203.0.113.7",
			Country:   "DE",
		})

		require.NoError(t, consumer.Shutdown())

		assert.Zero(t, resolver.calls)

		stats, err := events.Aggregate(context.Background(), "abc123")
		require.NoError(t, err)
		require.Len(t, stats.TopCountries, 1)
		assert.Equal(t, "DE", stats.TopCountries[0].Country)
	})
}
