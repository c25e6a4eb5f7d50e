package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/shortloop/shortloop/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type mockSubscriber struct {
	msgChan      chan *message.Message
	subscribeErr error
	mu           sync.Mutex
	closed       bool
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{
		msgChan: make(chan *message.Message, 10),
	}
}

func (m *mockSubscriber) Subscribe(_ context.Context, _ string) (<-chan *message.Message, error) {
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}

	return m.msgChan, nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.msgChan)
	}

	return nil
}

type mockPublisher struct {
	mu         sync.Mutex
	published  map[string][]*message.Message
	publishErr error
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{published: make(map[string][]*message.Message)}
}

func (m *mockPublisher) Publish(topic string, messages ...*message.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.publishErr != nil {
		return m.publishErr
	}

	m.published[topic] = append(m.published[topic], messages...)

	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) topicMessages(topic string) []*message.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.published[topic]
}

func newTestConsumer(sub *mockSubscriber, pub *mockPublisher, maxRetries int, handler messaging.Handler[testEvent]) *messaging.Consumer[testEvent] {
	return messaging.NewConsumer(sub, pub, "test.topic", handler, maxRetries, zap.NewNop())
}

func TestConsumer_Start(t *testing.T) {
	t.Run("starts successfully", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := newTestConsumer(sub, newMockPublisher(), 3,
			func(_ context.Context, _ *testEvent) error { return nil })

		err := consumer.Start(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "test.topic", consumer.Topic())

		_ = consumer.Shutdown()
	})

	t.Run("returns error when subscribe fails", func(t *testing.T) {
		sub := &mockSubscriber{subscribeErr: errors.New("subscribe error")}
		consumer := newTestConsumer(sub, newMockPublisher(), 3,
			func(_ context.Context, _ *testEvent) error { return nil })

		err := consumer.Start(context.Background())

		assert.Error(t, err)
	})
}

func TestConsumer_HandleMessage(t *testing.T) {
	t.Run("acks on successful handling", func(t *testing.T) {
		sub := newMockSubscriber()

		var (
			mu            sync.Mutex
			receivedEvent *testEvent
		)

		consumer := newTestConsumer(sub, newMockPublisher(), 3,
			func(_ context.Context, event *testEvent) error {
				mu.Lock()
				defer mu.Unlock()
				receivedEvent = event

				return nil
			})

		err := consumer.Start(context.Background())
		require.NoError(t, err)

		event := &testEvent{ID: "123", Name: "test"}
		payload, _ := json.Marshal(event)
		msg := message.NewMessage(uuid.NewString(), payload)

		sub.msgChan <- msg

		select {
		case <-msg.Acked():
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, "123", receivedEvent.ID)
			assert.Equal(t, "test", receivedEvent.Name)
		case <-msg.Nacked():
			t.Fatal("message was nacked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for ack")
		}

		_ = consumer.Shutdown()
	})

	t.Run("dead-letters unparseable payload immediately", func(t *testing.T) {
		sub := newMockSubscriber()
		pub := newMockPublisher()
		consumer := newTestConsumer(sub, pub, 3,
			func(_ context.Context, _ *testEvent) error { return nil })

		err := consumer.Start(context.Background())
		require.NoError(t, err)

		msg := message.NewMessage(uuid.NewString(), []byte("invalid json"))

		sub.msgChan <- msg

		select {
		case <-msg.Acked():
			dead := pub.topicMessages("test.topic" + messaging.DeadLetterSuffix)
			require.Len(t, dead, 1)
			assert.Equal(t, "unmarshal", dead[0].Metadata.Get("reason"))
			assert.Equal(t, "test.topic", dead[0].Metadata.Get("sourceTopic"))
		case <-msg.Nacked():
			t.Fatal("poison message should be acked after dead-lettering")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for ack")
		}

		_ = consumer.Shutdown()
	})

	t.Run("nacks on handler error below retry budget", func(t *testing.T) {
		sub := newMockSubscriber()
		pub := newMockPublisher()
		consumer := newTestConsumer(sub, pub, 3,
			func(_ context.Context, _ *testEvent) error {
				return errors.New("handler error")
			})

		err := consumer.Start(context.Background())
		require.NoError(t, err)

		payload, _ := json.Marshal(&testEvent{ID: "123"})
		msg := message.NewMessage(uuid.NewString(), payload)

		sub.msgChan <- msg

		select {
		case <-msg.Nacked():
			assert.Empty(t, pub.topicMessages("test.topic"+messaging.DeadLetterSuffix))
		case <-msg.Acked():
			t.Fatal("message should have been nacked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for nack")
		}

		_ = consumer.Shutdown()
	})

	t.Run("dead-letters after retry budget is exhausted", func(t *testing.T) {
		sub := newMockSubscriber()
		pub := newMockPublisher()
		consumer := newTestConsumer(sub, pub, 2,
			func(_ context.Context, _ *testEvent) error {
				return errors.New("handler error")
			})

		err := consumer.Start(context.Background())
		require.NoError(t, err)

		payload, _ := json.Marshal(&testEvent{ID: "123"})

		// Same UUID across deliveries, as a broker redelivery would carry.
		id := uuid.NewString()

		first := message.NewMessage(id, payload)
		sub.msgChan <- first

		select {
		case <-first.Nacked():
		case <-first.Acked():
			t.Fatal("first delivery should have been nacked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for nack")
		}

		second := message.NewMessage(id, payload)
		sub.msgChan <- second

		select {
		case <-second.Acked():
			dead := pub.topicMessages("test.topic" + messaging.DeadLetterSuffix)
			require.Len(t, dead, 1)
			assert.Equal(t, "handler", dead[0].Metadata.Get("reason"))
			assert.Equal(t, id, dead[0].UUID)
		case <-second.Nacked():
			t.Fatal("second delivery should have been dead-lettered and acked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for ack")
		}

		_ = consumer.Shutdown()
	})

	t.Run("nacks when dead-letter publish fails", func(t *testing.T) {
		sub := newMockSubscriber()
		pub := newMockPublisher()
		pub.publishErr = errors.New("broker down")

		consumer := newTestConsumer(sub, pub, 3,
			func(_ context.Context, _ *testEvent) error { return nil })

		err := consumer.Start(context.Background())
		require.NoError(t, err)

		msg := message.NewMessage(uuid.NewString(), []byte("invalid json"))

		sub.msgChan <- msg

		select {
		case <-msg.Nacked():
			// Message stays on the source topic rather than being dropped.
		case <-msg.Acked():
			t.Fatal("message must not be acked when dead-lettering fails")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for nack")
		}

		_ = consumer.Shutdown()
	})
}

func TestConsumer_Shutdown(t *testing.T) {
	t.Run("shuts down gracefully", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := newTestConsumer(sub, newMockPublisher(), 3,
			func(_ context.Context, _ *testEvent) error { return nil })

		err := consumer.Start(context.Background())
		require.NoError(t, err)

		err = consumer.Shutdown()

		require.NoError(t, err)
	})
}
