package messaging

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// DeadLetterSuffix is appended to a topic to form its dead-letter topic.
const DeadLetterSuffix = ".dead"

// Handler processes a single event. Handlers are synchronous and easy to
// test. Delivery is at-least-once, so handlers must tolerate duplicates.
type Handler[T any] func(ctx context.Context, event *T) error

// Consumer subscribes to a topic and processes messages with a typed
// handler. A message that keeps failing beyond the retry budget is published
// to the topic's dead-letter topic instead of being redelivered forever;
// unparseable payloads go there immediately.
type Consumer[T any] struct {
	subscriber message.Subscriber
	publisher  message.Publisher
	topic      string
	deadTopic  string
	maxRetries int
	handler    Handler[T]
	logger     *zap.Logger
	cancel     context.CancelFunc
	done       chan struct{}
	attempts   map[string]int // message UUID -> failed deliveries; consumeLoop only
}

// NewConsumer creates a new generic consumer for a specific event type.
// maxRetries is the number of failed deliveries after which a message is
// dead-lettered.
func NewConsumer[T any](
	subscriber message.Subscriber,
	publisher message.Publisher,
	topic string,
	handler Handler[T],
	maxRetries int,
	logger *zap.Logger,
) *Consumer[T] {
	return &Consumer[T]{
		subscriber: subscriber,
		publisher:  publisher,
		topic:      topic,
		deadTopic:  topic + DeadLetterSuffix,
		maxRetries: maxRetries,
		handler:    handler,
		logger:     logger,
		done:       make(chan struct{}),
		attempts:   make(map[string]int),
	}
}

// Topic returns the topic this consumer subscribes to.
func (c *Consumer[T]) Topic() string {
	return c.topic
}

// Start begins consuming messages from the topic.
func (c *Consumer[T]) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	msgs, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		return err
	}

	go c.consumeLoop(ctx, msgs)

	return nil
}

func (c *Consumer[T]) consumeLoop(ctx context.Context, msgs <-chan *message.Message) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			c.handleMessage(ctx, msg)
		}
	}
}

func (c *Consumer[T]) handleMessage(ctx context.Context, msg *message.Message) {
	var event T
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		c.logger.Error("failed to unmarshal event",
			zap.String("topic", c.topic),
			zap.Error(err),
		)
		c.deadLetter(msg, "unmarshal")

		return
	}

	if err := c.handler(ctx, &event); err != nil {
		c.attempts[msg.UUID]++

		if c.attempts[msg.UUID] >= c.maxRetries {
			c.logger.Error("retry budget exhausted",
				zap.String("topic", c.topic),
				zap.String("uuid", msg.UUID),
				zap.Int("deliveries", c.attempts[msg.UUID]),
				zap.Error(err),
			)
			c.deadLetter(msg, "handler")
			delete(c.attempts, msg.UUID)

			return
		}

		c.logger.Warn("failed to handle event, requeueing",
			zap.String("topic", c.topic),
			zap.String("uuid", msg.UUID),
			zap.Int("delivery", c.attempts[msg.UUID]),
			zap.Error(err),
		)
		msg.Nack()

		return
	}

	msg.Ack()
	delete(c.attempts, msg.UUID)

	c.logger.Debug("processed event",
		zap.String("topic", c.topic),
	)
}

// deadLetter moves a poison message to the dead-letter topic and acks the
// original. If the dead-letter publish itself fails the message is nacked so
// it is never dropped silently.
func (c *Consumer[T]) deadLetter(msg *message.Message, reason string) {
	dead := message.NewMessage(msg.UUID, msg.Payload)
	dead.Metadata.Set("reason", reason)
	dead.Metadata.Set("sourceTopic", c.topic)

	if err := c.publisher.Publish(c.deadTopic, dead); err != nil {
		c.logger.Error("failed to dead-letter message",
			zap.String("topic", c.topic),
			zap.String("uuid", msg.UUID),
			zap.Error(err),
		)
		msg.Nack()

		return
	}

	c.logger.Error("message dead-lettered",
		zap.String("topic", c.topic),
		zap.String("deadTopic", c.deadTopic),
		zap.String("uuid", msg.UUID),
		zap.String("reason", reason),
	)
	msg.Ack()
}

// Shutdown stops the consumer and waits for in-flight messages to complete.
func (c *Consumer[T]) Shutdown() error {
	if c.cancel != nil {
		c.cancel()
	}

	<-c.done

	return nil
}
