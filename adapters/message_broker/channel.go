package message_broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dialogcast/dialogcast/domain"
	"github.com/dialogcast/dialogcast/utils/log"
)

const topicBufferSize = 100

// ChannelMessageBroker implements MessageBroker using Go channels. It carries
// pipeline events from the orchestration services to the WebSocket feed.
type ChannelMessageBroker struct {
	topics map[string]chan domain.Message
	mu     sync.Mutex
	closed bool
}

// NewChannelMessageBroker creates a new channel-based message broker
func NewChannelMessageBroker() *ChannelMessageBroker {
	return &ChannelMessageBroker{
		topics: make(map[string]chan domain.Message),
	}
}

// topic channels are keyed by topic only: every routing key of a topic lands
// on the same subscriber channel, and subscribers filter by routing key.
func (b *ChannelMessageBroker) channel(topic string) (chan domain.Message, error) {
	if b.closed {
		return nil, fmt.Errorf("message broker is closed")
	}
	channel, exists := b.topics[topic]
	if !exists {
		channel = make(chan domain.Message, topicBufferSize)
		b.topics[topic] = channel
	}
	return channel, nil
}

// Publish sends a message to a topic with a routing key. It never blocks: a
// full topic channel is a delivery failure.
func (b *ChannelMessageBroker) Publish(ctx context.Context, topic string, routingKey string, message []byte) error {
	b.mu.Lock()
	channel, err := b.channel(topic)
	b.mu.Unlock()
	if err != nil {
		return err
	}

	msg := domain.Message{
		Topic:      topic,
		RoutingKey: routingKey,
		Payload:    message,
		Timestamp:  time.Now(),
	}

	select {
	case channel <- msg:
		log.WithCtx(ctx).Debug("message published",
			zap.String("topic", topic),
			zap.String("routingKey", routingKey),
			zap.Int("payload_size", len(message)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("topic channel is full: %s", topic)
	}
}

// Subscribe returns the channel carrying all messages of a topic.
func (b *ChannelMessageBroker) Subscribe(ctx context.Context, topic string, routingKey string) (<-chan domain.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	channel, err := b.channel(topic)
	if err != nil {
		return nil, err
	}

	log.WithCtx(ctx).Info("subscribed to topic",
		zap.String("topic", topic),
		zap.String("routingKey", routingKey))
	return channel, nil
}

// Close closes the message broker and all topic channels
func (b *ChannelMessageBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for _, channel := range b.topics {
		close(channel)
	}
	b.topics = make(map[string]chan domain.Message)

	log.WithCtx(context.Background()).Info("message broker closed")
	return nil
}
