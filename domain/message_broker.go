package domain

import (
	"context"
	"time"
)

// MessageBroker defines the interface for message broker operations
type MessageBroker interface {
	// Publish sends a message to a specific topic/channel with a routing key
	Publish(ctx context.Context, topic string, routingKey string, message []byte) error

	// Subscribe listens for messages on a specific topic/channel and routing key
	Subscribe(ctx context.Context, topic string, routingKey string) (<-chan Message, error)

	// Close closes the message broker connection
	Close() error
}

// Message represents a message received from the broker
type Message struct {
	Topic      string
	RoutingKey string
	Payload    []byte
	Timestamp  time.Time
}

// Pipeline event kinds published on the events topic.
const (
	EventScriptGenerated   = "script.generated"
	EventTurnSynthesized   = "turn.synthesized"
	EventPodcastAssembled  = "podcast.assembled"
	EventGenerationWarning = "generation.warning"
)

// PipelineEvent is broadcast to connected clients as the pipeline progresses.
type PipelineEvent struct {
	Kind      string    `json:"kind"`
	Model     string    `json:"model,omitempty"`
	TurnCount int       `json:"turn_count,omitempty"`
	Artifact  string    `json:"artifact,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
