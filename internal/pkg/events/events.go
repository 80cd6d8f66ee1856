// Package events publishes domain events to Kafka. Publishing is best effort:
// callers log failures and carry on.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

// Type names an event.
type Type string

const (
	UserRegistered      Type = "user.registered"
	UserProfileUpdated  Type = "user.profile_updated"
	UserPasswordChanged Type = "user.password_changed"
	CommentCreated      Type = "comment.created"
	BlogLiked           Type = "blog.liked"
)

// Event is the envelope written to the topic.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	// Key partitions the event, usually the affected user id.
	Key     string `json:"-"`
	Payload any    `json:"payload"`
}

// New builds an event with a fresh id.
func New(t Type, key string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		Key:        key,
		Payload:    payload,
	}
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON to a single topic.
type KafkaPublisher struct {
	writer MessageWriter
	log    zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, log zerolog.Logger) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error().Msgf("kafka writer: "+msg, args...)
		}),
	}
	log.Info().Strs("brokers", brokers).Str("topic", topic).Msg("Kafka publisher initialized")
	return NewKafkaPublisherWithWriter(w, log)
}

// NewKafkaPublisherWithWriter creates a publisher on an existing writer.
func NewKafkaPublisherWithWriter(w MessageWriter, log zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, log: log}
}

// Publish encodes evt and writes it.
func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", evt.Type, err)
	}

	msg := kafkago.Message{
		Key:   []byte(evt.Key),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
		},
		Time: evt.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", evt.Type, err)
	}

	p.log.Debug().Str("event_id", evt.ID).Str("event_type", string(evt.Type)).Msg("Event published")
	return nil
}

// Close flushes and closes the writer. It is safe to call more than once.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Multi delivers every event to each publisher in order.
type Multi []Publisher

// Publish hands evt to every publisher and joins their errors.
func (m Multi) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every publisher.
func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ Publisher = (*KafkaPublisher)(nil)
	_ Publisher = Multi(nil)
)
