// Package events publishes catalog lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/findmepls/catalog/config"
	"github.com/findmepls/catalog/model"
)

// Event keys on the catalog topic.
const (
	KeyItemCreated     = "item.created"
	KeyItemDeleted     = "item.deleted"
	KeySearchPerformed = "search.performed"
)

// ItemIndexed is the payload for item.created events.
type ItemIndexed struct {
	ID   model.ID  `json:"id"`
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}

// ItemRemoved is the payload for item.deleted events.
type ItemRemoved struct {
	ID model.ID  `json:"id"`
	At time.Time `json:"at"`
}

// SearchPerformed is the payload for search.performed events.
type SearchPerformed struct {
	Query         string    `json:"query"`
	ExpandedQuery string    `json:"expanded_query"`
	Results       int       `json:"results"`
	TookMS        int64     `json:"took_ms"`
	QueryID       string    `json:"query_id"`
	At            time.Time `json:"at"`
}

// Publisher writes JSON-encoded events to a single Kafka topic.
type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// New creates a Publisher for the configured topic.
func New(cfg config.KafkaConfig) *Publisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return &Publisher{
		writer: w,
		logger: slog.Default().With("component", "event-publisher", "topic", cfg.Topic),
	}
}

// Publish serialises one event and writes it synchronously.
func (p *Publisher) Publish(ctx context.Context, key string, event any) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event",
			"key", key,
			"error", err,
		)
		return fmt.Errorf("publishing event: %w", err)
	}
	p.logger.Debug("event published",
		"key", key,
		"value_size", len(value),
	)
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
