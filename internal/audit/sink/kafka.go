// Package sink publishes security events to external systems for retention
// beyond the live window.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"licensio/internal/audit"
)

// Kafka produces each security event as a JSON record keyed by the license
// key string, so events for a given key land in one partition in order.
type Kafka struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafka connects a producer to the given brokers. Returns nil when no
// brokers are configured; a nil sink discards events silently.
func NewKafka(brokers []string, topic string, logger *slog.Logger) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &Kafka{
		client: client,
		topic:  topic,
		logger: logger.With("component", "audit.sink.kafka"),
	}, nil
}

// Publish produces the event asynchronously. Delivery failures are logged,
// never surfaced to the validation path.
func (s *Kafka) Publish(ctx context.Context, event audit.Event) {
	if s == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal event for kafka", "error", err, "event_id", event.ID.String())
		return
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.KeyString),
		Value: payload,
	}
	s.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			s.logger.Error("kafka produce failed", "error", err, "event_id", event.ID.String())
		}
	})
}

// Close flushes outstanding records and releases the producer.
func (s *Kafka) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	if err := s.client.Flush(ctx); err != nil {
		return fmt.Errorf("flush kafka producer: %w", err)
	}
	s.client.Close()
	return nil
}
