package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/forecast-bot/internal/config"
	"github.com/couchcryptid/forecast-bot/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces resolution events to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates an asynchronous Kafka producer for the configured outcome
// topic. Publish returns once the event is queued; delivery failures are logged.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaOutcomeTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		BatchTimeout:           100 * time.Millisecond,
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion: func(messages []kafkago.Message, err error) {
			if err != nil {
				logger.Error("publish resolution events failed", "count", len(messages), "error", err)
			}
		},
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes event and hands it to the producer.
func (w *Writer) Publish(ctx context.Context, event domain.ResolutionEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

// Close flushes pending messages and closes the producer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a ResolutionEvent into a Kafka message keyed by
// its request ID.
func serializeToMessage(event domain.ResolutionEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize resolution event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "outcome", Value: []byte(event.Outcome)},
			{Key: "resolved_at", Value: []byte(event.ResolvedAt.Format(time.RFC3339))},
		},
	}, nil
}
