// Package kafka publishes order status changes to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// StatusPublisher implements ports.EventPublisher. Messages are keyed by
// order id so that one order's changes stay in one partition, in order.
type StatusPublisher struct {
	writer   MessageWriter
	producer string
	logger   *slog.Logger
}

// NewWriter builds a synchronous writer for topic. Publishing happens after
// commit, so the caller needs the write error rather than fire-and-forget.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
}

func NewStatusPublisher(writer MessageWriter, producer string, logger *slog.Logger) *StatusPublisher {
	return &StatusPublisher{
		writer:   writer,
		producer: producer,
		logger:   logger.With("component", "kafka_publisher"),
	}
}

// Publish writes one message per event in a single batch.
func (p *StatusPublisher) Publish(ctx context.Context, events ...order.StatusChanged) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msg, err := p.message(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		metrics.EventsPublishFailuresTotal.Inc()
		return fmt.Errorf("write %d status events: %w", len(msgs), err)
	}

	p.logger.DebugContext(ctx, "Published order status changes", "events", len(msgs))
	return nil
}

func (p *StatusPublisher) Close() error {
	return p.writer.Close()
}

func (p *StatusPublisher) message(e order.StatusChanged) (kafka.Message, error) {
	payload, err := json.Marshal(statusChangedPayload(e))
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode payload: %w", err)
	}

	value, err := json.Marshal(Envelope{
		EventID:       kernel.NewUUID().String(),
		EventType:     EventOrderStatusChanged,
		EventVersion:  eventVersion,
		OccurredAt:    e.OccurredAt.UTC(),
		Producer:      p.producer,
		CorrelationID: e.OrderID.String(),
		Payload:       payload,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode envelope: %w", err)
	}

	return kafka.Message{
		Key:   []byte(e.OrderID.String()),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventOrderStatusChanged)},
		},
	}, nil
}
