package kafka

import (
	"encoding/json"
	"time"

	"fulfillment/internal/core/domain/model/order"
)

const (
	EventOrderStatusChanged = "OrderStatusChanged"
	eventVersion            = 1
)

// Envelope wraps every event written to Kafka. CorrelationID carries the
// order id, which is also the message key.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type StatusChangedPayload struct {
	OrderID    string    `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Actor      string    `json:"actor"`
	Message    string    `json:"message,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func statusChangedPayload(e order.StatusChanged) StatusChangedPayload {
	return StatusChangedPayload{
		OrderID:    e.OrderID.String(),
		CustomerID: e.CustomerID.String(),
		From:       e.From.String(),
		To:         e.To.String(),
		Actor:      e.Actor,
		Message:    e.Message,
		OccurredAt: e.OccurredAt.UTC(),
	}
}
