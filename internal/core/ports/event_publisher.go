package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/order"
)

// EventPublisher delivers order status changes to downstream consumers
// (notifications, analytics).
type EventPublisher interface {
	Publish(ctx context.Context, events ...order.StatusChanged) error
}
