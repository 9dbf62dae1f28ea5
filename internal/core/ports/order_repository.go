// Package ports defines the contracts between the fulfillment core and its
// infrastructure: repositories, the unit of work, the geocoding
// collaborator, the event publisher and the job lock.
// These interfaces establish dependency inversion and keep the core testable.
package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate. Recorded
	// domain events are handed to the unit of work for publishing.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order without locking it.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate retrieves an order and holds its row lock until the
	// transaction ends. Every state transition goes through this method.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// ListExpiredConfirmations returns ids of orders still waiting for
	// confirmation whose deadline is before now, oldest deadline first.
	ListExpiredConfirmations(ctx context.Context, now time.Time, limit int) ([]kernel.UUID, error)

	// ListAwaitingCourier returns ids of queueing or preparing orders that
	// have a dispatchable location and no active assignment, oldest first.
	ListAwaitingCourier(ctx context.Context, limit int) ([]kernel.UUID, error)

	// CountCancellationsSince counts the customer's orders cancelled at or
	// after since.
	CountCancellationsSince(ctx context.Context, customerID kernel.UUID, since time.Time) (int, error)
}
