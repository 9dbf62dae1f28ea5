package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/core/domain/model/kernel"
)

// CourierRepository defines the persistence contract for courier aggregates.
type CourierRepository interface {
	// Add persists a new courier aggregate to storage.
	Add(ctx context.Context, courier *courier.Courier) error

	// Update persists changes to an existing courier aggregate.
	Update(ctx context.Context, courier *courier.Courier) error

	// Get retrieves a courier by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// GetForUpdate retrieves a courier and holds its row lock.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// LockFirstAvailable locks one Available courier, skipping rows other
	// transactions hold. Returns ErrObjectNotFound when none can be locked.
	//
	// Example:
	//   c, err := repo.LockFirstAvailable(ctx)
	//   if errors.Is(err, errs.ErrObjectNotFound) {
	//       return errs.NewConcurrencyConflictError("courier", "")
	//   }
	LockFirstAvailable(ctx context.Context) (*courier.Courier, error)
}

// AssignmentRepository persists courier assignments.
type AssignmentRepository interface {
	// Add persists a new assignment. A second active assignment for the same
	// order is rejected with a ConcurrencyConflictError.
	Add(ctx context.Context, assignment *courier.Assignment) error

	// Update persists a release.
	Update(ctx context.Context, assignment *courier.Assignment) error

	// GetActiveByOrder returns the order's unreleased assignment or ErrObjectNotFound.
	GetActiveByOrder(ctx context.Context, orderID kernel.UUID) (*courier.Assignment, error)
}
