package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
)

// LocationRepository persists delivery locations, keyed by order id.
type LocationRepository interface {
	Add(ctx context.Context, location *delivery.Location) error
	Update(ctx context.Context, location *delivery.Location) error
	Get(ctx context.Context, orderID kernel.UUID) (*delivery.Location, error)
	GetForUpdate(ctx context.Context, orderID kernel.UUID) (*delivery.Location, error)

	// ListDue returns pending locations whose next attempt is due. The rows
	// are not locked; the resolver re-reads each one under lock before
	// applying a result.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*delivery.Location, error)
}
