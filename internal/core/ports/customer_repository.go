package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/customer"
	"fulfillment/internal/core/domain/model/kernel"
)

// CustomerRepository stores trust profiles.
type CustomerRepository interface {
	// Get returns ErrObjectNotFound for customers never synced.
	Get(ctx context.Context, id kernel.UUID) (*customer.Customer, error)

	// GetForUpdate locks the profile row.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*customer.Customer, error)

	// Save inserts or updates the profile.
	Save(ctx context.Context, c *customer.Customer) error
}
