// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// LocationRepoFactory provides access to delivery locations within a transaction.
	LocationRepoFactory interface {
		LocationRepository() ports.LocationRepository
	}

	// CourierRepoFactory provides access to courier and assignment repositories within a transaction.
	CourierRepoFactory interface {
		CourierRepository() ports.CourierRepository
		AssignmentRepository() ports.AssignmentRepository
	}

	// CustomerRepoFactory provides access to trust profiles within a transaction.
	CustomerRepoFactory interface {
		CustomerRepository() ports.CustomerRepository
	}

	// LoyaltyRepoFactory provides access to the points ledger within a transaction.
	LoyaltyRepoFactory interface {
		LoyaltyRepository() ports.LoyaltyRepository
	}

	// CourierUoW manages transactions for courier-only operations.
	CourierUoW interface {
		TxManager
		CourierRepoFactory
	}

	// CourierUoWFactory creates new courier unit of work instances.
	CourierUoWFactory interface {
		Create() CourierUoW
	}

	// CustomerUoW manages transactions for trust profile operations.
	CustomerUoW interface {
		TxManager
		CustomerRepoFactory
	}

	// CustomerUoWFactory creates new customer unit of work instances.
	CustomerUoWFactory interface {
		Create() CustomerUoW
	}

	// LoyaltyUoW manages transactions for ledger-only operations.
	LoyaltyUoW interface {
		TxManager
		LoyaltyRepoFactory
	}

	// LoyaltyUoWFactory creates new loyalty unit of work instances.
	LoyaltyUoWFactory interface {
		Create() LoyaltyUoW
	}

	// UoW manages transactions across every aggregate type.
	// Used for workflow commands that coordinate orders, locations, couriers,
	// customers and the ledger.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   o, err := uow.OrderRepository().GetForUpdate(ctx, id)
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		LocationRepoFactory
		CourierRepoFactory
		CustomerRepoFactory
		LoyaltyRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)

// Clock returns the current time. Handlers take one so tests can pin time.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

func orSystemClock(c Clock) Clock {
	if c == nil {
		return SystemClock
	}
	return c
}

// rollback is deferred by every handler; after Commit it is a no-op.
func rollback(ctx context.Context, tx TxManager) {
	_ = tx.Rollback(ctx)
}
