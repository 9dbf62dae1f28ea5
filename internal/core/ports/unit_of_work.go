package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
// It provides transaction control and tracks aggregate changes.
// Client code must explicitly manage transaction lifecycle.
//
// Domain events of tracked aggregates are published after a successful
// Commit; a publishing failure does not undo the commit.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction and publishes tracked events.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction. It is a no-op after Commit.
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	LocationRepository() LocationRepository
	CourierRepository() CourierRepository
	AssignmentRepository() AssignmentRepository
	CustomerRepository() CustomerRepository
	LoyaltyRepository() LoyaltyRepository
}
