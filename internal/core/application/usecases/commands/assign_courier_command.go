package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrAssignCourierCommandIsNotConstructed = errors.New(
	"AssignCourierCommand must be created via NewAssignCourierCommand constructor",
)

// AssignCourierCommand binds a courier to a queueing or preparing order.
// With a nil courier id the first Available courier that is not locked by
// another transaction is taken (auto mode); otherwise the named courier is
// locked and taken (explicit mode).
//
// Example:
//
//	cmd, err := NewAssignCourierCommand(orderID, nil)
//	res, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, ErrNoCourierAvailable) {
//	    // both attempts found every courier busy or locked
//	}
type AssignCourierCommand struct {
	orderID   kernel.UUID
	courierID *kernel.UUID

	guard guard.ConstructorGuard
}

// NewAssignCourierCommand creates an assignment request. courierID is optional.
func NewAssignCourierCommand(orderID kernel.UUID, courierID *kernel.UUID) (AssignCourierCommand, error) {
	if err := orderID.Validate(); err != nil {
		return AssignCourierCommand{}, err
	}
	if courierID != nil {
		if err := courierID.Validate(); err != nil {
			return AssignCourierCommand{}, err
		}
		id := *courierID
		courierID = &id
	}

	return AssignCourierCommand{
		orderID:   orderID,
		courierID: courierID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c AssignCourierCommand) Validate() error {
	return c.guard.Validate(ErrAssignCourierCommandIsNotConstructed)
}

func (c AssignCourierCommand) OrderID() kernel.UUID { return c.orderID }

// CourierID returns the requested courier, nil in auto mode.
func (c AssignCourierCommand) CourierID() *kernel.UUID { return c.courierID }
