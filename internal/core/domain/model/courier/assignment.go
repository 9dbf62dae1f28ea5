package courier

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	// ErrAssignmentIsNotConstructed indicates that the Assignment was not
	// created through NewAssignment or RestoreAssignment.
	ErrAssignmentIsNotConstructed = errors.New("Assignment must be created via NewAssignment constructor")

	// ErrAssignmentAlreadyReleased is returned when releasing an assignment twice.
	ErrAssignmentAlreadyReleased = errors.New("assignment already released")
)

// Assignment records that a courier carries an order. It is active while
// releasedAt is nil. Released assignments are kept as history and never
// reactivated; a reassignment creates a new Assignment.
//
// Example usage:
//
//	a, err := courier.NewAssignment(kernel.NewUUID(), orderID, c.ID(), c.VehicleType(), now)
//	if err != nil {
//	    return err
//	}
//	// ... later, on completion or cancellation
//	err = a.Release(now)
type Assignment struct {
	// id uniquely identifies the assignment
	id kernel.UUID

	// orderID is the order being carried
	orderID kernel.UUID

	// courierID is the courier carrying it
	courierID kernel.UUID

	// vehicleType is copied from the courier at assignment time
	vehicleType VehicleType

	assignedAt time.Time

	// releasedAt is nil while the assignment is active
	releasedAt *time.Time

	guard guard.ConstructorGuard
}

// NewAssignment creates an active assignment. All parameters are validated
// and every problem is reported together.
func NewAssignment(
	id, orderID, courierID kernel.UUID,
	vehicleType VehicleType,
	assignedAt time.Time,
) (*Assignment, error) {
	a := &Assignment{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		a.setIDs(id, orderID, courierID),
		vehicleType.Validate(),
		a.setAssignedAt(assignedAt),
	); err != nil {
		return nil, err
	}
	a.vehicleType = vehicleType

	return a, nil
}

// RestoreAssignment reconstructs an assignment from persistent storage,
// including its release time.
func RestoreAssignment(
	id, orderID, courierID kernel.UUID,
	vehicleType VehicleType,
	assignedAt time.Time,
	releasedAt *time.Time,
) (*Assignment, error) {
	a, err := NewAssignment(id, orderID, courierID, vehicleType, assignedAt)
	if err != nil {
		return nil, err
	}
	a.releasedAt = releasedAt
	return a, nil
}

func (a *Assignment) Validate() error {
	if a == nil {
		return ErrAssignmentIsNotConstructed
	}
	return a.guard.Validate(ErrAssignmentIsNotConstructed)
}

func (a *Assignment) ID() kernel.UUID           { return a.id }
func (a *Assignment) OrderID() kernel.UUID      { return a.orderID }
func (a *Assignment) CourierID() kernel.UUID    { return a.courierID }
func (a *Assignment) VehicleType() VehicleType  { return a.vehicleType }
func (a *Assignment) AssignedAt() time.Time     { return a.assignedAt }
func (a *Assignment) ReleasedAt() *time.Time    { return a.releasedAt }
func (a *Assignment) IsActive() bool            { return a.releasedAt == nil }

// Release ends the assignment. Releasing twice is an error so that a courier
// is never made Available by a stale assignment.
func (a *Assignment) Release(at time.Time) error {
	if a.releasedAt != nil {
		return ErrAssignmentAlreadyReleased
	}
	a.releasedAt = &at
	return nil
}

func (a *Assignment) setIDs(id, orderID, courierID kernel.UUID) error {
	var problems []error
	if err := id.Validate(); err != nil {
		problems = append(problems, err)
	}
	if err := orderID.Validate(); err != nil {
		problems = append(problems, errs.NewValueIsRequiredErrorWithCause("order_id", err))
	}
	if err := courierID.Validate(); err != nil {
		problems = append(problems, errs.NewValueIsRequiredErrorWithCause("courier_id", err))
	}
	if err := errors.Join(problems...); err != nil {
		return err
	}
	a.id, a.orderID, a.courierID = id, orderID, courierID
	return nil
}

func (a *Assignment) setAssignedAt(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("assigned_at")
	}
	a.assignedAt = at
	return nil
}
