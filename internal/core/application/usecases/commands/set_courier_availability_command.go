package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrSetCourierAvailabilityCommandIsNotConstructed = errors.New(
	"SetCourierAvailabilityCommand must be created via NewSetCourierAvailabilityCommand constructor",
)

// SetCourierAvailabilityCommand lets a courier go offline or come back.
// Busy is reached only through assignment and cannot be requested.
type SetCourierAvailabilityCommand struct {
	courierID    kernel.UUID
	availability courier.Availability

	guard guard.ConstructorGuard
}

func NewSetCourierAvailabilityCommand(courierID kernel.UUID, availability courier.Availability) (SetCourierAvailabilityCommand, error) {
	if err := errors.Join(courierID.Validate(), availability.Validate()); err != nil {
		return SetCourierAvailabilityCommand{}, err
	}
	return SetCourierAvailabilityCommand{
		courierID:    courierID,
		availability: availability,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c SetCourierAvailabilityCommand) Validate() error {
	return c.guard.Validate(ErrSetCourierAvailabilityCommandIsNotConstructed)
}

func (c SetCourierAvailabilityCommand) CourierID() kernel.UUID             { return c.courierID }
func (c SetCourierAvailabilityCommand) Availability() courier.Availability { return c.availability }
