package commands

import (
	"context"
)

// SetCourierAvailabilityCommandHandler updates a courier under its row lock.
// A Busy courier keeps its assignment and cannot change availability.
type SetCourierAvailabilityCommandHandler struct {
	uowFactory CourierUoWFactory
}

func NewSetCourierAvailabilityCommandHandler(uowFactory CourierUoWFactory) SetCourierAvailabilityCommandHandler {
	return SetCourierAvailabilityCommandHandler{uowFactory: uowFactory}
}

func (h SetCourierAvailabilityCommandHandler) Handle(ctx context.Context, cmd SetCourierAvailabilityCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer rollback(ctx, uow)

	c, err := uow.CourierRepository().GetForUpdate(ctx, cmd.CourierID())
	if err != nil {
		return err
	}
	if err = c.SetAvailability(cmd.Availability()); err != nil {
		return err
	}
	if err = uow.CourierRepository().Update(ctx, c); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
