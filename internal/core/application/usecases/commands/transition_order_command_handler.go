package commands

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/loyalty"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"
)

// TransitionResult reports the applied edge. PointsEarned is set when the
// completion settled loyalty points in this call.
type TransitionResult struct {
	OrderID      kernel.UUID
	From         order.Status
	To           order.Status
	PointsEarned *int64
}

// TransitionOrderCommandHandler applies a state transition under the order's
// row lock.
//
// Side effects by target:
//   - OnDelivery: guard reads the active assignment and the location
//   - Completed: releases the courier and settles loyalty exactly once
//   - Cancelled: releases the courier, withdraws a pending location from the
//     geocode retry queue, no loyalty settlement
//
// A rejected transition returns errs.StateTransitionError and nothing is written.
type TransitionOrderCommandHandler struct {
	uowFactory    UoWFactory
	dispatcher    services.CourierDispatcher
	loyaltyPolicy loyalty.Policy
	clock         Clock
}

func NewTransitionOrderCommandHandler(uowFactory UoWFactory, loyaltyPolicy loyalty.Policy, clock Clock) TransitionOrderCommandHandler {
	return TransitionOrderCommandHandler{
		uowFactory:    uowFactory,
		dispatcher:    services.NewCourierDispatcher(),
		loyaltyPolicy: loyaltyPolicy,
		clock:         orSystemClock(clock),
	}
}

func (h TransitionOrderCommandHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return TransitionResult{}, err
	}
	defer rollback(ctx, uow)

	now := h.clock()
	o, err := uow.OrderRepository().GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return TransitionResult{}, err
	}
	from := o.Status()

	holding, err := loadHolding(ctx, uow, o.ID())
	if err != nil {
		return TransitionResult{}, err
	}

	guards := order.Guards{HasActiveAssignment: holding != nil}
	if cmd.Target() == order.OnDelivery {
		loc, locErr := uow.LocationRepository().Get(ctx, o.ID())
		if locErr != nil && !errors.Is(locErr, errs.ErrObjectNotFound) {
			return TransitionResult{}, locErr
		}
		guards.LocationDispatchable = loc != nil && loc.IsDispatchable()
	}

	if err = o.Transition(cmd.Target(), cmd.Actor(), cmd.Message(), guards, now); err != nil {
		return TransitionResult{}, err
	}

	result := TransitionResult{OrderID: o.ID(), From: from, To: o.Status()}

	if o.Status().IsTerminal() {
		if err = releaseHolding(ctx, uow, h.dispatcher, holding, now); err != nil {
			return TransitionResult{}, err
		}
		if err = withdrawLocation(ctx, uow, o.ID(), now); err != nil {
			return TransitionResult{}, err
		}
	}

	if o.Status() == order.Completed {
		earned, settleErr := h.settle(ctx, uow, o, now)
		if settleErr != nil {
			return TransitionResult{}, settleErr
		}
		result.PointsEarned = earned
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return TransitionResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return TransitionResult{}, err
	}

	return result, nil
}

// settle credits points for the order total. A repeated settlement for the
// same order writes nothing and reports nil.
func (h TransitionOrderCommandHandler) settle(ctx context.Context, uow UoW, o *order.Order, now time.Time) (*int64, error) {
	repo := uow.LoyaltyRepository()
	account, err := repo.GetAccountForUpdate(ctx, o.CustomerID(), now)
	if err != nil {
		return nil, err
	}

	tx, err := account.Earn(kernel.NewUUID(), o.ID(), o.Total(), h.loyaltyPolicy, now)
	if err != nil {
		return nil, err
	}

	inserted, err := repo.Append(ctx, account, tx)
	if err != nil || !inserted {
		return nil, err
	}

	points := tx.Points()
	return &points, nil
}

// loadHolding returns the order's active assignment with its courier locked,
// or nil.
func loadHolding(ctx context.Context, uow CourierRepoFactory, orderID kernel.UUID) (*services.Holding, error) {
	a, err := uow.AssignmentRepository().GetActiveByOrder(ctx, orderID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, nil //nolint:nilnil // no active assignment is not an error
	}
	if err != nil {
		return nil, err
	}

	c, err := uow.CourierRepository().GetForUpdate(ctx, a.CourierID())
	if err != nil {
		return nil, err
	}

	return &services.Holding{Assignment: a, Courier: c}, nil
}

func releaseHolding(
	ctx context.Context,
	uow CourierRepoFactory,
	dispatcher services.CourierDispatcher,
	holding *services.Holding,
	now time.Time,
) error {
	if holding == nil {
		return nil
	}
	if err := dispatcher.Release(holding, now); err != nil {
		return err
	}
	if err := uow.AssignmentRepository().Update(ctx, holding.Assignment); err != nil {
		return err
	}
	return uow.CourierRepository().Update(ctx, holding.Courier)
}

// withdrawLocation takes a finished order's pending location out of the
// geocode retry queue. The order row must already be locked.
func withdrawLocation(ctx context.Context, uow LocationRepoFactory, orderID kernel.UUID, now time.Time) error {
	loc, err := uow.LocationRepository().GetForUpdate(ctx, orderID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !loc.Withdraw(now) {
		return nil
	}
	return uow.LocationRepository().Update(ctx, loc)
}
