package commands

import (
	"context"
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"
)

// ErrNoCourierAvailable is returned after the retry also hit a courier conflict.
// It wraps the last errs.ConcurrencyConflictError.
var ErrNoCourierAvailable = errors.New("no courier available")

// AssignCourierResult describes the active assignment after the call.
// ReleasedCourierID is set when a previous assignment was superseded.
type AssignCourierResult struct {
	OrderID           kernel.UUID
	CourierID         kernel.UUID
	AssignmentID      kernel.UUID
	ReleasedCourierID *kernel.UUID
	Unchanged         bool
}

// AssignCourierCommandHandler orchestrates courier assignment.
// Locks the order row, then the location, the current courier and the
// candidate courier, and writes the courier flip and the assignment in one
// transaction. A courier conflict is retried once in a fresh transaction.
//
// Example:
//
//	handler := NewAssignCourierCommandHandler(uowFactory, SystemClock)
//	res, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, ErrNoCourierAvailable):
//	    log.Println("All couriers are busy")
//	case errors.Is(err, errs.ErrStateTransition):
//	    log.Println("Order cannot take a courier now")
//	case err != nil:
//	    log.Printf("Assignment failed: %v", err)
//	}
type AssignCourierCommandHandler struct {
	uowFactory UoWFactory
	dispatcher services.CourierDispatcher
	clock      Clock
}

// NewAssignCourierCommandHandler creates a handler for courier assignment operations.
func NewAssignCourierCommandHandler(uowFactory UoWFactory, clock Clock) AssignCourierCommandHandler {
	return AssignCourierCommandHandler{
		uowFactory: uowFactory,
		dispatcher: services.NewCourierDispatcher(),
		clock:      orSystemClock(clock),
	}
}

// Handle processes the assignment, retrying once on a courier conflict.
func (h AssignCourierCommandHandler) Handle(ctx context.Context, cmd AssignCourierCommand) (AssignCourierResult, error) {
	if err := cmd.Validate(); err != nil {
		return AssignCourierResult{}, err
	}

	res, err := h.attempt(ctx, cmd)
	if !errors.Is(err, errs.ErrConcurrencyConflict) {
		return res, err
	}

	res, err = h.attempt(ctx, cmd)
	if errors.Is(err, errs.ErrConcurrencyConflict) {
		return AssignCourierResult{}, fmt.Errorf("%w: %w", ErrNoCourierAvailable, err)
	}
	return res, err
}

func (h AssignCourierCommandHandler) attempt(ctx context.Context, cmd AssignCourierCommand) (AssignCourierResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return AssignCourierResult{}, err
	}
	defer rollback(ctx, uow)

	now := h.clock()
	o, err := uow.OrderRepository().GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return AssignCourierResult{}, err
	}
	if err = o.ValidateAssignable(); err != nil {
		return AssignCourierResult{}, err
	}

	loc, err := uow.LocationRepository().GetForUpdate(ctx, o.ID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return AssignCourierResult{}, errs.NewStateTransitionError(o.Status().String(), order.OnDelivery.String(),
			"order has no delivery location")
	}
	if err != nil {
		return AssignCourierResult{}, err
	}

	current, err := loadHolding(ctx, uow, o.ID())
	if err != nil {
		return AssignCourierResult{}, err
	}

	candidates, err := h.candidates(ctx, uow, cmd, current)
	if err != nil {
		return AssignCourierResult{}, err
	}

	res, err := h.dispatcher.Dispatch(o, loc, candidates, current, kernel.NewUUID(), now)
	if err != nil {
		return AssignCourierResult{}, err
	}

	result := AssignCourierResult{
		OrderID:      o.ID(),
		CourierID:    res.Courier.ID(),
		AssignmentID: res.Assignment.ID(),
		Unchanged:    res.Unchanged,
	}
	if res.Unchanged {
		return result, nil
	}

	if err = h.persist(ctx, uow, res); err != nil {
		return AssignCourierResult{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return AssignCourierResult{}, err
	}

	if res.Released != nil {
		id := res.Released.Courier.ID()
		result.ReleasedCourierID = &id
	}
	return result, nil
}

// candidates locks the couriers Dispatch may choose from. Auto mode keeps an
// existing assignment instead of locking a new courier.
func (h AssignCourierCommandHandler) candidates(
	ctx context.Context,
	uow CourierRepoFactory,
	cmd AssignCourierCommand,
	current *services.Holding,
) ([]*courier.Courier, error) {
	if id := cmd.CourierID(); id != nil {
		if current != nil && current.Courier.ID().IsEqual(*id) {
			return []*courier.Courier{current.Courier}, nil
		}
		c, err := uow.CourierRepository().GetForUpdate(ctx, *id)
		if err != nil {
			return nil, err
		}
		return []*courier.Courier{c}, nil
	}

	if current != nil {
		return []*courier.Courier{current.Courier}, nil
	}

	c, err := uow.CourierRepository().LockFirstAvailable(ctx)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, errs.NewConcurrencyConflictError("courier", "")
	}
	if err != nil {
		return nil, err
	}
	return []*courier.Courier{c}, nil
}

func (h AssignCourierCommandHandler) persist(ctx context.Context, uow CourierRepoFactory, res services.DispatchResult) error {
	if res.Released != nil {
		if err := uow.AssignmentRepository().Update(ctx, res.Released.Assignment); err != nil {
			return err
		}
		if err := uow.CourierRepository().Update(ctx, res.Released.Courier); err != nil {
			return err
		}
	}

	if err := uow.CourierRepository().Update(ctx, res.Courier); err != nil {
		return err
	}
	return uow.AssignmentRepository().Add(ctx, res.Assignment)
}
