package services

import (
	"time"

	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// Holding is an active assignment together with the courier that holds it.
type Holding struct {
	Assignment *courier.Assignment
	Courier    *courier.Courier
}

// DispatchResult describes what Dispatch changed. Released is set when a
// previous assignment was superseded.
type DispatchResult struct {
	Courier    *courier.Courier
	Assignment *courier.Assignment
	Released   *Holding
	Unchanged  bool
}

// CourierDispatcher is a domain service that binds a courier to an order.
//
// Key responsibilities:
//   - Checking the order is assignable and its location is dispatchable
//   - Releasing a superseded assignment and freeing its courier
//   - Making the chosen courier Busy and creating the new assignment
//
// Business rules:
//   - Only queueing or preparing orders are assigned
//   - The delivery location must be Resolved or ManuallyCorrected
//   - An order has at most one active assignment
//   - Candidates are couriers already row-locked by the caller; the first
//     Available one is taken
//
// Example usage:
//
//	dispatcher := services.NewCourierDispatcher()
//	res, err := dispatcher.Dispatch(o, loc, lockedCouriers, current, kernel.NewUUID(), now)
//	if errors.Is(err, errs.ErrConcurrencyConflict) {
//	    // no courier could be taken, retry once
//	}
type CourierDispatcher struct{}

func NewCourierDispatcher() CourierDispatcher {
	return CourierDispatcher{}
}

// Dispatch applies an assignment in memory. The caller persists the returned
// aggregates in the transaction that holds the row locks.
//
// Parameters:
//   - o: The order to assign
//   - loc: Its delivery location
//   - candidates: Locked couriers to choose from, in preference order
//   - current: The order's active assignment and its courier, or nil
//   - assignmentID: Identifier for the new assignment
//   - now: Assignment time
//
// Returns:
//   - DispatchResult: The courier and assignment, plus the released holding if any
//   - error: StateTransitionError for an order that cannot be assigned,
//     ConcurrencyConflictError when no candidate is Available
func (d CourierDispatcher) Dispatch(
	o *order.Order,
	loc *delivery.Location,
	candidates []*courier.Courier,
	current *Holding,
	assignmentID kernel.UUID,
	now time.Time,
) (DispatchResult, error) {
	if err := o.Validate(); err != nil {
		return DispatchResult{}, err
	}
	if err := o.ValidateAssignable(); err != nil {
		return DispatchResult{}, err
	}
	if err := loc.Validate(); err != nil {
		return DispatchResult{}, err
	}
	if !loc.IsDispatchable() {
		return DispatchResult{}, errs.NewStateTransitionError(o.Status().String(), order.OnDelivery.String(),
			"delivery location is "+loc.Status().String())
	}

	if current != nil {
		for _, c := range candidates {
			if c.IsEqual(current.Courier) {
				return DispatchResult{Courier: current.Courier, Assignment: current.Assignment, Unchanged: true}, nil
			}
		}
	}

	chosen, err := d.pick(candidates)
	if err != nil {
		return DispatchResult{}, err
	}

	var released *Holding
	if current != nil {
		if err = current.Courier.Release(current.Assignment, now); err != nil {
			return DispatchResult{}, err
		}
		released = current
	}

	a, err := chosen.TakeOrder(assignmentID, o.ID(), now)
	if err != nil {
		return DispatchResult{}, err
	}

	return DispatchResult{Courier: chosen, Assignment: a, Released: released}, nil
}

// Release frees the courier of an order that left the assignable states,
// used on completion and cancellation.
func (d CourierDispatcher) Release(h *Holding, now time.Time) error {
	if h == nil {
		return nil
	}
	return h.Courier.Release(h.Assignment, now)
}

func (d CourierDispatcher) pick(candidates []*courier.Courier) (*courier.Courier, error) {
	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if c.IsAvailable() {
			return c, nil
		}
	}

	id := ""
	if len(candidates) == 1 {
		id = candidates[0].ID().String()
	}
	return nil, errs.NewConcurrencyConflictError("courier", id)
}
