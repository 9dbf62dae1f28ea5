package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// ExpiryFailure is an order the sweep could not process.
type ExpiryFailure struct {
	OrderID kernel.UUID
	Err     error
}

// ExpiryReport lists what one sweep did. Expired holds one
// errs.ExpiryViolationError per cancelled order, with the original deadline.
type ExpiryReport struct {
	Expired  []*errs.ExpiryViolationError
	Skipped  []kernel.UUID
	Failures []ExpiryFailure
}

// ExpireOrdersCommandHandler cancels COD orders left unconfirmed past their
// deadline with reason "expired".
//
// A pending location of an expired order leaves the geocode retry queue.
// Each order is cancelled in its own transaction after re-reading it under
// the row lock, so an order approved or rejected after it was listed is
// skipped instead of being cancelled.
type ExpireOrdersCommandHandler struct {
	uowFactory UoWFactory
	clock      Clock
}

func NewExpireOrdersCommandHandler(uowFactory UoWFactory, clock Clock) ExpireOrdersCommandHandler {
	return ExpireOrdersCommandHandler{uowFactory: uowFactory, clock: orSystemClock(clock)}
}

func (h ExpireOrdersCommandHandler) Handle(ctx context.Context, cmd ExpireOrdersCommand) (ExpiryReport, error) {
	if err := cmd.Validate(); err != nil {
		return ExpiryReport{}, err
	}

	ids, err := h.uowFactory.Create().OrderRepository().ListExpiredConfirmations(ctx, h.clock(), cmd.Limit())
	if err != nil {
		return ExpiryReport{}, err
	}

	var report ExpiryReport
	for _, id := range ids {
		if err = ctx.Err(); err != nil {
			return report, err
		}

		violation, expireErr := h.expire(ctx, id)
		switch {
		case expireErr != nil:
			report.Failures = append(report.Failures, ExpiryFailure{OrderID: id, Err: expireErr})
		case violation == nil:
			report.Skipped = append(report.Skipped, id)
		default:
			report.Expired = append(report.Expired, violation)
		}
	}

	return report, nil
}

func (h ExpireOrdersCommandHandler) expire(ctx context.Context, id kernel.UUID) (*errs.ExpiryViolationError, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer rollback(ctx, uow)

	o, err := uow.OrderRepository().GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}

	now := h.clock()
	deadline := o.ConfirmationDeadline()
	expired, err := o.Expire(ActorExpiryWatchdog, now)
	if err != nil || !expired {
		return nil, err
	}
	if err = withdrawLocation(ctx, uow, o.ID(), now); err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return errs.NewExpiryViolationError(o.ID().String(), *deadline), nil
}
