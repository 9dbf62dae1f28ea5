package commands

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/customer"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/risk"
	"fulfillment/internal/pkg/errs"
)

// DecisionResult reports the order after the verdict. Rejection is set for a
// reject verdict; it is a business outcome, the call itself succeeded.
type DecisionResult struct {
	OrderID   kernel.UUID
	Action    risk.Action
	Status    order.Status
	RiskLevel risk.Level
	Rejection *errs.RiskRejectionError
}

// DecideCODOrderCommandHandler records the single risk decision of a COD order.
//
// Business rules:
//   - approve records the decision and moves the order to queueing in the
//     same transaction; a high risk order needs AcknowledgeHighRisk
//   - reject records the decision and cancels the order with the reason
//   - a fraud rejection flags the customer so later evaluations are penalized
//   - a second decision on the same order is a StateTransitionError
//   - an order past its confirmation deadline cannot be approved; the
//     watchdog will cancel it
type DecideCODOrderCommandHandler struct {
	uowFactory        UoWFactory
	defaultTrustScore int
	clock             Clock
}

func NewDecideCODOrderCommandHandler(uowFactory UoWFactory, settings RiskSettings, clock Clock) DecideCODOrderCommandHandler {
	return DecideCODOrderCommandHandler{
		uowFactory:        uowFactory,
		defaultTrustScore: settings.DefaultTrustScore,
		clock:             orSystemClock(clock),
	}
}

func (h DecideCODOrderCommandHandler) Handle(ctx context.Context, cmd DecideCODOrderCommand) (DecisionResult, error) {
	if err := cmd.Validate(); err != nil {
		return DecisionResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return DecisionResult{}, err
	}
	defer rollback(ctx, uow)

	now := h.clock()
	o, err := uow.OrderRepository().GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return DecisionResult{}, err
	}

	var rejection *errs.RiskRejectionError
	switch cmd.Action() {
	case risk.Approve:
		err = h.approve(o, cmd, now)
	case risk.Reject:
		err = h.reject(ctx, uow, o, cmd, now)
		rejection = errs.NewRiskRejectionError(o.ID().String(), cmd.Reason(), cmd.IsFraud())
	}
	if err != nil {
		return DecisionResult{}, err
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return DecisionResult{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return DecisionResult{}, err
	}

	result := DecisionResult{OrderID: o.ID(), Action: cmd.Action(), Status: o.Status(), Rejection: rejection}
	if s := o.RiskSnapshot(); s != nil {
		result.RiskLevel = s.Level()
	}
	return result, nil
}

func (h DecideCODOrderCommandHandler) approve(o *order.Order, cmd DecideCODOrderCommand, now time.Time) error {
	if o.Status() == order.WaitingConfirmation && o.IsExpired(now) {
		return errs.NewExpiryViolationError(o.ID().String(), *o.ConfirmationDeadline())
	}

	decision, err := risk.NewApproval(cmd.Actor(), cmd.AcknowledgeHighRisk(), now)
	if err != nil {
		return err
	}
	if err = o.RecordRiskDecision(decision); err != nil {
		return err
	}
	return o.Transition(order.Queueing, cmd.Actor(), "cod approved", order.Guards{}, now)
}

func (h DecideCODOrderCommandHandler) reject(
	ctx context.Context,
	uow UoW,
	o *order.Order,
	cmd DecideCODOrderCommand,
	now time.Time,
) error {
	decision, err := risk.NewRejection(cmd.Actor(), cmd.Reason(), cmd.IsFraud(), now)
	if err != nil {
		return err
	}
	if err = o.RecordRiskDecision(decision); err != nil {
		return err
	}
	if err = o.Cancel(cmd.Actor(), cmd.Reason(), now); err != nil {
		return err
	}
	if err = withdrawLocation(ctx, uow, o.ID(), now); err != nil {
		return err
	}

	if !cmd.IsFraud() {
		return nil
	}

	repo := uow.CustomerRepository()
	c, err := repo.GetForUpdate(ctx, o.CustomerID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		c, err = customer.NewCustomer(o.CustomerID(), h.defaultTrustScore, false)
	}
	if err != nil {
		return err
	}
	if err = c.FlagFraud(cmd.Reason(), now); err != nil {
		return err
	}
	return repo.Save(ctx, c)
}
