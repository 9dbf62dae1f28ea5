package commands

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
)

// DispatchFailure is an order the sweep could not assign.
type DispatchFailure struct {
	OrderID kernel.UUID
	Err     error
}

// DispatchReport summarizes one sweep. Exhausted is set when the sweep
// stopped early because no courier was left.
type DispatchReport struct {
	Assigned  []AssignCourierResult
	Failures  []DispatchFailure
	Exhausted bool
}

// DispatchPendingOrdersCommandHandler assigns couriers to every order that
// waits for one, each in its own transaction through AssignCourierCommandHandler.
type DispatchPendingOrdersCommandHandler struct {
	uowFactory UoWFactory
	assign     AssignCourierCommandHandler
}

func NewDispatchPendingOrdersCommandHandler(uowFactory UoWFactory, clock Clock) DispatchPendingOrdersCommandHandler {
	return DispatchPendingOrdersCommandHandler{
		uowFactory: uowFactory,
		assign:     NewAssignCourierCommandHandler(uowFactory, clock),
	}
}

func (h DispatchPendingOrdersCommandHandler) Handle(ctx context.Context, cmd DispatchPendingOrdersCommand) (DispatchReport, error) {
	if err := cmd.Validate(); err != nil {
		return DispatchReport{}, err
	}

	ids, err := h.uowFactory.Create().OrderRepository().ListAwaitingCourier(ctx, cmd.Limit())
	if err != nil {
		return DispatchReport{}, err
	}

	var report DispatchReport
	for _, id := range ids {
		if err = ctx.Err(); err != nil {
			return report, err
		}

		assignCmd, cmdErr := NewAssignCourierCommand(id, nil)
		if cmdErr != nil {
			return report, cmdErr
		}

		res, assignErr := h.assign.Handle(ctx, assignCmd)
		if errors.Is(assignErr, ErrNoCourierAvailable) {
			report.Exhausted = true
			return report, nil
		}
		if assignErr != nil {
			report.Failures = append(report.Failures, DispatchFailure{OrderID: id, Err: assignErr})
			continue
		}
		report.Assigned = append(report.Assigned, res)
	}

	return report, nil
}
