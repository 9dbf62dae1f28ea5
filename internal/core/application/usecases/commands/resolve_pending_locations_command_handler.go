package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// ResolveFailure is a location whose attempt could not be applied at all,
// as opposed to an attempt that was recorded as failed.
type ResolveFailure struct {
	OrderID kernel.UUID
	Err     error
}

// ResolveReport collects the outcome of one resolver sweep.
type ResolveReport struct {
	Results  []ResolveGeocodeResult
	Failures []ResolveFailure
}

// ResolvePendingLocationsCommandHandler runs ResolveGeocodeCommandHandler for
// every due pending location, one transaction per location.
type ResolvePendingLocationsCommandHandler struct {
	uowFactory UoWFactory
	resolve    ResolveGeocodeCommandHandler
	clock      Clock
}

func NewResolvePendingLocationsCommandHandler(
	uowFactory UoWFactory,
	resolve ResolveGeocodeCommandHandler,
	clock Clock,
) ResolvePendingLocationsCommandHandler {
	return ResolvePendingLocationsCommandHandler{
		uowFactory: uowFactory,
		resolve:    resolve,
		clock:      orSystemClock(clock),
	}
}

func (h ResolvePendingLocationsCommandHandler) Handle(ctx context.Context, cmd ResolvePendingLocationsCommand) (ResolveReport, error) {
	if err := cmd.Validate(); err != nil {
		return ResolveReport{}, err
	}

	due, err := h.uowFactory.Create().LocationRepository().ListDue(ctx, h.clock(), cmd.Limit())
	if err != nil {
		return ResolveReport{}, err
	}

	var report ResolveReport
	for _, loc := range due {
		if err = ctx.Err(); err != nil {
			return report, err
		}

		resolveCmd, cmdErr := NewResolveGeocodeCommand(loc.OrderID())
		if cmdErr != nil {
			return report, cmdErr
		}

		res, resolveErr := h.resolve.Handle(ctx, resolveCmd)
		if resolveErr != nil {
			report.Failures = append(report.Failures, ResolveFailure{OrderID: loc.OrderID(), Err: resolveErr})
			continue
		}
		report.Results = append(report.Results, res)
	}

	return report, nil
}
