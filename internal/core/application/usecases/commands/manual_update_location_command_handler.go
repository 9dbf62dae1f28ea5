package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"
)

// ManualUpdateResult reports the corrected location. Changed is false when
// the same coordinates had already been applied.
type ManualUpdateResult struct {
	OrderID     kernel.UUID
	Status      delivery.GeocodeStatus
	DistanceKm  float64
	Changed     bool
	RiskUpdated bool
}

// ManualUpdateLocationCommandHandler applies an operator correction.
// The point must lie inside the delivery radius and the order must not be
// finished. A COD order still waiting for its decision gets its risk
// re-evaluated with the corrected distance.
type ManualUpdateLocationCommandHandler struct {
	uowFactory   UoWFactory
	fees         services.FeeCalculator
	engine       services.RiskEngine
	riskSettings RiskSettings
	clock        Clock
}

func NewManualUpdateLocationCommandHandler(
	uowFactory UoWFactory,
	fees services.FeeCalculator,
	engine services.RiskEngine,
	riskSettings RiskSettings,
	clock Clock,
) ManualUpdateLocationCommandHandler {
	return ManualUpdateLocationCommandHandler{
		uowFactory:   uowFactory,
		fees:         fees,
		engine:       engine,
		riskSettings: riskSettings,
		clock:        orSystemClock(clock),
	}
}

func (h ManualUpdateLocationCommandHandler) Handle(ctx context.Context, cmd ManualUpdateLocationCommand) (ManualUpdateResult, error) {
	if err := cmd.Validate(); err != nil {
		return ManualUpdateResult{}, err
	}

	km, err := h.fees.CheckEligible(cmd.Point())
	if err != nil {
		return ManualUpdateResult{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return ManualUpdateResult{}, err
	}
	defer rollback(ctx, uow)

	now := h.clock()
	o, err := uow.OrderRepository().GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return ManualUpdateResult{}, err
	}
	if o.Status().IsTerminal() {
		return ManualUpdateResult{}, errs.NewStateTransitionError(o.Status().String(), o.Status().String(),
			"location of a finished order cannot be corrected")
	}
	if o.Status() == order.OnDelivery {
		return ManualUpdateResult{}, errs.NewStateTransitionError(o.Status().String(), o.Status().String(),
			"order is already out for delivery")
	}

	loc, err := uow.LocationRepository().GetForUpdate(ctx, o.ID())
	if err != nil {
		return ManualUpdateResult{}, err
	}

	changed, err := loc.ManualUpdate(cmd.Point(), now)
	if err != nil {
		return ManualUpdateResult{}, err
	}

	result := ManualUpdateResult{OrderID: o.ID(), Status: loc.Status(), DistanceKm: km, Changed: changed}
	if !changed {
		return result, nil
	}

	if result.RiskUpdated, err = refreshRisk(ctx, uow, h.engine, h.riskSettings, o, km, now); err != nil {
		return ManualUpdateResult{}, err
	}

	if err = uow.LocationRepository().Update(ctx, loc); err != nil {
		return ManualUpdateResult{}, err
	}
	if result.RiskUpdated {
		if err = uow.OrderRepository().Update(ctx, o); err != nil {
			return ManualUpdateResult{}, err
		}
	}
	if err = uow.Commit(ctx); err != nil {
		return ManualUpdateResult{}, err
	}

	return result, nil
}
