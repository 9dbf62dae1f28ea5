package commands

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// GeocodeSettings bounds the background resolver.
type GeocodeSettings struct {
	// MaxAttempts moves a location to Failed once reached.
	MaxAttempts int
	// Backoff is multiplied by the attempt count to schedule the next try.
	Backoff time.Duration
	// Timeout caps a single geocoder call.
	Timeout time.Duration
}

// DefaultGeocodeSettings returns 3 attempts, a 1 minute backoff step and a
// 5 second call timeout.
func DefaultGeocodeSettings() GeocodeSettings {
	return GeocodeSettings{MaxAttempts: 3, Backoff: time.Minute, Timeout: 5 * time.Second}
}

// ResolveGeocodeResult describes one attempt. Failure carries the
// errs.GeocodeFailureError of a failed attempt; Skipped is set when the
// location was no longer pending.
type ResolveGeocodeResult struct {
	OrderID     kernel.UUID
	Status      delivery.GeocodeStatus
	Attempts    int
	DistanceKm  *float64
	RiskUpdated bool
	Failure     error
	Skipped     bool
}

// ResolveGeocodeCommandHandler calls the geocoder for a pending location and
// applies the outcome.
//
// The geocoder call happens before any transaction is opened. The result is
// then applied under the order and location row locks, after re-checking
// that the location is still pending, so a manual correction made during the
// call is never overwritten. Coordinates outside the delivery radius count as
// a failed attempt. A pending location of a finished order is withdrawn from
// the queue without calling the geocoder.
type ResolveGeocodeCommandHandler struct {
	uowFactory   UoWFactory
	geocoder     ports.Geocoder
	fees         services.FeeCalculator
	engine       services.RiskEngine
	riskSettings RiskSettings
	settings     GeocodeSettings
	clock        Clock
}

func NewResolveGeocodeCommandHandler(
	uowFactory UoWFactory,
	geocoder ports.Geocoder,
	fees services.FeeCalculator,
	engine services.RiskEngine,
	riskSettings RiskSettings,
	settings GeocodeSettings,
	clock Clock,
) ResolveGeocodeCommandHandler {
	return ResolveGeocodeCommandHandler{
		uowFactory:   uowFactory,
		geocoder:     geocoder,
		fees:         fees,
		engine:       engine,
		riskSettings: riskSettings,
		settings:     settings,
		clock:        orSystemClock(clock),
	}
}

func (h ResolveGeocodeCommandHandler) Handle(ctx context.Context, cmd ResolveGeocodeCommand) (ResolveGeocodeResult, error) {
	if err := cmd.Validate(); err != nil {
		return ResolveGeocodeResult{}, err
	}

	reader := h.uowFactory.Create()
	loc, err := reader.LocationRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return ResolveGeocodeResult{}, err
	}
	if loc.Status() != delivery.Pending {
		return skipped(loc), nil
	}
	o, err := reader.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return ResolveGeocodeResult{}, err
	}
	if o.Status().IsTerminal() {
		return h.withdraw(ctx, cmd.OrderID())
	}

	point, lookupErr := h.lookup(ctx, loc.Address())
	if lookupErr != nil && ctx.Err() != nil {
		return ResolveGeocodeResult{}, ctx.Err()
	}

	return h.apply(ctx, cmd.OrderID(), point, lookupErr)
}

func (h ResolveGeocodeCommandHandler) lookup(ctx context.Context, address string) (kernel.GeoPoint, error) {
	callCtx := ctx
	if h.settings.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, h.settings.Timeout)
		defer cancel()
	}
	return h.geocoder.Geocode(callCtx, address)
}

func (h ResolveGeocodeCommandHandler) apply(
	ctx context.Context,
	orderID kernel.UUID,
	point kernel.GeoPoint,
	lookupErr error,
) (ResolveGeocodeResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ResolveGeocodeResult{}, err
	}
	defer rollback(ctx, uow)

	now := h.clock()
	o, err := uow.OrderRepository().GetForUpdate(ctx, orderID)
	if err != nil {
		return ResolveGeocodeResult{}, err
	}
	loc, err := uow.LocationRepository().GetForUpdate(ctx, orderID)
	if err != nil {
		return ResolveGeocodeResult{}, err
	}
	if loc.Status() != delivery.Pending {
		return skipped(loc), nil
	}
	if o.Status().IsTerminal() {
		if loc.Withdraw(now) {
			if err = uow.LocationRepository().Update(ctx, loc); err != nil {
				return ResolveGeocodeResult{}, err
			}
			if err = uow.Commit(ctx); err != nil {
				return ResolveGeocodeResult{}, err
			}
		}
		return skipped(loc), nil
	}

	result := ResolveGeocodeResult{OrderID: orderID}
	reason := ""
	var km float64
	switch {
	case lookupErr != nil:
		reason = lookupErr.Error()
	default:
		km, err = h.fees.CheckEligible(point)
		if errs.IsValidation(err) {
			reason = services.ReasonOutsideRadius
		} else if err != nil {
			return ResolveGeocodeResult{}, err
		}
	}

	if reason != "" {
		result.Failure = loc.RecordFailure(reason, h.settings.MaxAttempts, h.settings.Backoff, now)
		if !errors.Is(result.Failure, errs.ErrGeocodeFailure) {
			return ResolveGeocodeResult{}, result.Failure
		}
	} else {
		if err = loc.Resolve(point, now); err != nil {
			return ResolveGeocodeResult{}, err
		}
		result.DistanceKm = &km
		if result.RiskUpdated, err = refreshRisk(ctx, uow, h.engine, h.riskSettings, o, km, now); err != nil {
			return ResolveGeocodeResult{}, err
		}
	}

	if err = uow.LocationRepository().Update(ctx, loc); err != nil {
		return ResolveGeocodeResult{}, err
	}
	if result.RiskUpdated {
		if err = uow.OrderRepository().Update(ctx, o); err != nil {
			return ResolveGeocodeResult{}, err
		}
	}
	if err = uow.Commit(ctx); err != nil {
		return ResolveGeocodeResult{}, err
	}

	result.Status = loc.Status()
	result.Attempts = loc.Attempts()
	return result, nil
}

// withdraw moves a pending location of a finished order out of the retry
// queue, for rows left pending before cancellations withdrew them.
func (h ResolveGeocodeCommandHandler) withdraw(ctx context.Context, orderID kernel.UUID) (ResolveGeocodeResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ResolveGeocodeResult{}, err
	}
	defer rollback(ctx, uow)

	if _, err := uow.OrderRepository().GetForUpdate(ctx, orderID); err != nil {
		return ResolveGeocodeResult{}, err
	}
	if err := withdrawLocation(ctx, uow, orderID, h.clock()); err != nil {
		return ResolveGeocodeResult{}, err
	}
	if err := uow.Commit(ctx); err != nil {
		return ResolveGeocodeResult{}, err
	}

	loc, err := h.uowFactory.Create().LocationRepository().Get(ctx, orderID)
	if err != nil {
		return ResolveGeocodeResult{}, err
	}
	return skipped(loc), nil
}

func skipped(loc *delivery.Location) ResolveGeocodeResult {
	return ResolveGeocodeResult{
		OrderID:  loc.OrderID(),
		Status:   loc.Status(),
		Attempts: loc.Attempts(),
		Skipped:  true,
	}
}
