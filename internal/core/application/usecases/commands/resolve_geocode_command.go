package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrResolveGeocodeCommandIsNotConstructed = errors.New(
		"ResolveGeocodeCommand must be created via NewResolveGeocodeCommand constructor",
	)
	ErrResolvePendingLocationsCommandIsNotConstructed = errors.New(
		"ResolvePendingLocationsCommand must be created via NewResolvePendingLocationsCommand constructor",
	)
)

// ResolveGeocodeCommand runs one geocoding attempt for an order's pending location.
type ResolveGeocodeCommand struct {
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewResolveGeocodeCommand(orderID kernel.UUID) (ResolveGeocodeCommand, error) {
	if err := orderID.Validate(); err != nil {
		return ResolveGeocodeCommand{}, err
	}
	return ResolveGeocodeCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c ResolveGeocodeCommand) Validate() error {
	return c.guard.Validate(ErrResolveGeocodeCommandIsNotConstructed)
}

func (c ResolveGeocodeCommand) OrderID() kernel.UUID { return c.orderID }

// ResolvePendingLocationsCommand runs one attempt for up to limit due locations.
type ResolvePendingLocationsCommand struct {
	limit int
	guard guard.ConstructorGuard
}

func NewResolvePendingLocationsCommand(limit int) (ResolvePendingLocationsCommand, error) {
	if limit <= 0 {
		return ResolvePendingLocationsCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, "∞")
	}
	return ResolvePendingLocationsCommand{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (c ResolvePendingLocationsCommand) Validate() error {
	return c.guard.Validate(ErrResolvePendingLocationsCommandIsNotConstructed)
}

func (c ResolvePendingLocationsCommand) Limit() int { return c.limit }
