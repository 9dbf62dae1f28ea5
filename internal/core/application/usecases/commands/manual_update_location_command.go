package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrManualUpdateLocationCommandIsNotConstructed = errors.New(
	"ManualUpdateLocationCommand must be created via NewManualUpdateLocationCommand constructor",
)

// ManualUpdateLocationCommand sets operator-provided coordinates for an
// order whose address could not be resolved (or was resolved wrongly).
type ManualUpdateLocationCommand struct {
	orderID kernel.UUID
	point   kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewManualUpdateLocationCommand rejects coordinates outside the valid
// latitude and longitude ranges.
func NewManualUpdateLocationCommand(orderID kernel.UUID, lat, lng float64) (ManualUpdateLocationCommand, error) {
	var problems []error
	if err := orderID.Validate(); err != nil {
		problems = append(problems, err)
	}
	point, err := kernel.NewGeoPoint(lat, lng)
	if err != nil {
		problems = append(problems, err)
	}
	if err = errors.Join(problems...); err != nil {
		return ManualUpdateLocationCommand{}, err
	}

	return ManualUpdateLocationCommand{orderID: orderID, point: point, guard: guard.NewConstructorGuard()}, nil
}

func (c ManualUpdateLocationCommand) Validate() error {
	return c.guard.Validate(ErrManualUpdateLocationCommandIsNotConstructed)
}

func (c ManualUpdateLocationCommand) OrderID() kernel.UUID   { return c.orderID }
func (c ManualUpdateLocationCommand) Point() kernel.GeoPoint { return c.point }
