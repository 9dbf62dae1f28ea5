package courier

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Availability is the dispatch state of a courier.
type Availability string

const (
	Available Availability = "available"
	Busy      Availability = "busy"
	Offline   Availability = "offline"
)

func ParseAvailability(s string) (Availability, error) {
	a := Availability(s)
	if err := a.Validate(); err != nil {
		return "", err
	}
	return a, nil
}

func (a Availability) Validate() error {
	switch a {
	case Available, Busy, Offline:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("availability", fmt.Errorf("%q is not a courier availability", string(a)))
	}
}

func (a Availability) String() string { return string(a) }

// VehicleType is what the courier rides. It is copied onto every assignment.
type VehicleType string

const (
	Motorbike VehicleType = "motorbike"
	Bicycle   VehicleType = "bicycle"
	Car       VehicleType = "car"
)

func ParseVehicleType(s string) (VehicleType, error) {
	v := VehicleType(s)
	if err := v.Validate(); err != nil {
		return "", err
	}
	return v, nil
}

func (v VehicleType) Validate() error {
	switch v {
	case Motorbike, Bicycle, Car:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("vehicle_type", fmt.Errorf("%q is not a vehicle type", string(v)))
	}
}

func (v VehicleType) String() string { return string(v) }
