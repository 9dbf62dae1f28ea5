package delivery

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// GeocodeStatus is the resolution state of a delivery location.
type GeocodeStatus string

const (
	Pending           GeocodeStatus = "pending"
	Resolved          GeocodeStatus = "resolved"
	Failed            GeocodeStatus = "failed"
	ManuallyCorrected GeocodeStatus = "manually_corrected"
)

func ParseGeocodeStatus(s string) (GeocodeStatus, error) {
	status := GeocodeStatus(s)
	if err := status.Validate(); err != nil {
		return "", err
	}
	return status, nil
}

func (s GeocodeStatus) Validate() error {
	switch s {
	case Pending, Resolved, Failed, ManuallyCorrected:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("geocode_status", fmt.Errorf("%q is not a geocode status", string(s)))
	}
}

// IsDispatchable reports whether a courier may be sent to a location in this state.
func (s GeocodeStatus) IsDispatchable() bool {
	return s == Resolved || s == ManuallyCorrected
}

func (s GeocodeStatus) String() string {
	return string(s)
}
