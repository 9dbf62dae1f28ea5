package services

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// ReasonOutsideRadius is attached to eligibility errors.
const ReasonOutsideRadius = "outside delivery radius"

// DeliveryPolicy configures FeeCalculator.
type DeliveryPolicy struct {
	Store                 kernel.GeoPoint
	MaxRadiusKm           float64
	FlatFee               decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
}

// Quote is the delivery part of a checkout. DistanceKm is nil when the
// address has not been geocoded yet.
type Quote struct {
	DistanceKm *float64
	Fee        decimal.Decimal
}

// FeeCalculator measures distance from the store and prices delivery.
//
// Business rules:
//   - Distance is the haversine great-circle distance rounded to 2 decimals
//   - A point is eligible iff its distance is ≤ MaxRadiusKm
//   - Fee is FlatFee within the radius, waived when subtotal ≥ FreeDeliveryThreshold
//
// Example usage:
//
//	calc, _ := services.NewFeeCalculator(policy)
//	km, err := calc.CheckEligible(dropOff)
//	if errors.Is(err, errs.ErrValueIsOutOfRange) {
//	    // reject checkout
//	}
//	fee := calc.Fee(subtotal)
type FeeCalculator struct {
	policy DeliveryPolicy
}

// NewFeeCalculator validates the policy.
func NewFeeCalculator(policy DeliveryPolicy) (FeeCalculator, error) {
	var problems []error
	problems = append(problems, policy.Store.Validate())
	if policy.MaxRadiusKm <= 0 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("max_radius_km",
			fmt.Errorf("%v is not greater than 0", policy.MaxRadiusKm)))
	}
	if policy.FlatFee.IsNegative() {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("flat_fee", fmt.Errorf("%s is negative", policy.FlatFee)))
	}
	if policy.FreeDeliveryThreshold.IsNegative() {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("free_delivery_threshold",
			fmt.Errorf("%s is negative", policy.FreeDeliveryThreshold)))
	}
	if err := errors.Join(problems...); err != nil {
		return FeeCalculator{}, err
	}
	return FeeCalculator{policy: policy}, nil
}

// Store returns the origin point all distances are measured from.
func (c FeeCalculator) Store() kernel.GeoPoint {
	return c.policy.Store
}

// MaxRadiusKm returns the eligibility radius.
func (c FeeCalculator) MaxRadiusKm() float64 {
	return c.policy.MaxRadiusKm
}

// Distance returns the distance in km from the store to p.
func (c FeeCalculator) Distance(p kernel.GeoPoint) (float64, error) {
	return c.policy.Store.DistanceKm(p)
}

// CheckEligible returns the distance, or a ValueIsOutOfRangeError when p lies
// outside the delivery radius.
func (c FeeCalculator) CheckEligible(p kernel.GeoPoint) (float64, error) {
	km, err := c.Distance(p)
	if err != nil {
		return 0, err
	}
	if km > c.policy.MaxRadiusKm {
		return km, errs.NewValueIsOutOfRangeErrorWithCause("distance_km", km, 0, c.policy.MaxRadiusKm,
			errors.New(ReasonOutsideRadius))
	}
	return km, nil
}

// Fee returns the delivery fee for an order subtotal inside the radius.
func (c FeeCalculator) Fee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(c.policy.FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return c.policy.FlatFee
}

// Quote prices delivery for checkout. A nil point (address only) is priced
// at the flat fee and its radius check is deferred to geocoding.
func (c FeeCalculator) Quote(p *kernel.GeoPoint, subtotal decimal.Decimal) (Quote, error) {
	q := Quote{Fee: c.Fee(subtotal)}
	if p == nil {
		return q, nil
	}
	km, err := c.CheckEligible(*p)
	if err != nil {
		return Quote{}, err
	}
	q.DistanceKm = &km
	return q, nil
}
