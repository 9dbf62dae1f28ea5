package loyalty

import (
	"errors"
	"fmt"

	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Policy holds the ledger's numeric rules.
//
//	earn        = floor(settled / EarnDivisor)
//	max_redeem  = min(balance, floor(MaxRedeemRatio × subtotal / RedeemValue))
//	discount    = points × RedeemValue
type Policy struct {
	EarnDivisor     decimal.Decimal
	RedeemValue     decimal.Decimal
	MinRedeemPoints int64
	MaxRedeemRatio  decimal.Decimal
}

// DefaultPolicy returns 1 point per 10,000 spent, each point worth 100, a
// minimum redemption of 10 points and a cap of half the subtotal.
func DefaultPolicy() Policy {
	return Policy{
		EarnDivisor:     decimal.NewFromInt(10000),
		RedeemValue:     decimal.NewFromInt(100),
		MinRedeemPoints: 10,
		MaxRedeemRatio:  decimal.NewFromFloat(0.5),
	}
}

func (p Policy) Validate() error {
	var problems []error
	if !p.EarnDivisor.IsPositive() {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("earn_divisor", fmt.Errorf("%s is not greater than 0", p.EarnDivisor)))
	}
	if !p.RedeemValue.IsPositive() {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("redeem_value", fmt.Errorf("%s is not greater than 0", p.RedeemValue)))
	}
	if p.MinRedeemPoints < 1 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("min_redeem_points", p.MinRedeemPoints, 1, "∞"))
	}
	if !p.MaxRedeemRatio.IsPositive() || p.MaxRedeemRatio.GreaterThan(decimal.NewFromInt(1)) {
		problems = append(problems, errs.NewValueIsOutOfRangeError("max_redeem_ratio", p.MaxRedeemRatio.String(), "0", "1"))
	}
	return errors.Join(problems...)
}

// EarnPoints converts a settled amount into points, rounding down.
// Non-positive amounts earn nothing.
func (p Policy) EarnPoints(settled decimal.Decimal) int64 {
	if !settled.IsPositive() {
		return 0
	}
	return settled.Div(p.EarnDivisor).Floor().IntPart()
}

// SubtotalCap is the most points an order of this subtotal may absorb.
func (p Policy) SubtotalCap(subtotal decimal.Decimal) int64 {
	if !subtotal.IsPositive() {
		return 0
	}
	return p.MaxRedeemRatio.Mul(subtotal).Div(p.RedeemValue).Floor().IntPart()
}

// MaxRedeemable is min(balance, SubtotalCap(subtotal)), never negative.
func (p Policy) MaxRedeemable(balance int64, subtotal decimal.Decimal) int64 {
	limit := min(balance, p.SubtotalCap(subtotal))
	return max(limit, 0)
}

// ValidateRedemption checks the three redemption rules. The error names the
// rule that failed and carries the maximum redeemable amount.
func (p Policy) ValidateRedemption(points, balance int64, subtotal decimal.Decimal) error {
	allowed := p.MaxRedeemable(balance, subtotal)
	outOfRange := func(cause string) error {
		return errs.NewValueIsOutOfRangeErrorWithCause("points", points, p.MinRedeemPoints, allowed, errors.New(cause))
	}

	switch {
	case points < p.MinRedeemPoints:
		return outOfRange(fmt.Sprintf("minimum redemption is %d points", p.MinRedeemPoints))
	case points > balance:
		return outOfRange(fmt.Sprintf("balance is %d points", balance))
	case points > p.SubtotalCap(subtotal):
		return outOfRange(fmt.Sprintf("at most %d points can be redeemed on a subtotal of %s",
			p.SubtotalCap(subtotal), subtotal.String()))
	}
	return nil
}

// Discount is the currency value of the given points.
func (p Policy) Discount(points int64) decimal.Decimal {
	return p.RedeemValue.Mul(decimal.NewFromInt(points))
}
