package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrRedeemPointsCommandIsNotConstructed = errors.New(
	"RedeemPointsCommand must be created via NewRedeemPointsCommand constructor",
)

// RedeemPointsCommand debits points against an order subtotal. OrderRef
// links the redemption to an order when there is one.
type RedeemPointsCommand struct {
	accountID kernel.UUID
	points    int64
	subtotal  decimal.Decimal
	orderRef  *kernel.UUID

	guard guard.ConstructorGuard
}

func NewRedeemPointsCommand(accountID kernel.UUID, points int64, subtotal decimal.Decimal, orderRef *kernel.UUID) (RedeemPointsCommand, error) {
	var problems []error
	if err := accountID.Validate(); err != nil {
		problems = append(problems, err)
	}
	if points <= 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("points", points, 1, "∞"))
	}
	if subtotal.IsNegative() {
		problems = append(problems, errs.NewValueIsOutOfRangeError("order_subtotal", subtotal.String(), 0, "∞"))
	}
	if orderRef != nil {
		if err := orderRef.Validate(); err != nil {
			problems = append(problems, err)
		}
	}
	if err := errors.Join(problems...); err != nil {
		return RedeemPointsCommand{}, err
	}

	return RedeemPointsCommand{
		accountID: accountID,
		points:    points,
		subtotal:  subtotal,
		orderRef:  orderRef,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c RedeemPointsCommand) Validate() error {
	return c.guard.Validate(ErrRedeemPointsCommandIsNotConstructed)
}

func (c RedeemPointsCommand) AccountID() kernel.UUID    { return c.accountID }
func (c RedeemPointsCommand) Points() int64             { return c.points }
func (c RedeemPointsCommand) Subtotal() decimal.Decimal { return c.subtotal }
func (c RedeemPointsCommand) OrderRef() *kernel.UUID    { return c.orderRef }
