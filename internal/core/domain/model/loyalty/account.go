package loyalty

import (
	"errors"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrAccountIsNotConstructed = errors.New("Account must be created via NewAccount constructor")

// Account is the ledger head of one customer. Its id is the customer id.
//
// Every operation returns the Transaction it appended; the caller persists
// it and the repository re-derives the stored balance from the log in the
// same database transaction.
type Account struct {
	id        kernel.UUID
	balance   int64
	updatedAt time.Time

	guard guard.ConstructorGuard
}

func NewAccount(id kernel.UUID, at time.Time) (*Account, error) {
	return RestoreAccount(id, 0, at)
}

func RestoreAccount(id kernel.UUID, balance int64, updatedAt time.Time) (*Account, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if balance < 0 {
		return nil, errs.NewValueIsOutOfRangeError("points_balance", balance, 0, "∞")
	}
	return &Account{id: id, balance: balance, updatedAt: updatedAt, guard: guard.NewConstructorGuard()}, nil
}

func (a *Account) Validate() error {
	if a == nil {
		return ErrAccountIsNotConstructed
	}
	return a.guard.Validate(ErrAccountIsNotConstructed)
}

func (a *Account) ID() kernel.UUID      { return a.id }
func (a *Account) Balance() int64       { return a.balance }
func (a *Account) UpdatedAt() time.Time { return a.updatedAt }

// Earn credits floor(settled / EarnDivisor) points for a completed order.
// A zero-point entry is still written so the order is marked settled.
func (a *Account) Earn(txID, orderID kernel.UUID, settled decimal.Decimal, policy Policy, at time.Time) (*Transaction, error) {
	if err := orderID.Validate(); err != nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("order_id", err)
	}
	key := EarnKeyFor(orderID)
	return a.append(TransactionState{
		ID:        txID,
		AccountID: a.id,
		Type:      Earned,
		Points:    policy.EarnPoints(settled),
		OrderRef:  &orderID,
		EarnKey:   &key,
		CreatedAt: at,
	})
}

// Redeem debits points against an order subtotal and returns the discount
// they are worth. orderRef is nil for a quote-style redemption not yet tied
// to an order.
func (a *Account) Redeem(
	txID kernel.UUID,
	points int64,
	subtotal decimal.Decimal,
	orderRef *kernel.UUID,
	policy Policy,
	at time.Time,
) (*Transaction, decimal.Decimal, error) {
	if err := policy.ValidateRedemption(points, a.balance, subtotal); err != nil {
		return nil, decimal.Zero, err
	}
	tx, err := a.append(TransactionState{
		ID:        txID,
		AccountID: a.id,
		Type:      Redeemed,
		Points:    points,
		OrderRef:  orderRef,
		CreatedAt: at,
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	return tx, policy.Discount(points), nil
}

// GrantBonus credits an operator-granted bonus.
func (a *Account) GrantBonus(txID kernel.UUID, points int64, reason string, at time.Time) (*Transaction, error) {
	if points <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("points", points, 1, "∞")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, errs.NewValueIsRequiredError("reason")
	}
	return a.append(TransactionState{
		ID:        txID,
		AccountID: a.id,
		Type:      Bonus,
		Points:    points,
		Reason:    reason,
		CreatedAt: at,
	})
}

func (a *Account) append(s TransactionState) (*Transaction, error) {
	tx, err := newTransaction(s)
	if err != nil {
		return nil, err
	}
	next := a.balance + tx.SignedPoints()
	if next < 0 {
		return nil, errs.NewValueIsOutOfRangeError("points_balance", next, 0, "∞")
	}
	a.balance = next
	a.updatedAt = s.CreatedAt
	return tx, nil
}
