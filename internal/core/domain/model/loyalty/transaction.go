package loyalty

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	Earned   TransactionType = "earned"
	Redeemed TransactionType = "redeemed"
	Expired  TransactionType = "expired"
	Bonus    TransactionType = "bonus"
)

func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(s)
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Earned, Redeemed, Expired, Bonus:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("type", fmt.Errorf("%q is not a transaction type", string(t)))
	}
}

// Sign is +1 for credits and -1 for debits.
func (t TransactionType) Sign() int64 {
	if t == Redeemed || t == Expired {
		return -1
	}
	return 1
}

func (t TransactionType) String() string { return string(t) }

var ErrTransactionIsNotConstructed = errors.New("Transaction must be created via an Account operation")

// Transaction is one immutable ledger entry.
type Transaction struct {
	id        kernel.UUID
	accountID kernel.UUID
	txType    TransactionType
	points    int64
	orderRef  *kernel.UUID
	earnKey   *string
	reason    string
	createdAt time.Time

	guard guard.ConstructorGuard
}

// TransactionState is the persisted form of a Transaction.
type TransactionState struct {
	ID        kernel.UUID
	AccountID kernel.UUID
	Type      TransactionType
	Points    int64
	OrderRef  *kernel.UUID
	EarnKey   *string
	Reason    string
	CreatedAt time.Time
}

func newTransaction(s TransactionState) (*Transaction, error) {
	var problems []error
	problems = append(problems, s.ID.Validate(), s.AccountID.Validate(), s.Type.Validate())
	if s.Points < 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("points", s.Points, 0, "∞"))
	}
	if s.CreatedAt.IsZero() {
		problems = append(problems, errs.NewValueIsRequiredError("created_at"))
	}
	if err := errors.Join(problems...); err != nil {
		return nil, err
	}
	return &Transaction{
		id:        s.ID,
		accountID: s.AccountID,
		txType:    s.Type,
		points:    s.Points,
		orderRef:  s.OrderRef,
		earnKey:   s.EarnKey,
		reason:    strings.TrimSpace(s.Reason),
		createdAt: s.CreatedAt,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// RestoreTransaction rebuilds a ledger entry from storage.
func RestoreTransaction(s TransactionState) (*Transaction, error) {
	return newTransaction(s)
}

func (t *Transaction) Validate() error {
	if t == nil {
		return ErrTransactionIsNotConstructed
	}
	return t.guard.Validate(ErrTransactionIsNotConstructed)
}

func (t *Transaction) ID() kernel.UUID        { return t.id }
func (t *Transaction) AccountID() kernel.UUID { return t.accountID }
func (t *Transaction) Type() TransactionType  { return t.txType }
func (t *Transaction) Points() int64          { return t.points }
func (t *Transaction) OrderRef() *kernel.UUID { return t.orderRef }
func (t *Transaction) EarnKey() *string       { return t.earnKey }
func (t *Transaction) Reason() string         { return t.reason }
func (t *Transaction) CreatedAt() time.Time   { return t.createdAt }

// SignedPoints is the contribution of this entry to the balance.
func (t *Transaction) SignedPoints() int64 {
	return t.txType.Sign() * t.points
}

// Sum returns the balance implied by a list of transactions.
func Sum(txs []*Transaction) int64 {
	var total int64
	for _, t := range txs {
		total += t.SignedPoints()
	}
	return total
}

// EarnKeyFor is the idempotency key of the Earned entry for an order.
func EarnKeyFor(orderID kernel.UUID) string {
	return "earn:" + orderID.String()
}
