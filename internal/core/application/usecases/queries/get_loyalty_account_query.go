package queries

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/loyalty"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// MaxHistory caps the ledger rows returned with an account.
const MaxHistory = 200

var ErrGetLoyaltyAccountQueryIsNotConstructed = errors.New(
	"GetLoyaltyAccountQuery must be created via NewGetLoyaltyAccountQuery constructor",
)

// GetLoyaltyAccountQuery reads a balance and the newest ledger entries.
type GetLoyaltyAccountQuery struct {
	accountID kernel.UUID
	limit     int
	guard     guard.ConstructorGuard
}

func NewGetLoyaltyAccountQuery(accountID kernel.UUID, limit int) (GetLoyaltyAccountQuery, error) {
	var limitErr error
	if limit < 1 || limit > MaxHistory {
		limitErr = errs.NewValueIsOutOfRangeErrorWithCause("limit", limit, 1, MaxHistory,
			fmt.Errorf("history is capped at %d entries", MaxHistory))
	}
	if err := errors.Join(accountID.Validate(), limitErr); err != nil {
		return GetLoyaltyAccountQuery{}, err
	}
	return GetLoyaltyAccountQuery{accountID: accountID, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q GetLoyaltyAccountQuery) AccountID() kernel.UUID { return q.accountID }
func (q GetLoyaltyAccountQuery) Limit() int             { return q.limit }

func (q GetLoyaltyAccountQuery) Validate() error {
	return q.guard.Validate(ErrGetLoyaltyAccountQueryIsNotConstructed)
}

// LedgerEntry is one point transaction. Points is signed: redemptions and
// expiries are negative.
type LedgerEntry struct {
	ID        kernel.UUID
	Type      loyalty.TransactionType
	Points    int64
	OrderRef  *kernel.UUID
	Reason    string
	CreatedAt time.Time
}

// GetLoyaltyAccountQueryResponse describes an account. A customer that never
// earned or redeemed has a zero balance and no history.
type GetLoyaltyAccountQueryResponse struct {
	AccountID kernel.UUID
	Balance   int64
	UpdatedAt *time.Time
	History   []LedgerEntry
}
