package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/loyalty"
)

// LoyaltyRepository persists the points ledger.
type LoyaltyRepository interface {
	// GetAccountForUpdate locks the account row, creating an empty account
	// first if the customer has none. All ledger appends for an account are
	// serialized by this lock.
	GetAccountForUpdate(ctx context.Context, id kernel.UUID, now time.Time) (*loyalty.Account, error)

	// Append writes the transaction and re-derives the account balance from
	// the log. It reports false when an entry with the same earn key
	// already exists, in which case nothing is written.
	Append(ctx context.Context, account *loyalty.Account, tx *loyalty.Transaction) (bool, error)
}
