package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetPendingCODOrdersQueryIsNotConstructed = errors.New(
	"GetPendingCODOrdersQuery must be created via NewGetPendingCODOrdersQuery constructor",
)

// GetPendingCODOrdersQuery lists COD orders waiting for an admin decision,
// with the risk data the admin decides on.
type GetPendingCODOrdersQuery struct {
	now   time.Time
	guard guard.ConstructorGuard
}

// NewGetPendingCODOrdersQuery takes the instant minutes_remaining is
// measured from.
func NewGetPendingCODOrdersQuery(now time.Time) GetPendingCODOrdersQuery {
	return GetPendingCODOrdersQuery{now: now, guard: guard.NewConstructorGuard()}
}

func (q GetPendingCODOrdersQuery) Now() time.Time { return q.now }

func (q GetPendingCODOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetPendingCODOrdersQueryIsNotConstructed)
}

// GetPendingCODOrdersQueryResponse is one row of the admin queue.
// MinutesRemaining is 0 once the deadline has passed; the watchdog cancels
// such orders on its next sweep.
type GetPendingCODOrdersQueryResponse struct {
	ID                   kernel.UUID
	CustomerID           kernel.UUID
	Address              string
	Total                decimal.Decimal
	CODAmountLimit       decimal.Decimal
	PlacedAt             time.Time
	ConfirmationDeadline time.Time
	MinutesRemaining     int
	GeocodeStatus        string
	Risk                 *RiskView
}
