package queries

import (
	"context"
	"math"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type pendingCODRow struct {
	ID                   uuid.UUID
	CustomerID           uuid.UUID
	Address              string
	Total                decimal.Decimal
	CODAmountLimit       decimal.Decimal `gorm:"column:cod_amount_limit"`
	PlacedAt             time.Time
	ConfirmationDeadline time.Time
	GeocodeStatus        *string
	Risk                 riskRow `gorm:"embedded"`
}

// GetPendingCODOrdersQueryHandler serves the admin queue, most urgent first.
type GetPendingCODOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetPendingCODOrdersQueryHandler(db *gorm.DB) GetPendingCODOrdersQueryHandler {
	return GetPendingCODOrdersQueryHandler{db: db}
}

func (h GetPendingCODOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetPendingCODOrdersQuery,
) ([]GetPendingCODOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var rows []pendingCODRow
	err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.customer_id,
			o.address,
			o.total,
			o.cod_amount_limit,
			o.placed_at,
			o.confirmation_deadline,
			l.status AS geocode_status,`+riskColumns+`
		FROM orders o
		LEFT JOIN delivery_locations l ON l.order_id = o.id
		WHERE o.status = ?
			AND o.payment_method = ?
		ORDER BY o.confirmation_deadline, o.id
	`, int(order.WaitingConfirmation), order.COD.String()).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	pending := make([]GetPendingCODOrdersQueryResponse, 0, len(rows))
	for _, r := range rows {
		id, idErr := kernel.UUIDFromBytes(r.ID[:])
		if idErr != nil {
			return nil, idErr
		}
		customerID, idErr := kernel.UUIDFromBytes(r.CustomerID[:])
		if idErr != nil {
			return nil, idErr
		}

		deadline := r.ConfirmationDeadline.UTC()
		pending = append(pending, GetPendingCODOrdersQueryResponse{
			ID:                   id,
			CustomerID:           customerID,
			Address:              r.Address,
			Total:                r.Total,
			CODAmountLimit:       r.CODAmountLimit,
			PlacedAt:             r.PlacedAt.UTC(),
			ConfirmationDeadline: deadline,
			MinutesRemaining:     minutesRemaining(deadline, query.Now()),
			GeocodeStatus:        deref(r.GeocodeStatus),
			Risk:                 r.Risk.view(),
		})
	}

	return pending, nil
}

// minutesRemaining rounds up so that a deadline 30 seconds away still reads 1.
func minutesRemaining(deadline, now time.Time) int {
	left := deadline.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Minutes()))
}
