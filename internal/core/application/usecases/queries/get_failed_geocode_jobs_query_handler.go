package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetFailedGeocodeJobsQueryHandler reads the geocoding failure queue.
// Locations of terminal orders are left out.
type GetFailedGeocodeJobsQueryHandler struct {
	db *gorm.DB
}

func NewGetFailedGeocodeJobsQueryHandler(db *gorm.DB) GetFailedGeocodeJobsQueryHandler {
	return GetFailedGeocodeJobsQueryHandler{db: db}
}

func (h GetFailedGeocodeJobsQueryHandler) Handle(
	ctx context.Context,
	query GetFailedGeocodeJobsQuery,
) ([]GetFailedGeocodeJobsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	jobs := make([]GetFailedGeocodeJobsQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			l.order_id,
			o.status,
			l.address,
			l.attempts,
			l.last_error,
			l.updated_at
		FROM delivery_locations l
		JOIN orders o ON o.id = l.order_id
		WHERE l.status = ?
			AND o.status NOT IN ?
		ORDER BY l.updated_at, l.order_id
	`, delivery.Failed.String(), []int{int(order.Completed), int(order.Cancelled)}).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id       uuid.UUID
			status   int
			job      GetFailedGeocodeJobsQueryResponse
			failedAt time.Time
		)
		if err = rows.Scan(&id, &status, &job.Address, &job.Attempts, &job.LastError, &failedAt); err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		job.OrderID = orderID
		job.OrderStatus = order.Status(status)
		job.FailedAt = failedAt.UTC()
		jobs = append(jobs, job)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}
