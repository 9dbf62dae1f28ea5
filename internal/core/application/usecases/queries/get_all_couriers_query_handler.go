package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAllCouriersQueryHandler retrieves all courier information from the database.
// Uses direct SQL queries for optimal read performance in the CQRS pattern.
//
// Example:
//
//	handler := NewGetAllCouriersQueryHandler(db)
//	query := NewGetAllCouriersQuery()
//
//	couriers, err := handler.Handle(ctx, query)
//	if err != nil {
//	    logger.Error("Failed to get couriers", "error", err)
//	    return err
//	}
type GetAllCouriersQueryHandler struct {
	db *gorm.DB
}

// NewGetAllCouriersQueryHandler creates a handler for courier retrieval queries.
func NewGetAllCouriersQueryHandler(db *gorm.DB) GetAllCouriersQueryHandler {
	return GetAllCouriersQueryHandler{db: db}
}

// Handle executes the query to retrieve all couriers sorted by name.
func (h GetAllCouriersQueryHandler) Handle(
	ctx context.Context,
	query GetAllCouriersQuery,
) ([]GetAllCouriersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	couriers := make([]GetAllCouriersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			c.id,
			c.name,
			c.phone,
			c.vehicle_type,
			c.availability,
			a.order_id
		FROM couriers c
		LEFT JOIN courier_assignments a ON a.courier_id = c.id AND a.released_at IS NULL
		ORDER BY c.name, c.id
	`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c                     GetAllCouriersQueryResponse
			id                    uuid.UUID
			activeOrder           uuid.NullUUID
			vehicle, availability string
		)

		err = rows.Scan(&id, &c.Name, &c.Phone, &vehicle, &availability, &activeOrder)
		if err != nil {
			return nil, err
		}

		courierID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		c.ID = courierID
		c.VehicleType = courier.VehicleType(vehicle)
		c.Availability = courier.Availability(availability)

		if activeOrder.Valid {
			orderID, idErr := kernel.UUIDFromBytes(activeOrder.UUID[:])
			if idErr != nil {
				return nil, idErr
			}
			c.ActiveOrderID = &orderID
		}
		couriers = append(couriers, c)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return couriers, nil
}
