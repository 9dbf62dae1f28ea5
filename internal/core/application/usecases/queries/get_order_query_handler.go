package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type orderDetailRow struct {
	ID                   uuid.UUID
	CustomerID           uuid.UUID
	PaymentMethod        string
	Items                datatypes.JSONSlice[order.Item]
	Address              string
	Subtotal             decimal.Decimal
	DeliveryFee          decimal.Decimal
	Discount             decimal.Decimal
	Total                decimal.Decimal
	Status               int
	CODAmountLimit       decimal.Decimal `gorm:"column:cod_amount_limit"`
	ConfirmationDeadline *time.Time
	PlacedAt             time.Time
	ConfirmedAt          *time.Time
	PackedAt             *time.Time
	OutForDeliveryAt     *time.Time
	DeliveredAt          *time.Time
	PaymentReceivedAt    *time.Time
	CancelledAt          *time.Time
	CancellationReason   string
	Risk                 riskRow     `gorm:"embedded"`
	Decision             decisionRow `gorm:"embedded"`

	LocationStatus        *string
	LocationLat           *float64
	LocationLng           *float64
	LocationAttempts      *int
	LocationLastError     *string
	LocationNextAttemptAt *time.Time

	CourierID          *uuid.UUID
	CourierName        *string
	CourierVehicleType *string
	CourierAssignedAt  *time.Time
}

// GetOrderQueryHandler reads the order detail in one statement.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle returns ErrObjectNotFound for unknown ids.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	var row orderDetailRow
	result := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.customer_id,
			o.payment_method,
			o.items,
			o.address,
			o.subtotal,
			o.delivery_fee,
			o.discount,
			o.total,
			o.status,
			o.cod_amount_limit,
			o.confirmation_deadline,
			o.placed_at,
			o.confirmed_at,
			o.packed_at,
			o.out_for_delivery_at,
			o.delivered_at,
			o.payment_received_at,
			o.cancelled_at,
			o.cancellation_reason,`+riskColumns+`,
			o.decision_action,
			o.decision_actor,
			o.decision_reason,
			o.decision_is_fraud,
			o.decision_high_risk_acknowledged,
			o.decision_decided_at,
			l.status AS location_status,
			l.lat AS location_lat,
			l.lng AS location_lng,
			l.attempts AS location_attempts,
			l.last_error AS location_last_error,
			l.next_attempt_at AS location_next_attempt_at,
			a.courier_id AS courier_id,
			c.name AS courier_name,
			a.vehicle_type AS courier_vehicle_type,
			a.assigned_at AS courier_assigned_at
		FROM orders o
		LEFT JOIN delivery_locations l ON l.order_id = o.id
		LEFT JOIN courier_assignments a ON a.order_id = o.id AND a.released_at IS NULL
		LEFT JOIN couriers c ON c.id = a.courier_id
		WHERE o.id = ?
	`, query.OrderID().Bytes()).Scan(&row)
	if result.Error != nil {
		return GetOrderQueryResponse{}, result.Error
	}
	if result.RowsAffected == 0 {
		return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID())
	}

	return row.response()
}

func (r orderDetailRow) response() (GetOrderQueryResponse, error) {
	id, err := kernel.UUIDFromBytes(r.ID[:])
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	customerID, err := kernel.UUIDFromBytes(r.CustomerID[:])
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	res := GetOrderQueryResponse{
		ID:                   id,
		CustomerID:           customerID,
		PaymentMethod:        order.PaymentMethod(r.PaymentMethod),
		Status:               order.Status(r.Status),
		Items:                []order.Item(r.Items),
		Address:              r.Address,
		Subtotal:             r.Subtotal,
		DeliveryFee:          r.DeliveryFee,
		Discount:             r.Discount,
		Total:                r.Total,
		CODAmountLimit:       r.CODAmountLimit,
		ConfirmationDeadline: utc(r.ConfirmationDeadline),
		PlacedAt:             r.PlacedAt.UTC(),
		ConfirmedAt:          utc(r.ConfirmedAt),
		PackedAt:             utc(r.PackedAt),
		OutForDeliveryAt:     utc(r.OutForDeliveryAt),
		DeliveredAt:          utc(r.DeliveredAt),
		PaymentReceivedAt:    utc(r.PaymentReceivedAt),
		CancelledAt:          utc(r.CancelledAt),
		CancellationReason:   r.CancellationReason,
		Risk:                 r.Risk.view(),
		Decision:             r.Decision.view(),
	}

	if r.LocationStatus != nil {
		res.Location = &LocationView{
			Status:        delivery.GeocodeStatus(*r.LocationStatus),
			Lat:           r.LocationLat,
			Lng:           r.LocationLng,
			Attempts:      deref(r.LocationAttempts),
			LastError:     deref(r.LocationLastError),
			NextAttemptAt: utc(r.LocationNextAttemptAt),
		}
	}

	if r.CourierID != nil {
		courierID, err := kernel.UUIDFromBytes(r.CourierID[:])
		if err != nil {
			return GetOrderQueryResponse{}, err
		}
		res.Courier = &AssignmentView{
			CourierID:   courierID,
			CourierName: deref(r.CourierName),
			VehicleType: courier.VehicleType(deref(r.CourierVehicleType)),
			AssignedAt:  deref(r.CourierAssignedAt).UTC(),
		}
	}

	return res, nil
}
