package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/risk"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetOrderQueryIsNotConstructed = errors.New("GetOrderQuery must be created via NewGetOrderQuery constructor")

// GetOrderQuery loads one order with its risk data, delivery location and
// active courier.
type GetOrderQuery struct {
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) OrderID() kernel.UUID { return q.orderID }

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// RiskView is the stored risk snapshot of a COD order.
type RiskView struct {
	Level               risk.Level
	Score               float64
	TrustScore          int
	RecentCancellations int
	DistanceKm          float64
	IsVerified          bool
	FraudFlagged        bool
	OverLimit           bool
	EvaluatedAt         time.Time
}

// DecisionView is the recorded admin verdict.
type DecisionView struct {
	Action               risk.Action
	Actor                string
	Reason               string
	IsFraud              bool
	HighRiskAcknowledged bool
	DecidedAt            time.Time
}

// LocationView is the geocoding state of the delivery address.
type LocationView struct {
	Status        delivery.GeocodeStatus
	Lat           *float64
	Lng           *float64
	Attempts      int
	LastError     string
	NextAttemptAt *time.Time
}

// AssignmentView is the order's unreleased courier assignment.
type AssignmentView struct {
	CourierID   kernel.UUID
	CourierName string
	VehicleType courier.VehicleType
	AssignedAt  time.Time
}

// GetOrderQueryResponse is the order detail read model. Risk and Decision
// are nil for orders that never had them; Courier is nil while unassigned.
type GetOrderQueryResponse struct {
	ID                   kernel.UUID
	CustomerID           kernel.UUID
	PaymentMethod        order.PaymentMethod
	Status               order.Status
	Items                []order.Item
	Address              string
	Subtotal             decimal.Decimal
	DeliveryFee          decimal.Decimal
	Discount             decimal.Decimal
	Total                decimal.Decimal
	CODAmountLimit       decimal.Decimal
	ConfirmationDeadline *time.Time
	PlacedAt             time.Time
	ConfirmedAt          *time.Time
	PackedAt             *time.Time
	OutForDeliveryAt     *time.Time
	DeliveredAt          *time.Time
	PaymentReceivedAt    *time.Time
	CancelledAt          *time.Time
	CancellationReason   string

	Risk     *RiskView
	Decision *DecisionView
	Location *LocationView
	Courier  *AssignmentView
}
