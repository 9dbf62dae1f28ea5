package order

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/risk"

	"github.com/shopspring/decimal"
)

// State is the persisted form of an Order. Repositories fill it from storage
// and hand it to RestoreOrder.
type State struct {
	ID                   kernel.UUID
	CustomerID           kernel.UUID
	PaymentMethod        PaymentMethod
	Items                []Item
	Address              string
	Subtotal             decimal.Decimal
	DeliveryFee          decimal.Decimal
	Discount             decimal.Decimal
	Total                decimal.Decimal
	Status               Status
	RiskSnapshot         *risk.Snapshot
	RiskDecision         *risk.Decision
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
}

// RestoreOrder rebuilds an order from storage. Only identity, payment
// method and status are validated; stored amounts are trusted as written.
func RestoreOrder(s State) (*Order, error) {
	o := &Order{isConstructed: true}
	if err := errors.Join(
		o.setID(s.ID),
		o.setCustomerID(s.CustomerID),
		o.setPaymentMethod(s.PaymentMethod),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}

	o.items = append([]Item(nil), s.Items...)
	o.address = s.Address
	o.subtotal = s.Subtotal
	o.deliveryFee = s.DeliveryFee
	o.discount = s.Discount
	o.total = s.Total
	o.status = s.Status
	o.riskSnapshot = s.RiskSnapshot
	o.riskDecision = s.RiskDecision
	o.codAmountLimit = s.CODAmountLimit
	o.confirmationDeadline = s.ConfirmationDeadline
	o.placedAt = s.PlacedAt
	o.confirmedAt = s.ConfirmedAt
	o.packedAt = s.PackedAt
	o.outForDeliveryAt = s.OutForDeliveryAt
	o.deliveredAt = s.DeliveredAt
	o.paymentReceivedAt = s.PaymentReceivedAt
	o.cancelledAt = s.CancelledAt
	o.cancellationReason = s.CancellationReason
	return o, nil
}

// State returns the persisted form of the order. Recorded events are not part
// of it.
func (o *Order) State() State {
	return State{
		ID:                   o.id,
		CustomerID:           o.customerID,
		PaymentMethod:        o.paymentMethod,
		Items:                o.Items(),
		Address:              o.address,
		Subtotal:             o.subtotal,
		DeliveryFee:          o.deliveryFee,
		Discount:             o.discount,
		Total:                o.total,
		Status:               o.status,
		RiskSnapshot:         o.riskSnapshot,
		RiskDecision:         o.riskDecision,
		CODAmountLimit:       o.codAmountLimit,
		ConfirmationDeadline: o.confirmationDeadline,
		PlacedAt:             o.placedAt,
		ConfirmedAt:          o.confirmedAt,
		PackedAt:             o.packedAt,
		OutForDeliveryAt:     o.outForDeliveryAt,
		DeliveredAt:          o.deliveredAt,
		PaymentReceivedAt:    o.paymentReceivedAt,
		CancelledAt:          o.cancelledAt,
		CancellationReason:   o.cancellationReason,
	}
}
