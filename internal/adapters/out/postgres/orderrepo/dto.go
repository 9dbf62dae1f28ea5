// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/risk"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Items are stored as a JSON array; the risk snapshot and the admin decision
// are flattened into prefixed nullable columns so that the admin queue can
// filter and sort on them.
type OrderDTO struct {
	ID                   uuid.UUID                       `gorm:"type:uuid;primaryKey"`
	CustomerID           uuid.UUID                       `gorm:"type:uuid;index;not null"`
	PaymentMethod        string                          `gorm:"type:varchar(16);not null"`
	Items                datatypes.JSONSlice[order.Item] `gorm:"type:jsonb;not null"`
	Address              string                          `gorm:"type:text;not null"`
	Subtotal             decimal.Decimal                 `gorm:"type:numeric(14,2);not null"`
	DeliveryFee          decimal.Decimal                 `gorm:"type:numeric(14,2);not null"`
	Discount             decimal.Decimal                 `gorm:"type:numeric(14,2);not null"`
	Total                decimal.Decimal                 `gorm:"type:numeric(14,2);not null"`
	Status               int                             `gorm:"type:smallint;index;not null"`
	Risk                 RiskDTO                         `gorm:"embedded;embeddedPrefix:risk_"`
	Decision             DecisionDTO                     `gorm:"embedded;embeddedPrefix:decision_"`
	CODAmountLimit       decimal.Decimal                 `gorm:"column:cod_amount_limit;type:numeric(14,2);not null"`
	ConfirmationDeadline *time.Time                      `gorm:"index"`
	PlacedAt             time.Time                       `gorm:"index;not null"`
	ConfirmedAt          *time.Time
	PackedAt             *time.Time
	OutForDeliveryAt     *time.Time
	DeliveredAt          *time.Time
	PaymentReceivedAt    *time.Time
	CancelledAt          *time.Time `gorm:"index"`
	CancellationReason   string     `gorm:"type:text"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// RiskDTO holds the latest risk snapshot. EvaluatedAt is nil when the order
// was never assessed (online orders).
type RiskDTO struct {
	Level               *int `gorm:"type:smallint"`
	Score               *float64
	TrustScore          *int
	RecentCancellations *int
	DistanceKm          *float64
	IsVerified          *bool
	FraudFlagged        *bool
	OverLimit           *bool
	EvaluatedAt         *time.Time
}

// DecisionDTO holds the admin verdict. Action is nil until a decision is recorded.
type DecisionDTO struct {
	Action               *string `gorm:"type:varchar(16)"`
	Actor                *string
	Reason               *string
	IsFraud              *bool
	HighRiskAcknowledged *bool
	DecidedAt            *time.Time
}

func fromDomain(o *order.Order) OrderDTO {
	s := o.State()
	return OrderDTO{
		ID:                   s.ID.Bytes(),
		CustomerID:           s.CustomerID.Bytes(),
		PaymentMethod:        s.PaymentMethod.String(),
		Items:                datatypes.NewJSONSlice(s.Items),
		Address:              s.Address,
		Subtotal:             s.Subtotal,
		DeliveryFee:          s.DeliveryFee,
		Discount:             s.Discount,
		Total:                s.Total,
		Status:               int(s.Status),
		Risk:                 riskFromDomain(s.RiskSnapshot),
		Decision:             decisionFromDomain(s.RiskDecision),
		CODAmountLimit:       s.CODAmountLimit,
		ConfirmationDeadline: s.ConfirmationDeadline,
		PlacedAt:             s.PlacedAt,
		ConfirmedAt:          s.ConfirmedAt,
		PackedAt:             s.PackedAt,
		OutForDeliveryAt:     s.OutForDeliveryAt,
		DeliveredAt:          s.DeliveredAt,
		PaymentReceivedAt:    s.PaymentReceivedAt,
		CancelledAt:          s.CancelledAt,
		CancellationReason:   s.CancellationReason,
	}
}

func riskFromDomain(snapshot *risk.Snapshot) RiskDTO {
	if snapshot == nil {
		return RiskDTO{}
	}
	in := snapshot.Input()
	level := int(in.Level)
	return RiskDTO{
		Level:               &level,
		Score:               &in.Score,
		TrustScore:          &in.TrustScore,
		RecentCancellations: &in.RecentCancellations,
		DistanceKm:          &in.DistanceKm,
		IsVerified:          &in.IsVerified,
		FraudFlagged:        &in.FraudFlagged,
		OverLimit:           &in.OverLimit,
		EvaluatedAt:         &in.EvaluatedAt,
	}
}

func decisionFromDomain(decision *risk.Decision) DecisionDTO {
	if decision == nil {
		return DecisionDTO{}
	}
	action := string(decision.Action())
	actor := decision.Actor()
	reason := decision.Reason()
	isFraud := decision.IsFraud()
	acknowledged := decision.HighRiskAcknowledged()
	decidedAt := decision.DecidedAt()
	return DecisionDTO{
		Action:               &action,
		Actor:                &actor,
		Reason:               &reason,
		IsFraud:              &isFraud,
		HighRiskAcknowledged: &acknowledged,
		DecidedAt:            &decidedAt,
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	snapshot, err := riskToDomain(dto.Risk)
	if err != nil {
		return nil, err
	}
	decision, err := decisionToDomain(dto.Decision)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.State{
		ID:                   id,
		CustomerID:           customerID,
		PaymentMethod:        order.PaymentMethod(dto.PaymentMethod),
		Items:                []order.Item(dto.Items),
		Address:              dto.Address,
		Subtotal:             dto.Subtotal,
		DeliveryFee:          dto.DeliveryFee,
		Discount:             dto.Discount,
		Total:                dto.Total,
		Status:               order.Status(dto.Status),
		RiskSnapshot:         snapshot,
		RiskDecision:         decision,
		CODAmountLimit:       dto.CODAmountLimit,
		ConfirmationDeadline: utc(dto.ConfirmationDeadline),
		PlacedAt:             dto.PlacedAt.UTC(),
		ConfirmedAt:          utc(dto.ConfirmedAt),
		PackedAt:             utc(dto.PackedAt),
		OutForDeliveryAt:     utc(dto.OutForDeliveryAt),
		DeliveredAt:          utc(dto.DeliveredAt),
		PaymentReceivedAt:    utc(dto.PaymentReceivedAt),
		CancelledAt:          utc(dto.CancelledAt),
		CancellationReason:   dto.CancellationReason,
	})
}

func riskToDomain(dto RiskDTO) (*risk.Snapshot, error) {
	if dto.EvaluatedAt == nil || dto.Level == nil {
		return nil, nil
	}
	s, err := risk.NewSnapshot(risk.SnapshotInput{
		TrustScore:          deref(dto.TrustScore),
		RecentCancellations: deref(dto.RecentCancellations),
		DistanceKm:          deref(dto.DistanceKm),
		IsVerified:          deref(dto.IsVerified),
		FraudFlagged:        deref(dto.FraudFlagged),
		OverLimit:           deref(dto.OverLimit),
		Score:               deref(dto.Score),
		Level:               risk.Level(*dto.Level),
		EvaluatedAt:         dto.EvaluatedAt.UTC(),
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func decisionToDomain(dto DecisionDTO) (*risk.Decision, error) {
	if dto.Action == nil || dto.DecidedAt == nil {
		return nil, nil
	}
	d, err := risk.RestoreDecision(
		risk.Action(*dto.Action),
		deref(dto.Actor),
		deref(dto.Reason),
		deref(dto.IsFraud),
		deref(dto.HighRiskAcknowledged),
		dto.DecidedAt.UTC(),
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
