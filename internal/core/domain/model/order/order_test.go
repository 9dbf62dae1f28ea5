package order_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/risk"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var placedAt = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func draft(t *testing.T, method order.PaymentMethod) order.Draft {
	t.Helper()
	item, err := order.NewItem("latte", "Iced Latte", 2, decimal.NewFromInt(17500))
	require.NoError(t, err)
	return order.Draft{
		ID:                 kernel.NewUUID(),
		CustomerID:         kernel.NewUUID(),
		PaymentMethod:      method,
		Items:              []order.Item{item},
		Address:            "Jl. Ijen 12, Malang",
		DeliveryFee:        decimal.NewFromInt(10000),
		CODAmountLimit:     decimal.NewFromInt(500000),
		ConfirmationWindow: 30 * time.Minute,
		PlacedAt:           placedAt,
	}
}

func newOrder(t *testing.T, method order.PaymentMethod) *order.Order {
	t.Helper()
	o, err := order.NewOrder(draft(t, method))
	require.NoError(t, err)
	return o
}

func snapshot(t *testing.T, level risk.Level) risk.Snapshot {
	t.Helper()
	s, err := risk.NewSnapshot(risk.SnapshotInput{
		TrustScore:  80,
		DistanceKm:  2.1,
		Score:       80,
		Level:       level,
		EvaluatedAt: placedAt,
	})
	require.NoError(t, err)
	return s
}

func approvedCOD(t *testing.T) *order.Order {
	t.Helper()
	o := newOrder(t, order.COD)
	require.NoError(t, o.AttachRiskAssessment(snapshot(t, risk.Low)))
	d, err := risk.NewApproval("admin:rina", false, placedAt.Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, o.RecordRiskDecision(d))
	require.NoError(t, o.Transition(order.Queueing, "admin:rina", "", order.Guards{}, placedAt.Add(time.Minute)))
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("should start online orders in pending_payment", func(t *testing.T) {
		o := newOrder(t, order.Online)

		require.NoError(t, o.Validate())
		assert.Equal(t, order.PendingPayment, o.Status())
		assert.Nil(t, o.ConfirmationDeadline())
		assert.True(t, o.CODAmountLimit().IsZero())
		assert.Empty(t, o.DomainEvents())
	})

	t.Run("should start cod orders in waiting_confirmation with a deadline", func(t *testing.T) {
		o := newOrder(t, order.COD)

		assert.Equal(t, order.WaitingConfirmation, o.Status())
		require.NotNil(t, o.ConfirmationDeadline())
		assert.Equal(t, placedAt.Add(30*time.Minute), *o.ConfirmationDeadline())
		assert.True(t, o.CODAmountLimit().Equal(decimal.NewFromInt(500000)))
	})

	t.Run("should compute totals", func(t *testing.T) {
		d := draft(t, order.Online)
		d.Discount = decimal.NewFromInt(5000)

		o, err := order.NewOrder(d)

		require.NoError(t, err)
		assert.True(t, o.Subtotal().Equal(decimal.NewFromInt(35000)))
		assert.True(t, o.Total().Equal(decimal.NewFromInt(40000)))
	})

	t.Run("should reject a discount larger than the gross amount", func(t *testing.T) {
		d := draft(t, order.Online)
		d.Discount = decimal.NewFromInt(45001)

		_, err := order.NewOrder(d)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should join every validation error", func(t *testing.T) {
		o, err := order.NewOrder(order.Draft{PaymentMethod: "card", DeliveryFee: decimal.NewFromInt(-1)})

		require.Error(t, err)
		assert.Nil(t, o)
		assert.Contains(t, err.Error(), "UUID must be created")
		assert.Contains(t, err.Error(), "customer_id")
		assert.Contains(t, err.Error(), "payment_method")
		assert.Contains(t, err.Error(), "items")
		assert.Contains(t, err.Error(), "address")
		assert.Contains(t, err.Error(), "placed_at")
	})

	t.Run("should require a positive cod limit and window for cod", func(t *testing.T) {
		d := draft(t, order.COD)
		d.CODAmountLimit = decimal.Zero
		d.ConfirmationWindow = 0

		_, err := order.NewOrder(d)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "cod_amount_limit")
		assert.Contains(t, err.Error(), "confirmation_window")
	})
}

func TestOrder_Validate(t *testing.T) {
	var o order.Order
	require.ErrorIs(t, o.Validate(), order.ErrOrderIsNotConstructed)

	var nilOrder *order.Order
	require.ErrorIs(t, nilOrder.Validate(), order.ErrOrderIsNotConstructed)
}

func TestOrder_OnlineHappyPath(t *testing.T) {
	o := newOrder(t, order.Online)
	at := placedAt

	step := func(to order.Status, g order.Guards) {
		at = at.Add(5 * time.Minute)
		require.NoError(t, o.Transition(to, "staff:ari", "", g, at))
		assert.Equal(t, to, o.Status())
	}

	step(order.Queueing, order.Guards{})
	require.NotNil(t, o.ConfirmedAt())
	require.NotNil(t, o.PaymentReceivedAt())

	step(order.Preparing, order.Guards{})
	require.NotNil(t, o.PackedAt())

	step(order.OnDelivery, order.Guards{HasActiveAssignment: true, LocationDispatchable: true})
	require.NotNil(t, o.OutForDeliveryAt())

	step(order.Completed, order.Guards{})
	require.NotNil(t, o.DeliveredAt())

	events := o.DomainEvents()
	require.Len(t, events, 4)
	assert.Equal(t, order.PendingPayment, events[0].From)
	assert.Equal(t, order.Queueing, events[0].To)
	assert.Equal(t, order.Completed, events[3].To)
	assert.Equal(t, "staff:ari", events[3].Actor)

	o.ClearDomainEvents()
	assert.Empty(t, o.DomainEvents())
}

func TestOrder_CODPaymentIsReceivedOnCompletion(t *testing.T) {
	o := approvedCOD(t)
	assert.Nil(t, o.PaymentReceivedAt())

	require.NoError(t, o.Transition(order.Preparing, "staff", "", order.Guards{}, placedAt.Add(time.Hour)))
	require.NoError(t, o.Transition(order.OnDelivery, "staff", "",
		order.Guards{HasActiveAssignment: true, LocationDispatchable: true}, placedAt.Add(time.Hour)))
	require.NoError(t, o.Transition(order.Completed, "courier", "", order.Guards{}, placedAt.Add(2*time.Hour)))

	require.NotNil(t, o.PaymentReceivedAt())
	assert.Equal(t, placedAt.Add(2*time.Hour), *o.PaymentReceivedAt())
}

func TestOrder_Transition(t *testing.T) {
	t.Run("should reject illegal edges without changing the order", func(t *testing.T) {
		o := newOrder(t, order.Online)

		err := o.Transition(order.Completed, "staff", "", order.Guards{}, placedAt)

		require.ErrorIs(t, err, errs.ErrStateTransition)
		assert.Equal(t, order.PendingPayment, o.Status())
		assert.Nil(t, o.DeliveredAt())
		assert.Empty(t, o.DomainEvents())
	})

	t.Run("should not let cod skip to queueing without approval", func(t *testing.T) {
		o := newOrder(t, order.COD)

		err := o.Transition(order.Queueing, "staff", "", order.Guards{}, placedAt)

		require.ErrorIs(t, err, errs.ErrStateTransition)
		assert.Contains(t, err.Error(), "risk decision approve is required")
		assert.Equal(t, order.WaitingConfirmation, o.Status())
	})

	t.Run("should not let online orders use the cod edge", func(t *testing.T) {
		d := draft(t, order.Online)
		o, err := order.RestoreOrder(order.State{
			ID: d.ID, CustomerID: d.CustomerID, PaymentMethod: order.Online, Status: order.WaitingConfirmation,
		})
		require.NoError(t, err)

		err = o.Transition(order.Queueing, "staff", "", order.Guards{}, placedAt)

		require.ErrorIs(t, err, errs.ErrStateTransition)
	})

	t.Run("should require assignment and resolved location for on_delivery", func(t *testing.T) {
		o := approvedCOD(t)
		require.NoError(t, o.Transition(order.Preparing, "staff", "", order.Guards{}, placedAt))

		err := o.Transition(order.OnDelivery, "staff", "", order.Guards{}, placedAt)

		require.ErrorIs(t, err, errs.ErrStateTransition)
		assert.Contains(t, err.Error(), "no active courier assignment")
		assert.Contains(t, err.Error(), "delivery location is not resolved")
		assert.Equal(t, order.Preparing, o.Status())

		err = o.Transition(order.OnDelivery, "staff", "", order.Guards{HasActiveAssignment: true}, placedAt)
		require.ErrorIs(t, err, errs.ErrStateTransition)
		assert.NotContains(t, err.Error(), "no active courier assignment")
	})

	t.Run("should route cancelled targets through Cancel", func(t *testing.T) {
		o := newOrder(t, order.Online)

		require.NoError(t, o.Transition(order.Cancelled, "customer", "", order.Guards{}, placedAt))

		assert.Equal(t, order.Cancelled, o.Status())
		assert.Equal(t, "cancelled by customer", o.CancellationReason())
	})
}

func TestOrder_Cancel(t *testing.T) {
	t.Run("should cancel from every non-terminal state", func(t *testing.T) {
		o := approvedCOD(t)
		require.NoError(t, o.Transition(order.Preparing, "staff", "", order.Guards{}, placedAt))

		require.NoError(t, o.Cancel("staff", "kitchen closed", placedAt.Add(time.Hour)))

		assert.Equal(t, order.Cancelled, o.Status())
		assert.Equal(t, "kitchen closed", o.CancellationReason())
		require.NotNil(t, o.CancelledAt())
	})

	t.Run("should require a reason", func(t *testing.T) {
		o := newOrder(t, order.Online)
		require.ErrorIs(t, o.Cancel("staff", " ", placedAt), errs.ErrValueIsRequired)
	})

	t.Run("should not cancel a terminal order", func(t *testing.T) {
		o := newOrder(t, order.Online)
		require.NoError(t, o.Cancel("staff", "first", placedAt))

		err := o.Cancel("staff", "second", placedAt)

		require.ErrorIs(t, err, errs.ErrStateTransition)
		assert.Equal(t, "first", o.CancellationReason())
	})
}

func TestOrder_Expire(t *testing.T) {
	t.Run("should not expire before the deadline", func(t *testing.T) {
		o := newOrder(t, order.COD)

		expired, err := o.Expire("system", placedAt.Add(30*time.Minute))

		require.NoError(t, err)
		assert.False(t, expired)
		assert.Equal(t, order.WaitingConfirmation, o.Status())
	})

	t.Run("should cancel after the deadline", func(t *testing.T) {
		o := newOrder(t, order.COD)

		expired, err := o.Expire("system", placedAt.Add(31*time.Minute))

		require.NoError(t, err)
		assert.True(t, expired)
		assert.Equal(t, order.Cancelled, o.Status())
		assert.Equal(t, order.ReasonExpired, o.CancellationReason())
	})

	t.Run("should skip orders that already left waiting_confirmation", func(t *testing.T) {
		o := approvedCOD(t)

		expired, err := o.Expire("system", placedAt.Add(time.Hour))

		require.NoError(t, err)
		assert.False(t, expired)
		assert.Equal(t, order.Queueing, o.Status())
	})

	t.Run("should skip online orders", func(t *testing.T) {
		o := newOrder(t, order.Online)

		expired, err := o.Expire("system", placedAt.Add(time.Hour))

		require.NoError(t, err)
		assert.False(t, expired)
	})
}

func TestOrder_RiskDecision(t *testing.T) {
	t.Run("should require an assessment first", func(t *testing.T) {
		o := newOrder(t, order.COD)
		d, _ := risk.NewApproval("admin", false, placedAt)

		require.ErrorIs(t, o.RecordRiskDecision(d), errs.ErrStateTransition)
	})

	t.Run("should require acknowledgement for high risk approval", func(t *testing.T) {
		o := newOrder(t, order.COD)
		require.NoError(t, o.AttachRiskAssessment(snapshot(t, risk.High)))

		plain, _ := risk.NewApproval("admin", false, placedAt)
		err := o.RecordRiskDecision(plain)
		require.ErrorIs(t, err, errs.ErrStateTransition)
		assert.Nil(t, o.RiskDecision())

		acked, _ := risk.NewApproval("admin", true, placedAt)
		require.NoError(t, o.RecordRiskDecision(acked))
		require.NotNil(t, o.RiskDecision())
	})

	t.Run("should accept only one decision", func(t *testing.T) {
		o := newOrder(t, order.COD)
		require.NoError(t, o.AttachRiskAssessment(snapshot(t, risk.Medium)))
		reject, _ := risk.NewRejection("admin", "fake address", true, placedAt)
		require.NoError(t, o.RecordRiskDecision(reject))

		approve, _ := risk.NewApproval("admin", false, placedAt)
		err := o.RecordRiskDecision(approve)

		require.ErrorIs(t, err, errs.ErrStateTransition)
		assert.Equal(t, risk.Reject, o.RiskDecision().Action())
	})

	t.Run("should freeze the snapshot after the decision", func(t *testing.T) {
		o := newOrder(t, order.COD)
		require.NoError(t, o.AttachRiskAssessment(snapshot(t, risk.Low)))
		reject, _ := risk.NewRejection("admin", "duplicate", false, placedAt)
		require.NoError(t, o.RecordRiskDecision(reject))

		err := o.AttachRiskAssessment(snapshot(t, risk.High))

		require.ErrorIs(t, err, errs.ErrStateTransition)
		assert.Equal(t, risk.Low, o.RiskSnapshot().Level())
	})

	t.Run("should refuse assessment for online orders", func(t *testing.T) {
		o := newOrder(t, order.Online)
		require.ErrorIs(t, o.AttachRiskAssessment(snapshot(t, risk.Low)), errs.ErrValueIsInvalid)
	})
}

func TestOrder_ValidateAssignable(t *testing.T) {
	o := newOrder(t, order.COD)
	require.ErrorIs(t, o.ValidateAssignable(), errs.ErrStateTransition)

	o = approvedCOD(t)
	require.NoError(t, o.ValidateAssignable())

	require.NoError(t, o.Transition(order.Preparing, "staff", "", order.Guards{}, placedAt))
	require.NoError(t, o.ValidateAssignable())
}
