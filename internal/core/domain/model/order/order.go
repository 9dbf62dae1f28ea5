package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/risk"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// ReasonExpired is the cancellation reason written by the expiry watchdog.
const ReasonExpired = "expired"

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	ErrItemsAreRequired   = errs.NewValueIsRequiredError("items")
	ErrAddressIsRequired  = errs.NewValueIsRequiredError("address")
	ErrCustomerIsRequired = errs.NewValueIsRequiredError("customer_id")
)

// Draft carries everything checkout has computed for a new order.
type Draft struct {
	ID                 kernel.UUID
	CustomerID         kernel.UUID
	PaymentMethod      PaymentMethod
	Items              []Item
	Address            string
	DeliveryFee        decimal.Decimal
	Discount           decimal.Decimal
	CODAmountLimit     decimal.Decimal
	ConfirmationWindow time.Duration
	PlacedAt           time.Time
}

// Guards carries the facts owned by other aggregates that the state machine
// needs to evaluate entry guards. The command handler collects them inside
// the same transaction that applies the transition.
type Guards struct {
	HasActiveAssignment  bool
	LocationDispatchable bool
}

// Order is the aggregate root of the fulfillment workflow. It owns the
// status and every per-transition timestamp; nothing outside this type
// changes them.
//
// Invariants:
//   - Status only changes along the transition table
//   - A COD order has a confirmation deadline and a COD amount limit
//   - total = subtotal + delivery fee - discount, never negative
//   - A risk snapshot is never replaced once a decision is recorded
type Order struct {
	id            kernel.UUID
	customerID    kernel.UUID
	paymentMethod PaymentMethod
	items         []Item
	address       string

	subtotal    decimal.Decimal
	deliveryFee decimal.Decimal
	discount    decimal.Decimal
	total       decimal.Decimal

	status               Status
	riskSnapshot         *risk.Snapshot
	riskDecision         *risk.Decision
	codAmountLimit       decimal.Decimal
	confirmationDeadline *time.Time

	placedAt           time.Time
	confirmedAt        *time.Time
	packedAt           *time.Time
	outForDeliveryAt   *time.Time
	deliveredAt        *time.Time
	paymentReceivedAt  *time.Time
	cancelledAt        *time.Time
	cancellationReason string

	events []StatusChanged

	isConstructed bool
}

// NewOrder creates an order in its initial status: PendingPayment for online
// payment, WaitingConfirmation (with a deadline of PlacedAt+ConfirmationWindow)
// for COD. All validation errors are reported together.
//
// Example:
//
//	item, _ := order.NewItem("latte", "Iced Latte", 2, decimal.NewFromInt(22500))
//	o, err := order.NewOrder(order.Draft{
//	    ID:                 kernel.NewUUID(),
//	    CustomerID:         customerID,
//	    PaymentMethod:      order.COD,
//	    Items:              []order.Item{item},
//	    Address:            "Jl. Ijen 12, Malang",
//	    DeliveryFee:        decimal.NewFromInt(10000),
//	    CODAmountLimit:     decimal.NewFromInt(500000),
//	    ConfirmationWindow: 30 * time.Minute,
//	    PlacedAt:           time.Now(),
//	})
func NewOrder(d Draft) (*Order, error) {
	o := &Order{
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(d.ID),
		o.setCustomerID(d.CustomerID),
		o.setPaymentMethod(d.PaymentMethod),
		o.setItems(d.Items),
		o.setAddress(d.Address),
		o.setPricing(d.DeliveryFee, d.Discount),
		o.setPlacedAt(d.PlacedAt),
	); err != nil {
		return nil, err
	}

	if o.paymentMethod == COD {
		if err := o.armConfirmation(d.CODAmountLimit, d.ConfirmationWindow); err != nil {
			return nil, err
		}
	}

	o.status = InitialStatus(o.paymentMethod)
	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by identity.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID                  { return o.id }
func (o *Order) CustomerID() kernel.UUID          { return o.customerID }
func (o *Order) PaymentMethod() PaymentMethod     { return o.paymentMethod }
func (o *Order) Address() string                  { return o.address }
func (o *Order) Subtotal() decimal.Decimal        { return o.subtotal }
func (o *Order) DeliveryFee() decimal.Decimal     { return o.deliveryFee }
func (o *Order) Discount() decimal.Decimal        { return o.discount }
func (o *Order) Total() decimal.Decimal           { return o.total }
func (o *Order) Status() Status                   { return o.status }
func (o *Order) CODAmountLimit() decimal.Decimal  { return o.codAmountLimit }
func (o *Order) ConfirmationDeadline() *time.Time { return o.confirmationDeadline }
func (o *Order) PlacedAt() time.Time              { return o.placedAt }
func (o *Order) ConfirmedAt() *time.Time          { return o.confirmedAt }
func (o *Order) PackedAt() *time.Time             { return o.packedAt }
func (o *Order) OutForDeliveryAt() *time.Time     { return o.outForDeliveryAt }
func (o *Order) DeliveredAt() *time.Time          { return o.deliveredAt }
func (o *Order) PaymentReceivedAt() *time.Time    { return o.paymentReceivedAt }
func (o *Order) CancelledAt() *time.Time          { return o.cancelledAt }
func (o *Order) CancellationReason() string       { return o.cancellationReason }

// Items returns a copy of the order lines.
func (o *Order) Items() []Item {
	items := make([]Item, len(o.items))
	copy(items, o.items)
	return items
}

// RiskSnapshot returns the latest evaluation, or nil for online orders.
func (o *Order) RiskSnapshot() *risk.Snapshot {
	return o.riskSnapshot
}

// RiskDecision returns the recorded admin decision, or nil.
func (o *Order) RiskDecision() *risk.Decision {
	return o.riskDecision
}

// AttachRiskAssessment stores a new evaluation. It is only legal for a COD
// order still waiting for confirmation with no decision recorded; after the
// decision the snapshot is frozen for audit.
func (o *Order) AttachRiskAssessment(snapshot risk.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	if o.paymentMethod != COD {
		return errs.NewValueIsInvalidErrorWithCause("payment_method",
			errors.New("risk is only assessed for cod orders"))
	}
	if o.status != WaitingConfirmation {
		return errs.NewStateTransitionError(o.status.String(), o.status.String(),
			"risk can only be assessed while waiting for confirmation")
	}
	if o.riskDecision != nil {
		return errs.NewStateTransitionError(o.status.String(), o.status.String(),
			"risk snapshot is frozen after the decision")
	}
	o.riskSnapshot = &snapshot
	return nil
}

// RecordRiskDecision records the single admin decision for a COD order.
// Approving a High risk order requires the decision to acknowledge it.
// Recording does not move the order; the caller transitions to Queueing
// (approve) or cancels (reject) in the same transaction.
func (o *Order) RecordRiskDecision(decision risk.Decision) error {
	if err := decision.Validate(); err != nil {
		return err
	}
	if o.paymentMethod != COD || o.status != WaitingConfirmation {
		return errs.NewStateTransitionError(o.status.String(), Queueing.String(),
			"order is not waiting for a risk decision")
	}
	if o.riskDecision != nil {
		return errs.NewStateTransitionError(o.status.String(), Queueing.String(),
			fmt.Sprintf("risk decision %q already recorded", o.riskDecision.Action()))
	}
	if o.riskSnapshot == nil {
		return errs.NewStateTransitionError(o.status.String(), Queueing.String(), "risk has not been assessed")
	}
	if decision.IsApproval() && o.riskSnapshot.Level() == risk.High && !decision.HighRiskAcknowledged() {
		return errs.NewStateTransitionError(o.status.String(), Queueing.String(),
			"approving a high risk order requires an explicit acknowledgement")
	}
	o.riskDecision = &decision
	return nil
}

// Transition moves the order to the target status after checking the edge
// table and the entry guards. On error nothing is changed.
//
// Guards:
//   - WaitingConfirmation -> Queueing needs an approve decision
//   - Preparing -> OnDelivery needs an active assignment and a dispatchable location
//
// Cancelled targets are delegated to Cancel with message as the reason.
func (o *Order) Transition(to Status, actor, message string, g Guards, now time.Time) error {
	if to == Cancelled {
		reason := message
		if strings.TrimSpace(reason) == "" {
			reason = "cancelled by " + actor
		}
		return o.Cancel(actor, reason, now)
	}

	if err := to.Validate(); err != nil {
		return err
	}
	if err := o.status.ValidateTransition(to, o.paymentMethod); err != nil {
		return err
	}
	if err := o.checkGuards(to, g); err != nil {
		return err
	}

	from := o.status
	o.status = to
	o.stamp(to, now)
	o.record(from, to, actor, message, now)
	return nil
}

// Cancel moves any non-terminal order to Cancelled with a reason.
func (o *Order) Cancel(actor, reason string, now time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return errs.NewValueIsRequiredError("reason")
	}
	if err := o.status.ValidateTransition(Cancelled, o.paymentMethod); err != nil {
		return err
	}

	from := o.status
	o.status = Cancelled
	o.cancelledAt = &now
	o.cancellationReason = reason
	o.record(from, Cancelled, actor, reason, now)
	return nil
}

// Expire cancels a COD order whose confirmation deadline has passed. It
// reports false without error when the order has already left
// WaitingConfirmation or the deadline has not passed yet, so a sweep racing
// an admin decision is a no-op.
func (o *Order) Expire(actor string, now time.Time) (bool, error) {
	if o.status != WaitingConfirmation || o.confirmationDeadline == nil {
		return false, nil
	}
	if !now.After(*o.confirmationDeadline) {
		return false, nil
	}
	if err := o.Cancel(actor, ReasonExpired, now); err != nil {
		return false, err
	}
	return true, nil
}

// IsExpired reports whether the confirmation deadline lies before now.
func (o *Order) IsExpired(now time.Time) bool {
	return o.confirmationDeadline != nil && now.After(*o.confirmationDeadline)
}

// ValidateAssignable checks that the order has cleared confirmation and has
// not left the kitchen yet, which is when a courier may be (re)assigned.
func (o *Order) ValidateAssignable() error {
	if o.status != Queueing && o.status != Preparing {
		return errs.NewStateTransitionError(o.status.String(), OnDelivery.String(),
			"courier can only be assigned to queueing or preparing orders")
	}
	return nil
}

// DomainEvents returns the transitions applied since the aggregate was loaded.
func (o *Order) DomainEvents() []StatusChanged {
	events := make([]StatusChanged, len(o.events))
	copy(events, o.events)
	return events
}

// ClearDomainEvents drops recorded events once they have been published.
func (o *Order) ClearDomainEvents() {
	o.events = nil
}

func (o *Order) checkGuards(to Status, g Guards) error {
	switch {
	case o.status == WaitingConfirmation && to == Queueing:
		if o.riskDecision == nil || !o.riskDecision.IsApproval() {
			return errs.NewStateTransitionError(o.status.String(), to.String(), "risk decision approve is required")
		}
	case to == OnDelivery:
		var missing []string
		if !g.HasActiveAssignment {
			missing = append(missing, "no active courier assignment")
		}
		if !g.LocationDispatchable {
			missing = append(missing, "delivery location is not resolved")
		}
		if len(missing) > 0 {
			return errs.NewStateTransitionError(o.status.String(), to.String(), strings.Join(missing, "; "))
		}
	}
	return nil
}

func (o *Order) stamp(to Status, now time.Time) {
	//nolint:exhaustive // Cancelled is stamped by Cancel, initial states are never entered again
	switch to {
	case Queueing:
		o.confirmedAt = &now
		if o.paymentMethod == Online {
			o.paymentReceivedAt = &now
		}
	case Preparing:
		o.packedAt = &now
	case OnDelivery:
		o.outForDeliveryAt = &now
	case Completed:
		o.deliveredAt = &now
		if o.paymentMethod == COD {
			o.paymentReceivedAt = &now
		}
	}
}

func (o *Order) record(from, to Status, actor, message string, now time.Time) {
	o.events = append(o.events, StatusChanged{
		OrderID:    o.id,
		CustomerID: o.customerID,
		From:       from,
		To:         to,
		Actor:      actor,
		Message:    message,
		OccurredAt: now,
	})
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return ErrCustomerIsRequired
	}
	o.customerID = id
	return nil
}

func (o *Order) setPaymentMethod(m PaymentMethod) error {
	if err := m.Validate(); err != nil {
		return err
	}
	o.paymentMethod = m
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return ErrItemsAreRequired
	}
	var problems []error
	for _, item := range items {
		problems = append(problems, item.Validate())
	}
	if err := errors.Join(problems...); err != nil {
		return err
	}
	o.items = make([]Item, len(items))
	copy(o.items, items)
	o.subtotal = Subtotal(items)
	return nil
}

func (o *Order) setAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return ErrAddressIsRequired
	}
	o.address = address
	return nil
}

// setPricing must run after setItems so the subtotal is known.
func (o *Order) setPricing(fee, discount decimal.Decimal) error {
	if fee.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("delivery_fee", fmt.Errorf("%s is negative", fee))
	}
	if discount.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("discount", fmt.Errorf("%s is negative", discount))
	}
	gross := o.subtotal.Add(fee)
	if discount.GreaterThan(gross) {
		return errs.NewValueIsOutOfRangeError("discount", discount.String(), "0", gross.String())
	}
	o.deliveryFee = fee
	o.discount = discount
	o.total = gross.Sub(discount)
	return nil
}

func (o *Order) setPlacedAt(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("placed_at")
	}
	o.placedAt = at
	return nil
}

func (o *Order) armConfirmation(limit decimal.Decimal, window time.Duration) error {
	var problems []error
	if !limit.IsPositive() {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("cod_amount_limit",
			fmt.Errorf("%s is not greater than 0", limit)))
	}
	if window <= 0 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("confirmation_window",
			fmt.Errorf("%s is not greater than 0", window)))
	}
	if err := errors.Join(problems...); err != nil {
		return err
	}
	deadline := o.placedAt.Add(window)
	o.codAmountLimit = limit
	o.confirmationDeadline = &deadline
	return nil
}
