package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status is the lifecycle state of an order. It is a closed enum: the only
// way to move between values is the transition table below, so an illegal
// edge is rejected before any field of the order is touched.
//
// Transition table:
//
//	PendingPayment ──(online)──┐
//	                           ├──> Queueing ──> Preparing ──> OnDelivery ──> Completed
//	WaitingConfirmation ─(cod)─┘
//
//	every non-terminal state ──> Cancelled
//
// PendingPayment is the initial state of online orders; COD orders skip it
// and start in WaitingConfirmation.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	Unknown Status = iota

	// PendingPayment waits for an online payment to be received.
	PendingPayment

	// WaitingConfirmation holds a COD order until an admin records a risk
	// decision or the confirmation deadline passes.
	WaitingConfirmation

	// Queueing orders are confirmed and wait for the kitchen.
	Queueing

	// Preparing orders are being made and packed.
	Preparing

	// OnDelivery orders are with a courier.
	OnDelivery

	// Completed is terminal. Loyalty points are settled on entry.
	Completed

	// Cancelled is terminal. Cancelled orders are retained, never deleted.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:             "unknown",
		PendingPayment:      "pending_payment",
		WaitingConfirmation: "waiting_confirmation",
		Queueing:            "queueing",
		Preparing:           "preparing",
		OnDelivery:          "on_delivery",
		Completed:           "completed",
		Cancelled:           "cancelled",
	}
}

// edge is one row of the transition table. An empty method set means the
// edge is legal for every payment method.
type edge struct {
	to      Status
	methods []PaymentMethod
}

func getTransitionTable() map[Status][]edge {
	//nolint:exhaustive // terminal and unknown statuses have no outgoing edges
	return map[Status][]edge{
		PendingPayment: {
			{to: Queueing, methods: []PaymentMethod{Online}},
			{to: Cancelled},
		},
		WaitingConfirmation: {
			{to: Queueing, methods: []PaymentMethod{COD}},
			{to: Cancelled},
		},
		Queueing: {
			{to: Preparing},
			{to: Cancelled},
		},
		Preparing: {
			{to: OnDelivery},
			{to: Cancelled},
		},
		OnDelivery: {
			{to: Completed},
			{to: Cancelled},
		},
	}
}

// ParseStatus converts the wire representation (e.g. "on_delivery") into a Status.
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if status != Unknown && str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that s is one of the defined states.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the snake_case name used in storage and on the wire.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}

// CanTransition reports whether the edge s -> to exists for the payment method.
// It does not evaluate guards.
func (s Status) CanTransition(to Status, method PaymentMethod) bool {
	for _, e := range getTransitionTable()[s] {
		if e.to != to {
			continue
		}
		if len(e.methods) == 0 {
			return true
		}
		for _, m := range e.methods {
			if m == method {
				return true
			}
		}
	}
	return false
}

// ValidateTransition returns a StateTransitionError when the edge does not exist.
func (s Status) ValidateTransition(to Status, method PaymentMethod) error {
	if !s.CanTransition(to, method) {
		return errs.NewStateTransitionError(s.String(), to.String(),
			fmt.Sprintf("edge is not allowed for %s orders", method))
	}
	return nil
}

// InitialStatus returns the state a new order starts in.
func InitialStatus(method PaymentMethod) Status {
	if method == COD {
		return WaitingConfirmation
	}
	return PendingPayment
}

// AllStatuses lists every valid status in lifecycle order.
func AllStatuses() []Status {
	return []Status{PendingPayment, WaitingConfirmation, Queueing, Preparing, OnDelivery, Completed, Cancelled}
}
