package errs

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrStateTransition     = errors.New("state transition is not allowed")
	ErrGeocodeFailure      = errors.New("geocode failed")
	ErrRiskRejection       = errors.New("order rejected by risk decision")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrExpiryViolation     = errors.New("confirmation deadline expired")
)

// Kinds reported to callers in structured error results.
const (
	KindValidation          = "validation_error"
	KindNotFound            = "not_found"
	KindStateTransition     = "state_transition_error"
	KindGeocodeFailure      = "geocode_failure"
	KindRiskRejection       = "risk_rejection"
	KindConcurrencyConflict = "concurrency_conflict"
	KindExpiryViolation     = "expiry_violation"
	KindInternal            = "internal_error"
)

// StateTransitionError is returned when the requested edge is not in the
// transition table or one of its guards is unmet.
type StateTransitionError struct {
	From   string
	To     string
	Reason string
}

func NewStateTransitionError(from, to, reason string) *StateTransitionError {
	return &StateTransitionError{From: from, To: to, Reason: reason}
}

func (e *StateTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s -> %s (%s)", ErrStateTransition, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("%s: %s -> %s", ErrStateTransition, e.From, e.To)
}

func (e *StateTransitionError) Unwrap() error {
	return ErrStateTransition
}

// GeocodeFailureError is retryable until the attempt ceiling is reached.
type GeocodeFailureError struct {
	Address string
	Attempt int
	Cause   error
}

func NewGeocodeFailureError(address string, attempt int, cause error) *GeocodeFailureError {
	return &GeocodeFailureError{Address: address, Attempt: attempt, Cause: cause}
}

func (e *GeocodeFailureError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %q attempt %d (cause: %v)", ErrGeocodeFailure, e.Address, e.Attempt, e.Cause)
	}
	return fmt.Sprintf("%s: %q attempt %d", ErrGeocodeFailure, e.Address, e.Attempt)
}

func (e *GeocodeFailureError) Unwrap() error {
	return ErrGeocodeFailure
}

// RiskRejectionError is a business decision, not a system fault.
type RiskRejectionError struct {
	OrderID string
	Reason  string
	IsFraud bool
}

func NewRiskRejectionError(orderID, reason string, isFraud bool) *RiskRejectionError {
	return &RiskRejectionError{OrderID: orderID, Reason: reason, IsFraud: isFraud}
}

func (e *RiskRejectionError) Error() string {
	return fmt.Sprintf("%s: order %s, reason: %s", ErrRiskRejection, e.OrderID, e.Reason)
}

func (e *RiskRejectionError) Unwrap() error {
	return ErrRiskRejection
}

// ConcurrencyConflictError is returned when a shared resource could not be locked.
type ConcurrencyConflictError struct {
	Resource string
	ID       string
}

func NewConcurrencyConflictError(resource, id string) *ConcurrencyConflictError {
	return &ConcurrencyConflictError{Resource: resource, ID: id}
}

func (e *ConcurrencyConflictError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: no %s could be locked", ErrConcurrencyConflict, e.Resource)
	}
	return fmt.Sprintf("%s: %s %s could not be locked", ErrConcurrencyConflict, e.Resource, e.ID)
}

func (e *ConcurrencyConflictError) Unwrap() error {
	return ErrConcurrencyConflict
}

// ExpiryViolationError records a watchdog cancellation with its original deadline.
type ExpiryViolationError struct {
	OrderID  string
	Deadline time.Time
}

func NewExpiryViolationError(orderID string, deadline time.Time) *ExpiryViolationError {
	return &ExpiryViolationError{OrderID: orderID, Deadline: deadline}
}

func (e *ExpiryViolationError) Error() string {
	return fmt.Sprintf("%s: order %s, deadline %s", ErrExpiryViolation, e.OrderID, e.Deadline.UTC().Format(time.RFC3339))
}

func (e *ExpiryViolationError) Unwrap() error {
	return ErrExpiryViolation
}

// KindOf maps an error to the kind reported in structured results.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return KindValidation
	case errors.Is(err, ErrObjectNotFound):
		return KindNotFound
	case errors.Is(err, ErrStateTransition):
		return KindStateTransition
	case errors.Is(err, ErrGeocodeFailure):
		return KindGeocodeFailure
	case errors.Is(err, ErrRiskRejection):
		return KindRiskRejection
	case errors.Is(err, ErrConcurrencyConflict):
		return KindConcurrencyConflict
	case errors.Is(err, ErrExpiryViolation):
		return KindExpiryViolation
	default:
		return KindInternal
	}
}
