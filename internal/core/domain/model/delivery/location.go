package delivery

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// ReasonOutsideRadius is recorded as last error when the geocoder resolves an
// address that lies beyond the delivery radius.
const ReasonOutsideRadius = "outside delivery radius"

// ReasonOrderFinished is recorded when a pending location is withdrawn
// because its order reached a terminal status.
const ReasonOrderFinished = "order finished"

var ErrLocationIsNotConstructed = errors.New("Location must be created via NewPendingLocation or NewResolvedLocation")

// Location is keyed by the order it belongs to; every order has exactly one.
type Location struct {
	orderID       kernel.UUID
	address       string
	point         *kernel.GeoPoint
	status        GeocodeStatus
	attempts      int
	lastError     string
	nextAttemptAt *time.Time
	updatedAt     time.Time

	isConstructed bool
}

// LocationState is the persisted form of a Location.
type LocationState struct {
	OrderID       kernel.UUID
	Address       string
	Point         *kernel.GeoPoint
	Status        GeocodeStatus
	Attempts      int
	LastError     string
	NextAttemptAt *time.Time
	UpdatedAt     time.Time
}

// NewPendingLocation creates a location that still has to be geocoded. The
// first attempt is due immediately.
func NewPendingLocation(orderID kernel.UUID, address string, now time.Time) (*Location, error) {
	l := &Location{status: Pending, updatedAt: now, isConstructed: true}
	if err := errors.Join(l.setOrderID(orderID), l.setAddress(address)); err != nil {
		return nil, err
	}
	l.nextAttemptAt = &now
	return l, nil
}

// NewResolvedLocation creates a location from coordinates supplied at checkout.
func NewResolvedLocation(orderID kernel.UUID, address string, point kernel.GeoPoint, now time.Time) (*Location, error) {
	l := &Location{status: Resolved, updatedAt: now, isConstructed: true}
	if err := errors.Join(l.setOrderID(orderID), l.setAddress(address), point.Validate()); err != nil {
		return nil, err
	}
	l.point = &point
	return l, nil
}

func RestoreLocation(s LocationState) (*Location, error) {
	if err := errors.Join(s.OrderID.Validate(), s.Status.Validate()); err != nil {
		return nil, err
	}
	if s.Status.IsDispatchable() && s.Point == nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("point",
			fmt.Errorf("%s location has no coordinates", s.Status))
	}
	return &Location{
		orderID:       s.OrderID,
		address:       s.Address,
		point:         s.Point,
		status:        s.Status,
		attempts:      s.Attempts,
		lastError:     s.LastError,
		nextAttemptAt: s.NextAttemptAt,
		updatedAt:     s.UpdatedAt,
		isConstructed: true,
	}, nil
}

// State returns the persisted form of the location.
func (l *Location) State() LocationState {
	return LocationState{
		OrderID:       l.orderID,
		Address:       l.address,
		Point:         l.point,
		Status:        l.status,
		Attempts:      l.attempts,
		LastError:     l.lastError,
		NextAttemptAt: l.nextAttemptAt,
		UpdatedAt:     l.updatedAt,
	}
}

func (l *Location) Validate() error {
	if l == nil || !l.isConstructed {
		return ErrLocationIsNotConstructed
	}
	return nil
}

func (l *Location) OrderID() kernel.UUID        { return l.orderID }
func (l *Location) Address() string             { return l.address }
func (l *Location) Point() *kernel.GeoPoint     { return l.point }
func (l *Location) Status() GeocodeStatus       { return l.status }
func (l *Location) Attempts() int               { return l.attempts }
func (l *Location) LastError() string           { return l.lastError }
func (l *Location) NextAttemptAt() *time.Time   { return l.nextAttemptAt }
func (l *Location) UpdatedAt() time.Time        { return l.updatedAt }
func (l *Location) IsDispatchable() bool        { return l.status.IsDispatchable() }

// IsDue reports whether the resolver should attempt this location at now.
func (l *Location) IsDue(now time.Time) bool {
	return l.status == Pending && (l.nextAttemptAt == nil || !l.nextAttemptAt.After(now))
}

// Resolve stores coordinates returned by the geocoder. Only a Pending
// location accepts a resolver result; a manual correction that landed while
// the geocoder call was in flight wins.
func (l *Location) Resolve(point kernel.GeoPoint, now time.Time) error {
	if err := point.Validate(); err != nil {
		return err
	}
	if l.status != Pending {
		return errs.NewStateTransitionError(l.status.String(), Resolved.String(), "only pending locations can be resolved")
	}
	l.point = &point
	l.status = Resolved
	l.lastError = ""
	l.nextAttemptAt = nil
	l.updatedAt = now
	return nil
}

// RecordFailure counts one failed attempt. The next attempt is scheduled
// backoff × attempts after now; once attempts reach maxAttempts the location
// is moved to Failed and awaits manual correction. The returned error
// describes the failed attempt and is meant for logging.
func (l *Location) RecordFailure(reason string, maxAttempts int, backoff time.Duration, now time.Time) error {
	if l.status != Pending {
		return errs.NewStateTransitionError(l.status.String(), Failed.String(), "only pending locations record failures")
	}
	if maxAttempts < 1 {
		return errs.NewValueIsOutOfRangeError("max_attempts", maxAttempts, 1, "∞")
	}

	l.attempts++
	l.lastError = reason
	l.updatedAt = now
	if l.attempts >= maxAttempts {
		l.status = Failed
		l.nextAttemptAt = nil
	} else {
		next := now.Add(backoff * time.Duration(l.attempts))
		l.nextAttemptAt = &next
	}

	return errs.NewGeocodeFailureError(l.address, l.attempts, errors.New(reason))
}

// Withdraw takes a Pending location out of the retry queue once its order is
// finished. The location moves to Failed without counting an attempt. It
// reports false for any other status.
func (l *Location) Withdraw(now time.Time) bool {
	if l.status != Pending {
		return false
	}
	l.status = Failed
	l.lastError = ReasonOrderFinished
	l.nextAttemptAt = nil
	l.updatedAt = now
	return true
}

// ManualUpdate overrides the coordinates with operator input. It reports
// false when the location is already ManuallyCorrected to the same point,
// so repeating the request changes nothing.
func (l *Location) ManualUpdate(point kernel.GeoPoint, now time.Time) (bool, error) {
	if err := point.Validate(); err != nil {
		return false, err
	}
	if l.status == ManuallyCorrected && l.point != nil {
		if same, err := l.point.IsEqual(point); err == nil && same {
			return false, nil
		}
	}
	l.point = &point
	l.status = ManuallyCorrected
	l.nextAttemptAt = nil
	l.updatedAt = now
	return true, nil
}

func (l *Location) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("order_id", err)
	}
	l.orderID = id
	return nil
}

func (l *Location) setAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return errs.NewValueIsRequiredError("address")
	}
	l.address = address
	return nil
}
