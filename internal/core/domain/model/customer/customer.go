// Package customer holds the trust profile the risk engine reads. Identity
// itself lives in an external system; this service keeps the fields it
// scores on plus the standing fraud flag it owns.
package customer

import (
	"errors"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

const (
	MinTrustScore = 0
	MaxTrustScore = 100
)

var ErrCustomerIsNotConstructed = errors.New("Customer must be created via NewCustomer constructor")

// Customer is the risk-relevant projection of a customer account.
type Customer struct {
	id           kernel.UUID
	trustScore   int
	isVerified   bool
	fraudFlagged bool
	fraudReason  string
	flaggedAt    *time.Time

	guard guard.ConstructorGuard
}

// NewCustomer creates an unflagged profile.
func NewCustomer(id kernel.UUID, trustScore int, isVerified bool) (*Customer, error) {
	c := &Customer{guard: guard.NewConstructorGuard()}
	if err := errors.Join(c.setID(id), c.setTrustScore(trustScore)); err != nil {
		return nil, err
	}
	c.isVerified = isVerified
	return c, nil
}

// RestoreCustomer reconstructs a profile from storage including its fraud flag.
func RestoreCustomer(
	id kernel.UUID,
	trustScore int,
	isVerified bool,
	fraudFlagged bool,
	fraudReason string,
	flaggedAt *time.Time,
) (*Customer, error) {
	c, err := NewCustomer(id, trustScore, isVerified)
	if err != nil {
		return nil, err
	}
	c.fraudFlagged = fraudFlagged
	c.fraudReason = fraudReason
	c.flaggedAt = flaggedAt
	return c, nil
}

func (c *Customer) Validate() error {
	if c == nil {
		return ErrCustomerIsNotConstructed
	}
	return c.guard.Validate(ErrCustomerIsNotConstructed)
}

func (c *Customer) ID() kernel.UUID       { return c.id }
func (c *Customer) TrustScore() int       { return c.trustScore }
func (c *Customer) IsVerified() bool      { return c.isVerified }
func (c *Customer) FraudFlagged() bool    { return c.fraudFlagged }
func (c *Customer) FraudReason() string   { return c.fraudReason }
func (c *Customer) FlaggedAt() *time.Time { return c.flaggedAt }

// UpdateProfile applies a sync from the identity system. The fraud flag is
// not part of the sync and survives it.
func (c *Customer) UpdateProfile(trustScore int, isVerified bool) error {
	if err := c.setTrustScore(trustScore); err != nil {
		return err
	}
	c.isVerified = isVerified
	return nil
}

// FlagFraud marks the customer after a fraud rejection. The first reason is
// kept; later flags do not overwrite it.
func (c *Customer) FlagFraud(reason string, at time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errs.NewValueIsRequiredError("reason")
	}
	if c.fraudFlagged {
		return nil
	}
	c.fraudFlagged = true
	c.fraudReason = reason
	c.flaggedAt = &at
	return nil
}

func (c *Customer) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *Customer) setTrustScore(score int) error {
	if score < MinTrustScore || score > MaxTrustScore {
		return errs.NewValueIsOutOfRangeError("trust_score", score, MinTrustScore, MaxTrustScore)
	}
	c.trustScore = score
	return nil
}
