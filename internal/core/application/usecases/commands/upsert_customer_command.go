package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/customer"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrUpsertCustomerCommandIsNotConstructed = errors.New(
	"UpsertCustomerCommand must be created via NewUpsertCustomerCommand constructor",
)

// UpsertCustomerCommand syncs a trust profile from the identity service.
type UpsertCustomerCommand struct {
	customerID kernel.UUID
	trustScore int
	isVerified bool

	guard guard.ConstructorGuard
}

func NewUpsertCustomerCommand(customerID kernel.UUID, trustScore int, isVerified bool) (UpsertCustomerCommand, error) {
	var problems []error
	if err := customerID.Validate(); err != nil {
		problems = append(problems, err)
	}
	if trustScore < customer.MinTrustScore || trustScore > customer.MaxTrustScore {
		problems = append(problems, errs.NewValueIsOutOfRangeError("trust_score", trustScore,
			customer.MinTrustScore, customer.MaxTrustScore))
	}
	if err := errors.Join(problems...); err != nil {
		return UpsertCustomerCommand{}, err
	}

	return UpsertCustomerCommand{
		customerID: customerID,
		trustScore: trustScore,
		isVerified: isVerified,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c UpsertCustomerCommand) Validate() error {
	return c.guard.Validate(ErrUpsertCustomerCommandIsNotConstructed)
}

func (c UpsertCustomerCommand) CustomerID() kernel.UUID { return c.customerID }
func (c UpsertCustomerCommand) TrustScore() int         { return c.trustScore }
func (c UpsertCustomerCommand) IsVerified() bool        { return c.isVerified }
