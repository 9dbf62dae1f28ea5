package commands

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/customer"
	"fulfillment/internal/pkg/errs"
)

// UpsertCustomerCommandHandler stores a synced profile. A fraud flag set by
// a rejection survives the sync.
type UpsertCustomerCommandHandler struct {
	uowFactory CustomerUoWFactory
}

func NewUpsertCustomerCommandHandler(uowFactory CustomerUoWFactory) UpsertCustomerCommandHandler {
	return UpsertCustomerCommandHandler{uowFactory: uowFactory}
}

func (h UpsertCustomerCommandHandler) Handle(ctx context.Context, cmd UpsertCustomerCommand) (*customer.Customer, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer rollback(ctx, uow)

	repo := uow.CustomerRepository()
	c, err := repo.GetForUpdate(ctx, cmd.CustomerID())
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		c, err = customer.NewCustomer(cmd.CustomerID(), cmd.TrustScore(), cmd.IsVerified())
	case err == nil:
		err = c.UpdateProfile(cmd.TrustScore(), cmd.IsVerified())
	}
	if err != nil {
		return nil, err
	}

	if err = repo.Save(ctx, c); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return c, nil
}
