package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrAddressIsRequired = errs.NewValueIsRequiredError("address")
	ErrItemsAreRequired  = errs.NewValueIsRequiredError("items")
)

// CreateOrderCommand represents a checkout: the priced basket, the payment
// method, the drop-off address and optionally a map pin and points to redeem.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), customerID, order.COD,
//	    items, "Jl. Ijen 12, Malang", &pin, 0)
//	if err != nil {
//	    return fmt.Errorf("invalid checkout: %w", err)
//	}
//
//	res, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID       kernel.UUID
	customerID    kernel.UUID
	paymentMethod order.PaymentMethod
	items         []order.Item
	address       string
	pin           *kernel.GeoPoint
	redeemPoints  int64

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the checkout input. pin may be nil when
// the customer only typed an address; redeemPoints may be 0.
func NewCreateOrderCommand(
	orderID, customerID kernel.UUID,
	paymentMethod order.PaymentMethod,
	items []order.Item,
	address string,
	pin *kernel.GeoPoint,
	redeemPoints int64,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setIDs(orderID, customerID),
		cmd.setPaymentMethod(paymentMethod),
		cmd.setItems(items),
		cmd.setAddress(address),
		cmd.setPin(pin),
		cmd.setRedeemPoints(redeemPoints),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID                { return c.orderID }
func (c CreateOrderCommand) CustomerID() kernel.UUID             { return c.customerID }
func (c CreateOrderCommand) PaymentMethod() order.PaymentMethod  { return c.paymentMethod }
func (c CreateOrderCommand) Address() string                     { return c.address }
func (c CreateOrderCommand) Pin() *kernel.GeoPoint               { return c.pin }
func (c CreateOrderCommand) RedeemPoints() int64                 { return c.redeemPoints }
func (c CreateOrderCommand) Items() []order.Item                 { return append([]order.Item(nil), c.items...) }

func (c *CreateOrderCommand) setIDs(orderID, customerID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if err := customerID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customer_id", err)
	}
	c.orderID, c.customerID = orderID, customerID
	return nil
}

func (c *CreateOrderCommand) setPaymentMethod(m order.PaymentMethod) error {
	if err := m.Validate(); err != nil {
		return err
	}
	c.paymentMethod = m
	return nil
}

func (c *CreateOrderCommand) setItems(items []order.Item) error {
	if len(items) == 0 {
		return ErrItemsAreRequired
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	c.items = append([]order.Item(nil), items...)
	return nil
}

func (c *CreateOrderCommand) setAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return ErrAddressIsRequired
	}
	c.address = address
	return nil
}

func (c *CreateOrderCommand) setPin(pin *kernel.GeoPoint) error {
	if pin == nil {
		return nil
	}
	if err := pin.Validate(); err != nil {
		return err
	}
	p := *pin
	c.pin = &p
	return nil
}

func (c *CreateOrderCommand) setRedeemPoints(points int64) error {
	if points < 0 {
		return errs.NewValueIsOutOfRangeError("redeem_points", points, 0, "∞")
	}
	c.redeemPoints = points
	return nil
}
