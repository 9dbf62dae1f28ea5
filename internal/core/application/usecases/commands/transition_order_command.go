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
	ErrTransitionOrderCommandIsNotConstructed = errors.New(
		"TransitionOrderCommand must be created via NewTransitionOrderCommand constructor",
	)
	ErrActorIsRequired = errs.NewValueIsRequiredError("actor")
)

// TransitionOrderCommand asks to move an order to a target status.
//
// Example:
//
//	cmd, err := NewTransitionOrderCommand(orderID, order.Preparing, "staff:ari", "")
type TransitionOrderCommand struct {
	orderID kernel.UUID
	target  order.Status
	actor   string
	message string

	guard guard.ConstructorGuard
}

func NewTransitionOrderCommand(orderID kernel.UUID, target order.Status, actor, message string) (TransitionOrderCommand, error) {
	var problems []error
	if err := orderID.Validate(); err != nil {
		problems = append(problems, err)
	}
	if err := target.Validate(); err != nil {
		problems = append(problems, err)
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		problems = append(problems, ErrActorIsRequired)
	}
	if err := errors.Join(problems...); err != nil {
		return TransitionOrderCommand{}, err
	}

	return TransitionOrderCommand{
		orderID: orderID,
		target:  target,
		actor:   actor,
		message: strings.TrimSpace(message),
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c TransitionOrderCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderCommandIsNotConstructed)
}

func (c TransitionOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c TransitionOrderCommand) Target() order.Status { return c.target }
func (c TransitionOrderCommand) Actor() string        { return c.actor }
func (c TransitionOrderCommand) Message() string      { return c.message }
