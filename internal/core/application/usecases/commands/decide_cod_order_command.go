package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/risk"
	"fulfillment/internal/pkg/guard"
)

var ErrDecideCODOrderCommandIsNotConstructed = errors.New(
	"DecideCODOrderCommand must be created via NewDecideCODOrderCommand constructor",
)

// DecideCODOrderCommand carries an admin verdict on a COD order waiting for
// confirmation. Reason is required for rejections; IsFraud is ignored for
// approvals and AcknowledgeHighRisk for rejections.
type DecideCODOrderCommand struct {
	orderID             kernel.UUID
	action              risk.Action
	actor               string
	reason              string
	isFraud             bool
	acknowledgeHighRisk bool

	guard guard.ConstructorGuard
}

// DecisionInput groups the verdict fields of DecideCODOrderCommand.
type DecisionInput struct {
	Action              risk.Action
	Actor               string
	Reason              string
	IsFraud             bool
	AcknowledgeHighRisk bool
}

func NewDecideCODOrderCommand(orderID kernel.UUID, in DecisionInput) (DecideCODOrderCommand, error) {
	var problems []error
	if err := orderID.Validate(); err != nil {
		problems = append(problems, err)
	}
	if _, err := risk.ParseAction(string(in.Action)); err != nil {
		problems = append(problems, err)
	}
	actor := strings.TrimSpace(in.Actor)
	if actor == "" {
		problems = append(problems, ErrActorIsRequired)
	}
	reason := strings.TrimSpace(in.Reason)
	if in.Action == risk.Reject && reason == "" {
		problems = append(problems, risk.ErrReasonIsRequired)
	}
	if err := errors.Join(problems...); err != nil {
		return DecideCODOrderCommand{}, err
	}

	return DecideCODOrderCommand{
		orderID:             orderID,
		action:              in.Action,
		actor:               actor,
		reason:              reason,
		isFraud:             in.Action == risk.Reject && in.IsFraud,
		acknowledgeHighRisk: in.Action == risk.Approve && in.AcknowledgeHighRisk,
		guard:               guard.NewConstructorGuard(),
	}, nil
}

func (c DecideCODOrderCommand) Validate() error {
	return c.guard.Validate(ErrDecideCODOrderCommandIsNotConstructed)
}

func (c DecideCODOrderCommand) OrderID() kernel.UUID      { return c.orderID }
func (c DecideCODOrderCommand) Action() risk.Action       { return c.action }
func (c DecideCODOrderCommand) Actor() string             { return c.actor }
func (c DecideCODOrderCommand) Reason() string            { return c.reason }
func (c DecideCODOrderCommand) IsFraud() bool             { return c.isFraud }
func (c DecideCODOrderCommand) AcknowledgeHighRisk() bool { return c.acknowledgeHighRisk }
