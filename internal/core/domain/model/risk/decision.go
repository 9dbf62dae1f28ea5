package risk

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// Action is the admin verdict on a COD order.
type Action string

const (
	Approve Action = "approve"
	Reject  Action = "reject"
)

// ParseAction accepts "approve" or "reject".
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if a != Approve && a != Reject {
		return "", errs.NewValueIsInvalidErrorWithCause("action", fmt.Errorf("%q is not approve or reject", s))
	}
	return a, nil
}

var (
	ErrDecisionIsNotConstructed = errors.New("Decision must be created via NewApproval or NewRejection")
	ErrActorIsRequired          = errs.NewValueIsRequiredError("actor")
	ErrReasonIsRequired         = errs.NewValueIsRequiredError("reason")
)

// Decision records who decided what, and when. Once recorded on an order it
// is never replaced.
type Decision struct {
	action               Action
	actor                string
	reason               string
	isFraud              bool
	highRiskAcknowledged bool
	decidedAt            time.Time

	guard guard.ConstructorGuard
}

// NewApproval builds an approve decision. acknowledgeHighRisk must be true to
// approve an order classified as High.
func NewApproval(actor string, acknowledgeHighRisk bool, at time.Time) (Decision, error) {
	if strings.TrimSpace(actor) == "" {
		return Decision{}, ErrActorIsRequired
	}
	return Decision{
		action:               Approve,
		actor:                actor,
		highRiskAcknowledged: acknowledgeHighRisk,
		decidedAt:            at,
		guard:                guard.NewConstructorGuard(),
	}, nil
}

// NewRejection builds a reject decision. A reason is always required.
func NewRejection(actor, reason string, isFraud bool, at time.Time) (Decision, error) {
	var problems []error
	if strings.TrimSpace(actor) == "" {
		problems = append(problems, ErrActorIsRequired)
	}
	if strings.TrimSpace(reason) == "" {
		problems = append(problems, ErrReasonIsRequired)
	}
	if err := errors.Join(problems...); err != nil {
		return Decision{}, err
	}
	return Decision{
		action:    Reject,
		actor:     actor,
		reason:    reason,
		isFraud:   isFraud,
		decidedAt: at,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// RestoreDecision rebuilds a persisted decision.
func RestoreDecision(action Action, actor, reason string, isFraud, acknowledged bool, at time.Time) (Decision, error) {
	switch action {
	case Approve:
		return NewApproval(actor, acknowledged, at)
	case Reject:
		return NewRejection(actor, reason, isFraud, at)
	default:
		return Decision{}, errs.NewValueIsInvalidErrorWithCause("action", fmt.Errorf("%q is not approve or reject", action))
	}
}

func (d Decision) Validate() error {
	return d.guard.Validate(ErrDecisionIsNotConstructed)
}

func (d Decision) Action() Action             { return d.action }
func (d Decision) Actor() string              { return d.actor }
func (d Decision) Reason() string             { return d.reason }
func (d Decision) IsFraud() bool              { return d.isFraud }
func (d Decision) HighRiskAcknowledged() bool { return d.highRiskAcknowledged }
func (d Decision) DecidedAt() time.Time       { return d.decidedAt }
func (d Decision) IsApproval() bool           { return d.action == Approve }
