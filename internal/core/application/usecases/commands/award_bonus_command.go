package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrAwardBonusCommandIsNotConstructed = errors.New(
		"AwardBonusCommand must be created via NewAwardBonusCommand constructor",
	)
	ErrReasonIsRequired = errs.NewValueIsRequiredError("reason")
)

// AwardBonusCommand grants operator bonus points.
type AwardBonusCommand struct {
	accountID kernel.UUID
	points    int64
	reason    string

	guard guard.ConstructorGuard
}

func NewAwardBonusCommand(accountID kernel.UUID, points int64, reason string) (AwardBonusCommand, error) {
	var problems []error
	if err := accountID.Validate(); err != nil {
		problems = append(problems, err)
	}
	if points <= 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("points", points, 1, "∞"))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		problems = append(problems, ErrReasonIsRequired)
	}
	if err := errors.Join(problems...); err != nil {
		return AwardBonusCommand{}, err
	}

	return AwardBonusCommand{accountID: accountID, points: points, reason: reason, guard: guard.NewConstructorGuard()}, nil
}

func (c AwardBonusCommand) Validate() error {
	return c.guard.Validate(ErrAwardBonusCommandIsNotConstructed)
}

func (c AwardBonusCommand) AccountID() kernel.UUID { return c.accountID }
func (c AwardBonusCommand) Points() int64          { return c.points }
func (c AwardBonusCommand) Reason() string         { return c.reason }
