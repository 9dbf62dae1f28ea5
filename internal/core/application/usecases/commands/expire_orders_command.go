package commands

import (
	"errors"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrExpireOrdersCommandIsNotConstructed = errors.New(
	"ExpireOrdersCommand must be created via NewExpireOrdersCommand constructor",
)

// ExpireOrdersCommand cancels up to limit COD orders whose confirmation
// deadline has passed.
type ExpireOrdersCommand struct {
	limit int
	guard guard.ConstructorGuard
}

func NewExpireOrdersCommand(limit int) (ExpireOrdersCommand, error) {
	if limit <= 0 {
		return ExpireOrdersCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, "∞")
	}
	return ExpireOrdersCommand{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (c ExpireOrdersCommand) Validate() error {
	return c.guard.Validate(ErrExpireOrdersCommandIsNotConstructed)
}

func (c ExpireOrdersCommand) Limit() int { return c.limit }
