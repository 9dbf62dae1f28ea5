package commands

import (
	"errors"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrDispatchPendingOrdersCommandIsNotConstructed = errors.New(
	"DispatchPendingOrdersCommand must be created via NewDispatchPendingOrdersCommand constructor",
)

// DispatchPendingOrdersCommand runs auto assignment for up to limit orders
// that are ready for a courier and have none.
type DispatchPendingOrdersCommand struct {
	limit int
	guard guard.ConstructorGuard
}

func NewDispatchPendingOrdersCommand(limit int) (DispatchPendingOrdersCommand, error) {
	if limit <= 0 {
		return DispatchPendingOrdersCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, "∞")
	}
	return DispatchPendingOrdersCommand{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (c DispatchPendingOrdersCommand) Validate() error {
	return c.guard.Validate(ErrDispatchPendingOrdersCommandIsNotConstructed)
}

func (c DispatchPendingOrdersCommand) Limit() int { return c.limit }
