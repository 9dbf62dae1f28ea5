package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

// AwardBonusCommandHandler appends a Bonus entry, creating the account on
// first use.
type AwardBonusCommandHandler struct {
	uowFactory LoyaltyUoWFactory
	clock      Clock
}

func NewAwardBonusCommandHandler(uowFactory LoyaltyUoWFactory, clock Clock) AwardBonusCommandHandler {
	return AwardBonusCommandHandler{uowFactory: uowFactory, clock: orSystemClock(clock)}
}

func (h AwardBonusCommandHandler) Handle(ctx context.Context, cmd AwardBonusCommand) (LedgerResult, error) {
	if err := cmd.Validate(); err != nil {
		return LedgerResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return LedgerResult{}, err
	}
	defer rollback(ctx, uow)

	now := h.clock()
	repo := uow.LoyaltyRepository()
	account, err := repo.GetAccountForUpdate(ctx, cmd.AccountID(), now)
	if err != nil {
		return LedgerResult{}, err
	}

	tx, err := account.GrantBonus(kernel.NewUUID(), cmd.Points(), cmd.Reason(), now)
	if err != nil {
		return LedgerResult{}, err
	}
	if _, err = repo.Append(ctx, account, tx); err != nil {
		return LedgerResult{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return LedgerResult{}, err
	}

	return LedgerResult{TransactionID: tx.ID(), Points: tx.Points(), Discount: decimal.Zero, Balance: account.Balance()}, nil
}
