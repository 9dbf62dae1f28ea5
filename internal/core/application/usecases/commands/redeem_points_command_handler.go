package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/loyalty"

	"github.com/shopspring/decimal"
)

// LedgerResult reports an appended ledger entry and the balance after it.
type LedgerResult struct {
	TransactionID kernel.UUID
	Points        int64
	Discount      decimal.Decimal
	Balance       int64
}

// RedeemPointsCommandHandler validates and records a redemption under the
// account row lock. A rejected redemption returns errs.ValueIsOutOfRangeError
// whose Max is the number of points that could be redeemed.
type RedeemPointsCommandHandler struct {
	uowFactory LoyaltyUoWFactory
	policy     loyalty.Policy
	clock      Clock
}

func NewRedeemPointsCommandHandler(uowFactory LoyaltyUoWFactory, policy loyalty.Policy, clock Clock) RedeemPointsCommandHandler {
	return RedeemPointsCommandHandler{uowFactory: uowFactory, policy: policy, clock: orSystemClock(clock)}
}

func (h RedeemPointsCommandHandler) Handle(ctx context.Context, cmd RedeemPointsCommand) (LedgerResult, error) {
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

	tx, discount, err := account.Redeem(kernel.NewUUID(), cmd.Points(), cmd.Subtotal(), cmd.OrderRef(), h.policy, now)
	if err != nil {
		return LedgerResult{}, err
	}
	if _, err = repo.Append(ctx, account, tx); err != nil {
		return LedgerResult{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return LedgerResult{}, err
	}

	return LedgerResult{TransactionID: tx.ID(), Points: tx.Points(), Discount: discount, Balance: account.Balance()}, nil
}
