package http

import (
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/generated/servers"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

func apiLedger(res commands.LedgerResult) servers.LedgerOutcome {
	return servers.LedgerOutcome{
		TransactionID: apiID(res.TransactionID),
		Points:        res.Points,
		Discount:      res.Discount,
		Balance:       res.Balance,
	}
}

// RedeemPoints handles POST /api/v1/loyalty/redeem.
func (s *Server) RedeemPoints(ctx echo.Context) error {
	var body servers.Redemption
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, err)
	}

	accountID, err := domainID(body.AccountID)
	if err != nil {
		return s.fail(ctx, err)
	}
	orderRef, err := domainIDPtr(body.OrderID)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewRedeemPointsCommand(accountID, body.Points, body.Subtotal, orderRef)
	if err != nil {
		return s.fail(ctx, err)
	}
	res, err := s.h.RedeemPoints.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, apiLedger(res))
}

// AwardBonus handles POST /api/v1/loyalty/bonus.
func (s *Server) AwardBonus(ctx echo.Context) error {
	var body servers.Bonus
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, err)
	}

	accountID, err := domainID(body.AccountID)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewAwardBonusCommand(accountID, body.Points, body.Reason)
	if err != nil {
		return s.fail(ctx, err)
	}
	res, err := s.h.AwardBonus.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, apiLedger(res))
}

// GetLoyaltyAccount handles GET /api/v1/loyalty/{account_id}.
func (s *Server) GetLoyaltyAccount(
	ctx echo.Context,
	accountID openapi_types.UUID,
	params servers.GetLoyaltyAccountParams,
) error {
	id, err := domainID(accountID)
	if err != nil {
		return s.fail(ctx, err)
	}
	limit := defaultHistory
	if params.Limit != nil {
		limit = *params.Limit
	}
	query, err := queries.NewGetLoyaltyAccountQuery(id, limit)
	if err != nil {
		return s.fail(ctx, err)
	}

	account, err := s.h.GetLoyaltyAccount.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	history := make([]servers.LedgerEntry, len(account.History))
	for i, e := range account.History {
		history[i] = servers.LedgerEntry{
			ID:        apiID(e.ID),
			Type:      e.Type.String(),
			Points:    e.Points,
			OrderRef:  apiIDPtr(e.OrderRef),
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt,
		}
	}

	return ctx.JSON(http.StatusOK, servers.LoyaltyAccount{
		AccountID: apiID(account.AccountID),
		Balance:   account.Balance,
		UpdatedAt: account.UpdatedAt,
		History:   history,
	})
}
