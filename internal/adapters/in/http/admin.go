package http

import (
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/risk"
	"fulfillment/internal/generated/servers"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// GetPendingCODOrders handles GET /api/v1/admin/cod/pending.
func (s *Server) GetPendingCODOrders(ctx echo.Context) error {
	query := queries.NewGetPendingCODOrdersQuery(s.clock())
	pending, err := s.h.GetPendingCODOrders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]servers.PendingCODOrder, len(pending))
	for i, o := range pending {
		response[i] = servers.PendingCODOrder{
			ID:                   apiID(o.ID),
			CustomerID:           apiID(o.CustomerID),
			Address:              o.Address,
			Total:                o.Total,
			CODAmountLimit:       o.CODAmountLimit,
			PlacedAt:             o.PlacedAt,
			ConfirmationDeadline: o.ConfirmationDeadline,
			MinutesRemaining:     o.MinutesRemaining,
			GeocodeStatus:        o.GeocodeStatus,
			Risk:                 apiRisk(o.Risk),
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

// DecideCODOrder handles POST /api/v1/admin/cod/{id}/decision. A rejection is
// a successful decision and is reported in the body, not as an error status.
func (s *Server) DecideCODOrder(ctx echo.Context, id openapi_types.UUID) error {
	var body servers.CODDecision
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, err)
	}

	orderID, err := domainID(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	action, err := risk.ParseAction(body.Action)
	if err != nil {
		return s.fail(ctx, err)
	}
	actor := body.Actor
	if actor == "" {
		actor = defaultAdminActor
	}

	cmd, err := commands.NewDecideCODOrderCommand(orderID, commands.DecisionInput{
		Action:              action,
		Actor:               actor,
		Reason:              body.Reason,
		IsFraud:             body.IsFraud,
		AcknowledgeHighRisk: body.AcknowledgeHighRisk,
	})
	if err != nil {
		return s.fail(ctx, err)
	}
	res, err := s.h.DecideCODOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	outcome := servers.DecisionOutcome{
		OrderID:   apiID(res.OrderID),
		Action:    string(res.Action),
		Status:    res.Status.String(),
		RiskLevel: res.RiskLevel.String(),
	}
	if res.Rejection != nil {
		outcome.Rejection = &servers.Error{Kind: errs.KindRiskRejection, Message: res.Rejection.Error()}
	}
	return ctx.JSON(http.StatusOK, outcome)
}

// GetFailedGeocodeJobs handles GET /api/v1/admin/geocode/failed_jobs.
func (s *Server) GetFailedGeocodeJobs(ctx echo.Context) error {
	jobs, err := s.h.GetFailedGeocodeJobs.Handle(ctx.Request().Context(), queries.NewGetFailedGeocodeJobsQuery())
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]servers.FailedGeocodeJob, len(jobs))
	for i, j := range jobs {
		response[i] = servers.FailedGeocodeJob{
			OrderID:     apiID(j.OrderID),
			OrderStatus: j.OrderStatus.String(),
			Address:     j.Address,
			Attempts:    j.Attempts,
			LastError:   j.LastError,
			FailedAt:    j.FailedAt,
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

// ManualUpdateLocation handles POST /api/v1/admin/geocode/manual_update.
func (s *Server) ManualUpdateLocation(ctx echo.Context) error {
	var body servers.ManualLocation
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, err)
	}

	orderID, err := domainID(body.OrderID)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewManualUpdateLocationCommand(orderID, body.Lat, body.Lng)
	if err != nil {
		return s.fail(ctx, err)
	}
	res, err := s.h.ManualUpdateLocation.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, servers.LocationUpdate{
		OrderID:     apiID(res.OrderID),
		Status:      string(res.Status),
		DistanceKm:  res.DistanceKm,
		Changed:     res.Changed,
		RiskUpdated: res.RiskUpdated,
	})
}

// UpsertCustomer handles PUT /api/v1/admin/customers/{id}.
func (s *Server) UpsertCustomer(ctx echo.Context, id openapi_types.UUID) error {
	var body servers.CustomerProfile
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, err)
	}

	customerID, err := domainID(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewUpsertCustomerCommand(customerID, body.TrustScore, body.IsVerified)
	if err != nil {
		return s.fail(ctx, err)
	}
	c, err := s.h.UpsertCustomer.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, servers.Customer{
		ID:           apiID(c.ID()),
		TrustScore:   c.TrustScore(),
		IsVerified:   c.IsVerified(),
		FraudFlagged: c.FraudFlagged(),
		FraudReason:  c.FraudReason(),
	})
}
