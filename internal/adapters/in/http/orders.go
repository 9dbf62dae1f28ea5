package http

import (
	"errors"
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/generated/servers"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var body servers.NewOrder
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, err)
	}

	customerID, err := domainID(body.CustomerID)
	if err != nil {
		return s.fail(ctx, err)
	}
	method, err := order.ParsePaymentMethod(body.PaymentMethod)
	if err != nil {
		return s.fail(ctx, err)
	}

	items := make([]order.Item, 0, len(body.Items))
	var problems []error
	for _, in := range body.Items {
		item, err := order.NewItem(in.ProductID, in.Name, in.Quantity, in.UnitPrice)
		if err != nil {
			problems = append(problems, err)
			continue
		}
		items = append(items, item)
	}
	if err := errors.Join(problems...); err != nil {
		return s.fail(ctx, err)
	}

	var pin *kernel.GeoPoint
	if body.Pin != nil {
		p, err := kernel.NewGeoPoint(body.Pin.Lat, body.Pin.Lng)
		if err != nil {
			return s.fail(ctx, err)
		}
		pin = &p
	}

	cmd, err := commands.NewCreateOrderCommand(
		kernel.NewUUID(), customerID, method, items, body.Address, pin, body.RedeemPoints)
	if err != nil {
		return s.fail(ctx, err)
	}

	res, err := s.h.CreateOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	placed := servers.PlacedOrder{
		ID:                   apiID(res.OrderID),
		Status:               res.Status.String(),
		Subtotal:             res.Subtotal,
		DeliveryFee:          res.DeliveryFee,
		Discount:             res.Discount,
		Total:                res.Total,
		PointsRedeemed:       res.PointsRedeemed,
		DistanceKm:           res.DistanceKm,
		GeocodeStatus:        string(res.GeocodeStatus),
		ConfirmationDeadline: res.ConfirmationDeadline,
	}
	if res.RiskLevel != nil {
		level := res.RiskLevel.String()
		placed.RiskLevel = &level
	}
	return ctx.JSON(http.StatusCreated, placed)
}

// GetActiveOrders handles GET /api/v1/orders/active.
func (s *Server) GetActiveOrders(ctx echo.Context) error {
	orders, err := s.h.GetActiveOrders.Handle(ctx.Request().Context(), queries.NewGetActiveOrdersQuery())
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]servers.OrderSummary, len(orders))
	for i, o := range orders {
		response[i] = servers.OrderSummary{
			ID:            apiID(o.ID),
			CustomerID:    apiID(o.CustomerID),
			PaymentMethod: string(o.PaymentMethod),
			Status:        o.Status.String(),
			Total:         o.Total,
			PlacedAt:      o.PlacedAt,
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetOrder handles GET /api/v1/orders/{id}.
func (s *Server) GetOrder(ctx echo.Context, id openapi_types.UUID) error {
	orderID, err := domainID(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return s.fail(ctx, err)
	}

	o, err := s.h.GetOrder.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, apiOrderDetail(o))
}

// TransitionOrder handles POST /api/v1/orders/{id}/status.
func (s *Server) TransitionOrder(ctx echo.Context, id openapi_types.UUID) error {
	var body servers.StatusChange
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, err)
	}

	orderID, err := domainID(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	target, err := order.ParseStatus(body.Status)
	if err != nil {
		return s.fail(ctx, err)
	}
	actor := body.Actor
	if actor == "" {
		actor = defaultStaffActor
	}

	cmd, err := commands.NewTransitionOrderCommand(orderID, target, actor, body.Message)
	if err != nil {
		return s.fail(ctx, err)
	}
	res, err := s.h.TransitionOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, servers.Transition{
		ID:           apiID(res.OrderID),
		From:         res.From.String(),
		To:           res.To.String(),
		PointsEarned: res.PointsEarned,
	})
}

// AssignCourier handles POST /api/v1/orders/{id}/assign_courier. Without a
// courier_id the first available courier is chosen.
func (s *Server) AssignCourier(ctx echo.Context, id openapi_types.UUID) error {
	var body servers.CourierChoice
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, err)
	}

	orderID, err := domainID(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	courierID, err := domainIDPtr(body.CourierID)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewAssignCourierCommand(orderID, courierID)
	if err != nil {
		return s.fail(ctx, err)
	}
	res, err := s.h.AssignCourier.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, servers.Assignment{
		OrderID:           apiID(res.OrderID),
		CourierID:         apiID(res.CourierID),
		AssignmentID:      apiID(res.AssignmentID),
		ReleasedCourierID: apiIDPtr(res.ReleasedCourierID),
		Unchanged:         res.Unchanged,
	})
}
