package http

import (
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/generated/servers"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// GetCouriers handles GET /api/v1/couriers.
func (s *Server) GetCouriers(ctx echo.Context) error {
	couriers, err := s.h.GetAllCouriers.Handle(ctx.Request().Context(), queries.NewGetAllCouriersQuery())
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]servers.Courier, len(couriers))
	for i, c := range couriers {
		response[i] = servers.Courier{
			ID:            apiID(c.ID),
			Name:          c.Name,
			Phone:         c.Phone,
			VehicleType:   string(c.VehicleType),
			Availability:  string(c.Availability),
			ActiveOrderID: apiIDPtr(c.ActiveOrderID),
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

// CreateCourier handles POST /api/v1/couriers.
func (s *Server) CreateCourier(ctx echo.Context) error {
	var body servers.NewCourier
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, err)
	}

	vehicle, err := courier.ParseVehicleType(body.VehicleType)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewCreateCourierCommand(body.Name, body.Phone, vehicle)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.h.CreateCourier.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}

	return ctx.NoContent(http.StatusCreated)
}

// SetCourierAvailability handles POST /api/v1/couriers/{id}/availability.
func (s *Server) SetCourierAvailability(ctx echo.Context, id openapi_types.UUID) error {
	var body servers.CourierAvailability
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, err)
	}

	courierID, err := domainID(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	availability, err := courier.ParseAvailability(body.Availability)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewSetCourierAvailabilityCommand(courierID, availability)
	if err != nil {
		return s.fail(ctx, err)
	}
	if err := s.h.SetCourierAvailability.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}
