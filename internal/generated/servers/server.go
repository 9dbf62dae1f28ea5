package servers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface lists every operation of openapi.yaml.
type ServerInterface interface {
	// (POST /orders)
	CreateOrder(ctx echo.Context) error
	// (GET /orders/active)
	GetActiveOrders(ctx echo.Context) error
	// (GET /orders/{id})
	GetOrder(ctx echo.Context, id openapi_types.UUID) error
	// (POST /orders/{id}/status)
	TransitionOrder(ctx echo.Context, id openapi_types.UUID) error
	// (POST /orders/{id}/assign_courier)
	AssignCourier(ctx echo.Context, id openapi_types.UUID) error
	// (GET /admin/cod/pending)
	GetPendingCODOrders(ctx echo.Context) error
	// (POST /admin/cod/{id}/decision)
	DecideCODOrder(ctx echo.Context, id openapi_types.UUID) error
	// (GET /admin/geocode/failed_jobs)
	GetFailedGeocodeJobs(ctx echo.Context) error
	// (POST /admin/geocode/manual_update)
	ManualUpdateLocation(ctx echo.Context) error
	// (PUT /admin/customers/{id})
	UpsertCustomer(ctx echo.Context, id openapi_types.UUID) error
	// (GET /couriers)
	GetCouriers(ctx echo.Context) error
	// (POST /couriers)
	CreateCourier(ctx echo.Context) error
	// (POST /couriers/{id}/availability)
	SetCourierAvailability(ctx echo.Context, id openapi_types.UUID) error
	// (POST /loyalty/redeem)
	RedeemPoints(ctx echo.Context) error
	// (POST /loyalty/bonus)
	AwardBonus(ctx echo.Context) error
	// (GET /loyalty/{account_id})
	GetLoyaltyAccount(ctx echo.Context, accountID openapi_types.UUID, params GetLoyaltyAccountParams) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func bindUUID(ctx echo.Context, name string) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return id, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return id, nil
}

func (w *ServerInterfaceWrapper) CreateOrder(ctx echo.Context) error {
	return w.Handler.CreateOrder(ctx)
}

func (w *ServerInterfaceWrapper) GetActiveOrders(ctx echo.Context) error {
	return w.Handler.GetActiveOrders(ctx)
}

func (w *ServerInterfaceWrapper) GetOrder(ctx echo.Context) error {
	id, err := bindUUID(ctx, "id")
	if err != nil {
		return err
	}
	return w.Handler.GetOrder(ctx, id)
}

func (w *ServerInterfaceWrapper) TransitionOrder(ctx echo.Context) error {
	id, err := bindUUID(ctx, "id")
	if err != nil {
		return err
	}
	return w.Handler.TransitionOrder(ctx, id)
}

func (w *ServerInterfaceWrapper) AssignCourier(ctx echo.Context) error {
	id, err := bindUUID(ctx, "id")
	if err != nil {
		return err
	}
	return w.Handler.AssignCourier(ctx, id)
}

func (w *ServerInterfaceWrapper) GetPendingCODOrders(ctx echo.Context) error {
	return w.Handler.GetPendingCODOrders(ctx)
}

func (w *ServerInterfaceWrapper) DecideCODOrder(ctx echo.Context) error {
	id, err := bindUUID(ctx, "id")
	if err != nil {
		return err
	}
	return w.Handler.DecideCODOrder(ctx, id)
}

func (w *ServerInterfaceWrapper) GetFailedGeocodeJobs(ctx echo.Context) error {
	return w.Handler.GetFailedGeocodeJobs(ctx)
}

func (w *ServerInterfaceWrapper) ManualUpdateLocation(ctx echo.Context) error {
	return w.Handler.ManualUpdateLocation(ctx)
}

func (w *ServerInterfaceWrapper) UpsertCustomer(ctx echo.Context) error {
	id, err := bindUUID(ctx, "id")
	if err != nil {
		return err
	}
	return w.Handler.UpsertCustomer(ctx, id)
}

func (w *ServerInterfaceWrapper) GetCouriers(ctx echo.Context) error {
	return w.Handler.GetCouriers(ctx)
}

func (w *ServerInterfaceWrapper) CreateCourier(ctx echo.Context) error {
	return w.Handler.CreateCourier(ctx)
}

func (w *ServerInterfaceWrapper) SetCourierAvailability(ctx echo.Context) error {
	id, err := bindUUID(ctx, "id")
	if err != nil {
		return err
	}
	return w.Handler.SetCourierAvailability(ctx, id)
}

func (w *ServerInterfaceWrapper) RedeemPoints(ctx echo.Context) error {
	return w.Handler.RedeemPoints(ctx)
}

func (w *ServerInterfaceWrapper) AwardBonus(ctx echo.Context) error {
	return w.Handler.AwardBonus(ctx)
}

func (w *ServerInterfaceWrapper) GetLoyaltyAccount(ctx echo.Context) error {
	accountID, err := bindUUID(ctx, "account_id")
	if err != nil {
		return err
	}

	var params GetLoyaltyAccountParams
	err = runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &params.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter limit: %s", err))
	}

	return w.Handler.GetLoyaltyAccount(ctx, accountID, params)
}

// EchoRouter is satisfied by *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers mounts si at the root of router.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// RegisterHandlersWithBaseURL mounts si under baseURL, e.g. "/api/v1".
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	w := ServerInterfaceWrapper{Handler: si}

	router.POST(baseURL+"/orders", w.CreateOrder)
	router.GET(baseURL+"/orders/active", w.GetActiveOrders)
	router.GET(baseURL+"/orders/:id", w.GetOrder)
	router.POST(baseURL+"/orders/:id/status", w.TransitionOrder)
	router.POST(baseURL+"/orders/:id/assign_courier", w.AssignCourier)
	router.GET(baseURL+"/admin/cod/pending", w.GetPendingCODOrders)
	router.POST(baseURL+"/admin/cod/:id/decision", w.DecideCODOrder)
	router.GET(baseURL+"/admin/geocode/failed_jobs", w.GetFailedGeocodeJobs)
	router.POST(baseURL+"/admin/geocode/manual_update", w.ManualUpdateLocation)
	router.PUT(baseURL+"/admin/customers/:id", w.UpsertCustomer)
	router.GET(baseURL+"/couriers", w.GetCouriers)
	router.POST(baseURL+"/couriers", w.CreateCourier)
	router.POST(baseURL+"/couriers/:id/availability", w.SetCourierAvailability)
	router.POST(baseURL+"/loyalty/redeem", w.RedeemPoints)
	router.POST(baseURL+"/loyalty/bonus", w.AwardBonus)
	router.GET(baseURL+"/loyalty/:account_id", w.GetLoyaltyAccount)
}
