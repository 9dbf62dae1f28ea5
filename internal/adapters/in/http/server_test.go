package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apihttp "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/risk"
	"fulfillment/internal/generated/servers"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type mockHandler[In, Out any] struct {
	mock.Mock
}

func (m *mockHandler[In, Out]) Handle(ctx context.Context, in In) (Out, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(Out)
	return out, args.Error(1)
}

type mockCommandHandler[In any] struct {
	mock.Mock
}

func (m *mockCommandHandler[In]) Handle(ctx context.Context, in In) error {
	return m.Called(ctx, in).Error(0)
}

type api struct {
	e *echo.Echo

	createOrder    *mockHandler[commands.CreateOrderCommand, commands.CreateOrderResult]
	transition     *mockHandler[commands.TransitionOrderCommand, commands.TransitionResult]
	assign         *mockHandler[commands.AssignCourierCommand, commands.AssignCourierResult]
	decide         *mockHandler[commands.DecideCODOrderCommand, commands.DecisionResult]
	createCourier  *mockCommandHandler[commands.CreateCourierCommand]
	getOrder       *mockHandler[queries.GetOrderQuery, queries.GetOrderQueryResponse]
	activeOrders   *mockHandler[queries.GetActiveOrdersQuery, []queries.GetActiveOrdersQueryResponse]
	pendingCOD     *mockHandler[queries.GetPendingCODOrdersQuery, []queries.GetPendingCODOrdersQueryResponse]
	loyaltyAccount *mockHandler[queries.GetLoyaltyAccountQuery, queries.GetLoyaltyAccountQueryResponse]
}

func newAPI(t *testing.T) *api {
	t.Helper()
	a := &api{
		e:              echo.New(),
		createOrder:    new(mockHandler[commands.CreateOrderCommand, commands.CreateOrderResult]),
		transition:     new(mockHandler[commands.TransitionOrderCommand, commands.TransitionResult]),
		assign:         new(mockHandler[commands.AssignCourierCommand, commands.AssignCourierResult]),
		decide:         new(mockHandler[commands.DecideCODOrderCommand, commands.DecisionResult]),
		createCourier:  new(mockCommandHandler[commands.CreateCourierCommand]),
		getOrder:       new(mockHandler[queries.GetOrderQuery, queries.GetOrderQueryResponse]),
		activeOrders:   new(mockHandler[queries.GetActiveOrdersQuery, []queries.GetActiveOrdersQueryResponse]),
		pendingCOD:     new(mockHandler[queries.GetPendingCODOrdersQuery, []queries.GetPendingCODOrdersQueryResponse]),
		loyaltyAccount: new(mockHandler[queries.GetLoyaltyAccountQuery, queries.GetLoyaltyAccountQueryResponse]),
	}

	srv := apihttp.NewServer(apihttp.Handlers{
		CreateOrder:         a.createOrder,
		TransitionOrder:     a.transition,
		AssignCourier:       a.assign,
		DecideCODOrder:      a.decide,
		CreateCourier:       a.createCourier,
		GetOrder:            a.getOrder,
		GetActiveOrders:     a.activeOrders,
		GetPendingCODOrders: a.pendingCOD,
		GetLoyaltyAccount:   a.loyaltyAccount,
	}, func() time.Time { return now }, nil)

	doc, err := servers.GetSwagger()
	require.NoError(t, err)
	validator, err := apihttp.RequestValidator(doc, "/api/v1")
	require.NoError(t, err)

	a.e.HTTPErrorHandler = apihttp.ErrorHandler(a.e)
	a.e.Use(apihttp.Metrics(), validator)
	servers.RegisterHandlersWithBaseURL(a.e, srv, "/api/v1")
	return a
}

func (a *api) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) servers.Error {
	t.Helper()
	var body servers.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateOrder(t *testing.T) {
	a := newAPI(t)
	customerID := kernel.NewUUID()
	deadline := now.Add(30 * time.Minute)
	level := risk.Low

	a.createOrder.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreateOrderCommand) bool {
		return cmd.CustomerID() == customerID &&
			cmd.PaymentMethod() == order.COD &&
			len(cmd.Items()) == 1 &&
			cmd.Pin() != nil &&
			cmd.RedeemPoints() == 0
	})).Return(commands.CreateOrderResult{
		OrderID:              kernel.NewUUID(),
		Status:               order.WaitingConfirmation,
		Subtotal:             decimal.NewFromInt(35000),
		DeliveryFee:          decimal.NewFromInt(10000),
		Discount:             decimal.Zero,
		Total:                decimal.NewFromInt(45000),
		GeocodeStatus:        delivery.Resolved,
		RiskLevel:            &level,
		ConfirmationDeadline: &deadline,
	}, nil).Once()

	rec := a.do(t, http.MethodPost, "/api/v1/orders", `{
		"customer_id": "`+customerID.String()+`",
		"payment_method": "cod",
		"items": [{"product_id": "latte", "name": "Iced Latte", "quantity": 2, "unit_price": "17500"}],
		"address": "Jl. Ijen 12, Malang",
		"pin": {"lat": -7.98, "lng": 112.63}
	}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var placed servers.PlacedOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))
	assert.Equal(t, "waiting_confirmation", placed.Status)
	assert.True(t, decimal.NewFromInt(45000).Equal(placed.Total))
	require.NotNil(t, placed.RiskLevel)
	assert.Equal(t, "low", *placed.RiskLevel)
	a.createOrder.AssertExpectations(t)
}

func TestCreateOrder_RejectedByRequestValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no items", body: `{"customer_id": "` + kernel.NewUUID().String() + `", "payment_method": "cod", "items": [], "address": "x"}`},
		{name: "unknown method", body: `{"customer_id": "` + kernel.NewUUID().String() + `", "payment_method": "cash", "items": [{"product_id": "a", "name": "A", "quantity": 1, "unit_price": "1"}], "address": "x"}`},
		{name: "pin out of range", body: `{"customer_id": "` + kernel.NewUUID().String() + `", "payment_method": "cod", "items": [{"product_id": "a", "name": "A", "quantity": 1, "unit_price": "1"}], "address": "x", "pin": {"lat": 91, "lng": 0}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAPI(t)

			rec := a.do(t, http.MethodPost, "/api/v1/orders", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, errs.KindValidation, decodeError(t, rec).Kind)
			a.createOrder.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
		})
	}
}

func TestGetOrder_Errors(t *testing.T) {
	a := newAPI(t)
	missing := kernel.NewUUID()
	a.getOrder.On("Handle", mock.Anything, mock.Anything).
		Return(queries.GetOrderQueryResponse{}, errs.NewObjectNotFoundError("order", missing)).Once()

	rec := a.do(t, http.MethodGet, "/api/v1/orders/"+missing.String(), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errs.KindNotFound, decodeError(t, rec).Kind)

	rec = a.do(t, http.MethodGet, "/api/v1/orders/not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errs.KindValidation, decodeError(t, rec).Kind)
}

func TestGetOrder_Detail(t *testing.T) {
	a := newAPI(t)
	id := kernel.NewUUID()
	confirmed := now.Add(time.Minute)
	lat, lng := -7.98, 112.63
	a.getOrder.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOrderQuery) bool {
		return q.OrderID() == id
	})).Return(queries.GetOrderQueryResponse{
		ID:            id,
		CustomerID:    kernel.NewUUID(),
		PaymentMethod: order.Online,
		Status:        order.Queueing,
		PlacedAt:      now,
		ConfirmedAt:   &confirmed,
		Location:      &queries.LocationView{Status: delivery.Resolved, Lat: &lat, Lng: &lng, Attempts: 1},
	}, nil).Once()

	rec := a.do(t, http.MethodGet, "/api/v1/orders/"+id.String(), "")

	require.Equal(t, http.StatusOK, rec.Code)
	var detail servers.OrderDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "queueing", detail.Status)
	assert.Equal(t, confirmed, detail.Timestamps["confirmed_at"])
	assert.NotContains(t, detail.Timestamps, "cancelled_at")
	require.NotNil(t, detail.Location)
	assert.Equal(t, "resolved", detail.Location.Status)
	assert.Nil(t, detail.Courier)
	assert.Nil(t, detail.Risk)
}

func TestTransitionOrder_InvalidEdge(t *testing.T) {
	a := newAPI(t)
	id := kernel.NewUUID()
	a.transition.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.TransitionOrderCommand) bool {
		return cmd.OrderID() == id && cmd.Target() == order.Preparing && cmd.Actor() == "staff"
	})).Return(commands.TransitionResult{},
		errs.NewStateTransitionError("waiting_confirmation", "preparing", "edge is not allowed")).Once()

	rec := a.do(t, http.MethodPost, "/api/v1/orders/"+id.String()+"/status", `{"status": "preparing"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, errs.KindStateTransition, body.Kind)
	assert.Contains(t, body.Message, "preparing")
	a.transition.AssertExpectations(t)
}

func TestAssignCourier_AutoModeWithoutBody(t *testing.T) {
	a := newAPI(t)
	id := kernel.NewUUID()
	courierID := kernel.NewUUID()
	a.assign.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.AssignCourierCommand) bool {
		return cmd.OrderID() == id && cmd.CourierID() == nil
	})).Return(commands.AssignCourierResult{
		OrderID:      id,
		CourierID:    courierID,
		AssignmentID: kernel.NewUUID(),
	}, nil).Once()

	rec := a.do(t, http.MethodPost, "/api/v1/orders/"+id.String()+"/assign_courier", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res servers.Assignment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, courierID.String(), res.CourierID.String())
	assert.Nil(t, res.ReleasedCourierID)
}

func TestAssignCourier_NoCourier(t *testing.T) {
	a := newAPI(t)
	id := kernel.NewUUID()
	a.assign.On("Handle", mock.Anything, mock.Anything).
		Return(commands.AssignCourierResult{}, fmt.Errorf("%w: %w",
			commands.ErrNoCourierAvailable, errs.NewConcurrencyConflictError("courier", kernel.NewUUID().String()))).Once()

	rec := a.do(t, http.MethodPost, "/api/v1/orders/"+id.String()+"/assign_courier", `{}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, errs.KindConcurrencyConflict, decodeError(t, rec).Kind)
}

func TestDecideCODOrder_RejectIsNotAnError(t *testing.T) {
	a := newAPI(t)
	id := kernel.NewUUID()
	a.decide.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.DecideCODOrderCommand) bool {
		return cmd.Action() == risk.Reject && cmd.IsFraud() && cmd.Actor() == "admin"
	})).Return(commands.DecisionResult{
		OrderID:   id,
		Action:    risk.Reject,
		Status:    order.Cancelled,
		RiskLevel: risk.High,
		Rejection: errs.NewRiskRejectionError(id.String(), "fake address", true),
	}, nil).Once()

	rec := a.do(t, http.MethodPost, "/api/v1/admin/cod/"+id.String()+"/decision",
		`{"action": "reject", "reason": "fake address", "is_fraud": true}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var outcome servers.DecisionOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.Equal(t, "cancelled", outcome.Status)
	assert.Equal(t, "high", outcome.RiskLevel)
	require.NotNil(t, outcome.Rejection)
	assert.Equal(t, errs.KindRiskRejection, outcome.Rejection.Kind)
}

func TestDecideCODOrder_Expired(t *testing.T) {
	a := newAPI(t)
	id := kernel.NewUUID()
	a.decide.On("Handle", mock.Anything, mock.Anything).
		Return(commands.DecisionResult{}, errs.NewExpiryViolationError(id.String(), now)).Once()

	rec := a.do(t, http.MethodPost, "/api/v1/admin/cod/"+id.String()+"/decision", `{"action": "approve"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, errs.KindExpiryViolation, decodeError(t, rec).Kind)
}

func TestGetPendingCODOrders_UsesClock(t *testing.T) {
	a := newAPI(t)
	a.pendingCOD.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetPendingCODOrdersQuery) bool {
		return q.Now().Equal(now)
	})).Return([]queries.GetPendingCODOrdersQueryResponse{}, nil).Once()

	rec := a.do(t, http.MethodGet, "/api/v1/admin/cod/pending", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	a.pendingCOD.AssertExpectations(t)
}

func TestGetActiveOrders_InternalErrorIsHidden(t *testing.T) {
	a := newAPI(t)
	a.activeOrders.On("Handle", mock.Anything, mock.Anything).
		Return([]queries.GetActiveOrdersQueryResponse(nil), errors.New("pq: connection refused")).Once()

	rec := a.do(t, http.MethodGet, "/api/v1/orders/active", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, errs.KindInternal, body.Kind)
	assert.NotContains(t, body.Message, "connection refused")
}

func TestCreateCourier(t *testing.T) {
	a := newAPI(t)
	a.createCourier.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreateCourierCommand) bool {
		return cmd.Name() == "Budi" && cmd.VehicleType() == "bicycle"
	})).Return(nil).Once()

	rec := a.do(t, http.MethodPost, "/api/v1/couriers", `{"name": "Budi", "phone": "+62811000001", "vehicle_type": "bicycle"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	a.createCourier.AssertExpectations(t)
}

func TestGetLoyaltyAccount_Limit(t *testing.T) {
	a := newAPI(t)
	id := kernel.NewUUID()
	a.loyaltyAccount.On("Handle", mock.Anything, mock.Anything).
		Return(queries.GetLoyaltyAccountQueryResponse{AccountID: id, History: []queries.LedgerEntry{}}, nil).Once()

	rec := a.do(t, http.MethodGet, "/api/v1/loyalty/"+id.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"account_id": "`+id.String()+`", "balance": 0, "history": []}`, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/v1/loyalty/"+id.String()+"?limit=500", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	a.loyaltyAccount.AssertNumberOfCalls(t, "Handle", 1)
}

func TestUnknownRoute(t *testing.T) {
	a := newAPI(t)

	rec := a.do(t, http.MethodGet, "/api/v1/nowhere", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errs.KindNotFound, decodeError(t, rec).Kind)
}

func TestMetrics_ObservesRequests(t *testing.T) {
	a := newAPI(t)
	a.activeOrders.On("Handle", mock.Anything, mock.Anything).
		Return([]queries.GetActiveOrdersQueryResponse{}, nil).Once()

	a.do(t, http.MethodGet, "/api/v1/orders/active", "")

	assert.Positive(t, testutil.CollectAndCount(metrics.HTTPRequestDuration))
}
