package commands_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/loyalty"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type MockGeocoder struct{ mock.Mock }

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (kernel.GeoPoint, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(kernel.GeoPoint), args.Error(1)
}

// env wires every handler to one memStore and one clock.
type env struct {
	store    *memStore
	clock    *testClock
	geocoder *MockGeocoder
	fees     services.FeeCalculator
	engine   services.RiskEngine

	createOrder  commands.CreateOrderCommandHandler
	transition   commands.TransitionOrderCommandHandler
	decide       commands.DecideCODOrderCommandHandler
	assign       commands.AssignCourierCommandHandler
	dispatch     commands.DispatchPendingOrdersCommandHandler
	resolve      commands.ResolveGeocodeCommandHandler
	resolveAll   commands.ResolvePendingLocationsCommandHandler
	manualUpdate commands.ManualUpdateLocationCommandHandler
	expire       commands.ExpireOrdersCommandHandler
	redeem       commands.RedeemPointsCommandHandler
	bonus        commands.AwardBonusCommandHandler
	upsert       commands.UpsertCustomerCommandHandler
}

func point(t *testing.T, lat, lng float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)
	return p
}

func newEnv(t *testing.T, riskSettings commands.RiskSettings) *env {
	t.Helper()

	fees, err := services.NewFeeCalculator(services.DeliveryPolicy{
		Store:                 point(t, -7.9666, 112.6326),
		MaxRadiusKm:           10,
		FlatFee:               decimal.NewFromInt(10000),
		FreeDeliveryThreshold: decimal.NewFromInt(100000),
	})
	require.NoError(t, err)
	engine, err := services.NewRiskEngine(services.DefaultRiskPolicy())
	require.NoError(t, err)

	e := &env{
		store:    newMemStore(),
		clock:    &testClock{now: start},
		geocoder: new(MockGeocoder),
		fees:     fees,
		engine:   engine,
	}
	clock := e.clock.Now
	policy := loyalty.DefaultPolicy()
	geocode := commands.GeocodeSettings{MaxAttempts: 3, Backoff: time.Minute, Timeout: time.Second}

	e.createOrder = commands.NewCreateOrderCommandHandler(e.store, fees, engine, policy, riskSettings, 30*time.Minute, clock)
	e.transition = commands.NewTransitionOrderCommandHandler(e.store, policy, clock)
	e.decide = commands.NewDecideCODOrderCommandHandler(e.store, riskSettings, clock)
	e.assign = commands.NewAssignCourierCommandHandler(e.store, clock)
	e.dispatch = commands.NewDispatchPendingOrdersCommandHandler(e.store, clock)
	e.resolve = commands.NewResolveGeocodeCommandHandler(e.store, e.geocoder, fees, engine, riskSettings, geocode, clock)
	e.resolveAll = commands.NewResolvePendingLocationsCommandHandler(e.store, e.resolve, clock)
	e.manualUpdate = commands.NewManualUpdateLocationCommandHandler(e.store, fees, engine, riskSettings, clock)
	e.expire = commands.NewExpireOrdersCommandHandler(e.store, clock)
	e.redeem = commands.NewRedeemPointsCommandHandler(e.store.loyaltyFactory(), policy, clock)
	e.bonus = commands.NewAwardBonusCommandHandler(e.store.loyaltyFactory(), clock)
	e.upsert = commands.NewUpsertCustomerCommandHandler(e.store.customerFactory())
	return e
}

// latteItems is 2 × 17500 = 35000.
func latteItems(t *testing.T) []order.Item {
	t.Helper()
	item, err := order.NewItem("latte", "Iced Latte", 2, decimal.NewFromInt(17500))
	require.NoError(t, err)
	return []order.Item{item}
}

type checkout struct {
	customerID kernel.UUID
	method     order.PaymentMethod
	pin        *kernel.GeoPoint
	redeem     int64
}

func (e *env) checkout(t *testing.T, c checkout) (commands.CreateOrderResult, error) {
	t.Helper()
	if c.method == "" {
		c.method = order.COD
	}
	cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), c.customerID, c.method,
		latteItems(t), "Jl. Ijen 12, Malang", c.pin, c.redeem)
	require.NoError(t, err)
	return e.createOrder.Handle(t.Context(), cmd)
}

func (e *env) mustCheckout(t *testing.T, c checkout) commands.CreateOrderResult {
	t.Helper()
	res, err := e.checkout(t, c)
	require.NoError(t, err)
	return res
}

func (e *env) move(t *testing.T, id kernel.UUID, target order.Status) (commands.TransitionResult, error) {
	t.Helper()
	cmd, err := commands.NewTransitionOrderCommand(id, target, "staff:ari", "")
	require.NoError(t, err)
	return e.transition.Handle(t.Context(), cmd)
}

func (e *env) approve(t *testing.T, id kernel.UUID, acknowledge bool) (commands.DecisionResult, error) {
	t.Helper()
	cmd, err := commands.NewDecideCODOrderCommand(id, commands.DecisionInput{
		Action:              "approve",
		Actor:               "admin:rina",
		AcknowledgeHighRisk: acknowledge,
	})
	require.NoError(t, err)
	return e.decide.Handle(t.Context(), cmd)
}

func (e *env) assignTo(t *testing.T, id kernel.UUID, courierID *kernel.UUID) (commands.AssignCourierResult, error) {
	t.Helper()
	cmd, err := commands.NewAssignCourierCommand(id, courierID)
	require.NoError(t, err)
	return e.assign.Handle(t.Context(), cmd)
}

func pinNearStore(t *testing.T) *kernel.GeoPoint {
	t.Helper()
	p := point(t, -7.98, 112.63)
	return &p
}
