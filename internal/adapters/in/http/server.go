package http

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/customer"
	"fulfillment/internal/generated/servers"
)

// Handler is the shape shared by the command and query handlers the API calls.
type Handler[In, Out any] interface {
	Handle(ctx context.Context, in In) (Out, error)
}

// CommandHandler is a Handler without a result.
type CommandHandler[In any] interface {
	Handle(ctx context.Context, in In) error
}

// Handlers groups the use cases exposed over HTTP.
type Handlers struct {
	CreateOrder            Handler[commands.CreateOrderCommand, commands.CreateOrderResult]
	TransitionOrder        Handler[commands.TransitionOrderCommand, commands.TransitionResult]
	AssignCourier          Handler[commands.AssignCourierCommand, commands.AssignCourierResult]
	DecideCODOrder         Handler[commands.DecideCODOrderCommand, commands.DecisionResult]
	ManualUpdateLocation   Handler[commands.ManualUpdateLocationCommand, commands.ManualUpdateResult]
	UpsertCustomer         Handler[commands.UpsertCustomerCommand, *customer.Customer]
	CreateCourier          CommandHandler[commands.CreateCourierCommand]
	SetCourierAvailability CommandHandler[commands.SetCourierAvailabilityCommand]
	RedeemPoints           Handler[commands.RedeemPointsCommand, commands.LedgerResult]
	AwardBonus             Handler[commands.AwardBonusCommand, commands.LedgerResult]

	GetActiveOrders      Handler[queries.GetActiveOrdersQuery, []queries.GetActiveOrdersQueryResponse]
	GetOrder             Handler[queries.GetOrderQuery, queries.GetOrderQueryResponse]
	GetPendingCODOrders  Handler[queries.GetPendingCODOrdersQuery, []queries.GetPendingCODOrdersQueryResponse]
	GetFailedGeocodeJobs Handler[queries.GetFailedGeocodeJobsQuery, []queries.GetFailedGeocodeJobsQueryResponse]
	GetAllCouriers       Handler[queries.GetAllCouriersQuery, []queries.GetAllCouriersQueryResponse]
	GetLoyaltyAccount    Handler[queries.GetLoyaltyAccountQuery, queries.GetLoyaltyAccountQueryResponse]
}

// Default actors recorded when a request does not name one.
const (
	defaultStaffActor = "staff"
	defaultAdminActor = "admin"
	defaultHistory    = 50
)

var _ servers.ServerInterface = (*Server)(nil)

// Server implements servers.ServerInterface on top of the application use cases.
type Server struct {
	h      Handlers
	clock  commands.Clock
	logger *slog.Logger
}

// NewServer creates the API server. clock drives the "now" of the pending COD
// queue and defaults to the system clock.
func NewServer(h Handlers, clock commands.Clock, logger *slog.Logger) *Server {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		h:      h,
		clock:  clock,
		logger: logger.With("component", "http"),
	}
}
