package cmd

import (
	"log/slog"

	apihttp "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/loyalty"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	geocoder   ports.Geocoder
	locker     ports.JobLocker
	logger     *slog.Logger

	fees    services.FeeCalculator
	engine  services.RiskEngine
	loyalty loyalty.Policy
}

// NewCompositionRoot validates the business configuration and wires the
// adapters. locker may be nil.
func NewCompositionRoot(
	cfg Config,
	gormDB *gorm.DB,
	publisher ports.EventPublisher,
	geocoder ports.Geocoder,
	locker ports.JobLocker,
	logger *slog.Logger,
) (*CompositionRoot, error) {
	deliveryPolicy, err := cfg.Delivery.Policy()
	if err != nil {
		return nil, err
	}
	fees, err := services.NewFeeCalculator(deliveryPolicy)
	if err != nil {
		return nil, err
	}
	engine, err := services.NewRiskEngine(cfg.Risk.Policy())
	if err != nil {
		return nil, err
	}
	loyaltyPolicy, err := cfg.Loyalty.Policy()
	if err != nil {
		return nil, err
	}

	return &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB, publisher, logger),
		geocoder:   geocoder,
		locker:     locker,
		logger:     logger,
		fees:       fees,
		engine:     engine,
		loyalty:    loyaltyPolicy,
	}, nil
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.uow(), c.fees, c.engine, c.loyalty,
		c.cfg.Risk.Settings(), c.cfg.Risk.ConfirmationWindow, commands.SystemClock)
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() commands.TransitionOrderCommandHandler {
	return commands.NewTransitionOrderCommandHandler(c.uow(), c.loyalty, commands.SystemClock)
}

func (c *CompositionRoot) CreateDecideCODOrderCommandHandler() commands.DecideCODOrderCommandHandler {
	return commands.NewDecideCODOrderCommandHandler(c.uow(), c.cfg.Risk.Settings(), commands.SystemClock)
}

func (c *CompositionRoot) CreateAssignCourierCommandHandler() commands.AssignCourierCommandHandler {
	return commands.NewAssignCourierCommandHandler(c.uow(), commands.SystemClock)
}

func (c *CompositionRoot) CreateDispatchPendingOrdersCommandHandler() commands.DispatchPendingOrdersCommandHandler {
	return commands.NewDispatchPendingOrdersCommandHandler(c.uow(), commands.SystemClock)
}

func (c *CompositionRoot) CreateResolveGeocodeCommandHandler() commands.ResolveGeocodeCommandHandler {
	return commands.NewResolveGeocodeCommandHandler(c.uow(), c.geocoder, c.fees, c.engine,
		c.cfg.Risk.Settings(), c.cfg.Geocode.Settings(), commands.SystemClock)
}

func (c *CompositionRoot) CreateResolvePendingLocationsCommandHandler() commands.ResolvePendingLocationsCommandHandler {
	return commands.NewResolvePendingLocationsCommandHandler(c.uow(), c.CreateResolveGeocodeCommandHandler(), commands.SystemClock)
}

func (c *CompositionRoot) CreateManualUpdateLocationCommandHandler() commands.ManualUpdateLocationCommandHandler {
	return commands.NewManualUpdateLocationCommandHandler(c.uow(), c.fees, c.engine, c.cfg.Risk.Settings(), commands.SystemClock)
}

func (c *CompositionRoot) CreateExpireOrdersCommandHandler() commands.ExpireOrdersCommandHandler {
	return commands.NewExpireOrdersCommandHandler(c.uow(), commands.SystemClock)
}

func (c *CompositionRoot) CreateRedeemPointsCommandHandler() commands.RedeemPointsCommandHandler {
	var f commands.LoyaltyUoWFactory = FuncLoyaltyUoWFactory(func() commands.LoyaltyUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRedeemPointsCommandHandler(f, c.loyalty, commands.SystemClock)
}

func (c *CompositionRoot) CreateAwardBonusCommandHandler() commands.AwardBonusCommandHandler {
	var f commands.LoyaltyUoWFactory = FuncLoyaltyUoWFactory(func() commands.LoyaltyUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAwardBonusCommandHandler(f, commands.SystemClock)
}

func (c *CompositionRoot) CreateUpsertCustomerCommandHandler() commands.UpsertCustomerCommandHandler {
	var f commands.CustomerUoWFactory = FuncCustomerUoWFactory(func() commands.CustomerUoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpsertCustomerCommandHandler(f)
}

func (c *CompositionRoot) CreateCreateCourierCommandHandler() commands.CreateCourierCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateCourierCommandHandler(f)
}

func (c *CompositionRoot) CreateSetCourierAvailabilityCommandHandler() commands.SetCourierAvailabilityCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSetCourierAvailabilityCommandHandler(f)
}

// HTTPHandlers collects every use case served by the REST API.
func (c *CompositionRoot) HTTPHandlers() apihttp.Handlers {
	return apihttp.Handlers{
		CreateOrder:            c.CreateCreateOrderCommandHandler(),
		TransitionOrder:        c.CreateTransitionOrderCommandHandler(),
		AssignCourier:          c.CreateAssignCourierCommandHandler(),
		DecideCODOrder:         c.CreateDecideCODOrderCommandHandler(),
		ManualUpdateLocation:   c.CreateManualUpdateLocationCommandHandler(),
		UpsertCustomer:         c.CreateUpsertCustomerCommandHandler(),
		CreateCourier:          c.CreateCreateCourierCommandHandler(),
		SetCourierAvailability: c.CreateSetCourierAvailabilityCommandHandler(),
		RedeemPoints:           c.CreateRedeemPointsCommandHandler(),
		AwardBonus:             c.CreateAwardBonusCommandHandler(),

		GetActiveOrders:      queries.NewGetActiveOrdersQueryHandler(c.gormDB),
		GetOrder:             queries.NewGetOrderQueryHandler(c.gormDB),
		GetPendingCODOrders:  queries.NewGetPendingCODOrdersQueryHandler(c.gormDB),
		GetFailedGeocodeJobs: queries.NewGetFailedGeocodeJobsQueryHandler(c.gormDB),
		GetAllCouriers:       queries.NewGetAllCouriersQueryHandler(c.gormDB),
		GetLoyaltyAccount:    queries.NewGetLoyaltyAccountQueryHandler(c.gormDB),
	}
}

func (c *CompositionRoot) CreateServer() *apihttp.Server {
	return apihttp.NewServer(c.HTTPHandlers(), commands.SystemClock, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateResolvePendingLocationsCommandHandler(),
		c.CreateDispatchPendingOrdersCommandHandler(),
		c.CreateExpireOrdersCommandHandler(),
		c.cfg.Jobs.Settings(),
		c.locker,
		c.logger,
	)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncCustomerUoWFactory func() commands.CustomerUoW

func (f FuncCustomerUoWFactory) Create() commands.CustomerUoW {
	return f()
}

type FuncLoyaltyUoWFactory func() commands.LoyaltyUoW

func (f FuncLoyaltyUoWFactory) Create() commands.LoyaltyUoW {
	return f()
}
