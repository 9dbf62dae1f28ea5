package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/loyalty"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/risk"
	"fulfillment/internal/core/domain/services"

	"github.com/shopspring/decimal"
)

// CreateOrderResult summarizes the created order for the caller.
type CreateOrderResult struct {
	OrderID              kernel.UUID
	Status               order.Status
	Subtotal             decimal.Decimal
	DeliveryFee          decimal.Decimal
	Discount             decimal.Decimal
	Total                decimal.Decimal
	PointsRedeemed       int64
	DistanceKm           *float64
	GeocodeStatus        delivery.GeocodeStatus
	RiskLevel            *risk.Level
	ConfirmationDeadline *time.Time
}

// CreateOrderCommandHandler handles checkout.
//
// The checkout request never calls the geocoder: a map pin is checked
// against the delivery radius immediately, while an address-only location
// is stored Pending and checked by the background resolver. COD orders get
// a risk snapshot (distance 0 until the location resolves) and a
// confirmation deadline. Point redemption, if requested, is written in the
// same transaction as the order.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, fees, engine, loyalty.DefaultPolicy(),
//	    DefaultRiskSettings(), 30*time.Minute, SystemClock)
//	res, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrValueIsOutOfRange) {
//	    // outside the delivery radius or redemption over the cap
//	}
type CreateOrderCommandHandler struct {
	uowFactory         UoWFactory
	fees               services.FeeCalculator
	engine             services.RiskEngine
	loyaltyPolicy      loyalty.Policy
	riskSettings       RiskSettings
	confirmationWindow time.Duration
	clock              Clock
}

// NewCreateOrderCommandHandler creates a checkout handler.
func NewCreateOrderCommandHandler(
	uowFactory UoWFactory,
	fees services.FeeCalculator,
	engine services.RiskEngine,
	loyaltyPolicy loyalty.Policy,
	riskSettings RiskSettings,
	confirmationWindow time.Duration,
	clock Clock,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory:         uowFactory,
		fees:               fees,
		engine:             engine,
		loyaltyPolicy:      loyaltyPolicy,
		riskSettings:       riskSettings,
		confirmationWindow: confirmationWindow,
		clock:              orSystemClock(clock),
	}
}

// Handle validates, prices and persists the order.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (CreateOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return CreateOrderResult{}, err
	}

	now := h.clock()
	items := cmd.Items()
	subtotal := order.Subtotal(items)

	quote, err := h.fees.Quote(cmd.Pin(), subtotal)
	if err != nil {
		return CreateOrderResult{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return CreateOrderResult{}, err
	}
	defer rollback(ctx, uow)

	profile, err := loadProfile(ctx, uow.CustomerRepository(), cmd.CustomerID(), h.riskSettings.DefaultTrustScore)
	if err != nil {
		return CreateOrderResult{}, err
	}

	var (
		discount   = decimal.Zero
		account    *loyalty.Account
		redemption *loyalty.Transaction
	)
	if cmd.RedeemPoints() > 0 {
		account, err = uow.LoyaltyRepository().GetAccountForUpdate(ctx, cmd.CustomerID(), now)
		if err != nil {
			return CreateOrderResult{}, err
		}
		orderRef := cmd.OrderID()
		redemption, discount, err = account.Redeem(kernel.NewUUID(), cmd.RedeemPoints(), subtotal, &orderRef, h.loyaltyPolicy, now)
		if err != nil {
			return CreateOrderResult{}, err
		}
	}

	o, err := order.NewOrder(order.Draft{
		ID:                 cmd.OrderID(),
		CustomerID:         cmd.CustomerID(),
		PaymentMethod:      cmd.PaymentMethod(),
		Items:              items,
		Address:            cmd.Address(),
		DeliveryFee:        quote.Fee,
		Discount:           discount,
		CODAmountLimit:     h.engine.CODLimit(profile.IsVerified()),
		ConfirmationWindow: h.confirmationWindow,
		PlacedAt:           now,
	})
	if err != nil {
		return CreateOrderResult{}, err
	}

	var level *risk.Level
	if o.PaymentMethod() == order.COD {
		distance := 0.0
		if quote.DistanceKm != nil {
			distance = *quote.DistanceKm
		}
		snapshot, assessErr := assessRisk(ctx, uow, h.engine, h.riskSettings, o, distance, now)
		if assessErr != nil {
			return CreateOrderResult{}, assessErr
		}
		l := snapshot.Level()
		level = &l

		// without a pin the distance is unknown; the decision waits for the
		// location to resolve
		if quote.DistanceKm != nil {
			if _, err = maybeAutoApprove(o, snapshot, h.riskSettings, now); err != nil {
				return CreateOrderResult{}, err
			}
		}
	}

	var loc *delivery.Location
	if pin := cmd.Pin(); pin != nil {
		loc, err = delivery.NewResolvedLocation(o.ID(), o.Address(), *pin, now)
	} else {
		loc, err = delivery.NewPendingLocation(o.ID(), o.Address(), now)
	}
	if err != nil {
		return CreateOrderResult{}, err
	}

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return CreateOrderResult{}, err
	}
	if err = uow.LocationRepository().Add(ctx, loc); err != nil {
		return CreateOrderResult{}, err
	}
	if redemption != nil {
		if _, err = uow.LoyaltyRepository().Append(ctx, account, redemption); err != nil {
			return CreateOrderResult{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return CreateOrderResult{}, err
	}

	return CreateOrderResult{
		OrderID:              o.ID(),
		Status:               o.Status(),
		Subtotal:             o.Subtotal(),
		DeliveryFee:          o.DeliveryFee(),
		Discount:             o.Discount(),
		Total:                o.Total(),
		PointsRedeemed:       cmd.RedeemPoints(),
		DistanceKm:           quote.DistanceKm,
		GeocodeStatus:        loc.Status(),
		RiskLevel:            level,
		ConfirmationDeadline: o.ConfirmationDeadline(),
	}, nil
}
