package commands

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/customer"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/risk"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// Actors recorded on transitions made by the service itself.
const (
	ActorAutoApprove    = "system:auto_approve"
	ActorExpiryWatchdog = "system:expiry_watchdog"
)

// RiskSettings configures how checkout and geocoding feed the risk engine.
type RiskSettings struct {
	// DefaultTrustScore is used for customers with no synced profile.
	DefaultTrustScore int
	// CancellationLookback is the window for counting recent cancellations.
	CancellationLookback time.Duration
	// AutoApproveLow approves low risk COD orders once their distance is
	// known: at checkout for a map pin, otherwise when the location resolves.
	AutoApproveLow bool
}

// DefaultRiskSettings returns a neutral trust of 50, a 30 day lookback and
// manual approval for every COD order.
func DefaultRiskSettings() RiskSettings {
	return RiskSettings{
		DefaultTrustScore:    50,
		CancellationLookback: 30 * 24 * time.Hour,
	}
}

type riskRepos interface {
	OrderRepoFactory
	CustomerRepoFactory
}

// loadProfile returns the stored profile, or an unsaved default one.
func loadProfile(ctx context.Context, repo ports.CustomerRepository, id kernel.UUID, defaultTrust int) (*customer.Customer, error) {
	c, err := repo.Get(ctx, id)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return customer.NewCustomer(id, defaultTrust, false)
	}
	return c, err
}

// assessRisk evaluates a COD order and attaches the snapshot to it.
func assessRisk(
	ctx context.Context,
	repos riskRepos,
	engine services.RiskEngine,
	settings RiskSettings,
	o *order.Order,
	distanceKm float64,
	now time.Time,
) (risk.Snapshot, error) {
	profile, err := loadProfile(ctx, repos.CustomerRepository(), o.CustomerID(), settings.DefaultTrustScore)
	if err != nil {
		return risk.Snapshot{}, err
	}

	cancellations, err := repos.OrderRepository().CountCancellationsSince(ctx, o.CustomerID(), now.Add(-settings.CancellationLookback))
	if err != nil {
		return risk.Snapshot{}, err
	}

	snapshot, err := engine.Evaluate(services.RiskInput{
		Amount:              o.Total(),
		CODLimit:            o.CODAmountLimit(),
		DistanceKm:          distanceKm,
		TrustScore:          profile.TrustScore(),
		RecentCancellations: cancellations,
		IsVerified:          profile.IsVerified(),
		FraudFlagged:        profile.FraudFlagged(),
	}, now)
	if err != nil {
		return risk.Snapshot{}, err
	}

	if err = o.AttachRiskAssessment(snapshot); err != nil {
		return risk.Snapshot{}, err
	}
	return snapshot, nil
}

// refreshRisk re-evaluates a COD order once its real distance is known and,
// with AutoApproveLow, approves it when the new level is low. It does nothing
// when the order already has a decision or left confirmation.
func refreshRisk(
	ctx context.Context,
	repos riskRepos,
	engine services.RiskEngine,
	settings RiskSettings,
	o *order.Order,
	distanceKm float64,
	now time.Time,
) (bool, error) {
	if o.PaymentMethod() != order.COD || o.Status() != order.WaitingConfirmation || o.RiskDecision() != nil {
		return false, nil
	}
	snapshot, err := assessRisk(ctx, repos, engine, settings, o, distanceKm, now)
	if err != nil {
		return false, err
	}
	if _, err = maybeAutoApprove(o, snapshot, settings, now); err != nil {
		return false, err
	}
	return true, nil
}

// maybeAutoApprove records a system approval and moves the order to queueing
// when AutoApproveLow is on and the snapshot is low risk. An order past its
// confirmation deadline is left to the expiry watchdog.
func maybeAutoApprove(o *order.Order, snapshot risk.Snapshot, settings RiskSettings, now time.Time) (bool, error) {
	if !settings.AutoApproveLow || snapshot.Level() != risk.Low || o.IsExpired(now) {
		return false, nil
	}
	decision, err := risk.NewApproval(ActorAutoApprove, false, now)
	if err != nil {
		return false, err
	}
	if err = o.RecordRiskDecision(decision); err != nil {
		return false, err
	}
	if err = o.Transition(order.Queueing, ActorAutoApprove, "low risk", order.Guards{}, now); err != nil {
		return false, err
	}
	return true, nil
}
