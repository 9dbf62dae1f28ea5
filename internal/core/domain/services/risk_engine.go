package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"fulfillment/internal/core/domain/model/risk"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// RiskPolicy holds every coefficient of the COD risk score. None of them is
// a contract; they are tuned through configuration.
type RiskPolicy struct {
	CancellationPenaltyBase     float64
	CancellationPenaltyExponent float64
	VerifiedBonus               float64
	FarDistanceKm               float64
	DistancePenaltyPerKm        float64
	FraudFlagPenalty            float64
	LowRiskMinScore             float64
	MediumRiskMinScore          float64
	CODLimitDefault             decimal.Decimal
	CODLimitVerified            decimal.Decimal
}

// DefaultRiskPolicy returns the coefficients the service ships with.
func DefaultRiskPolicy() RiskPolicy {
	return RiskPolicy{
		CancellationPenaltyBase:     10,
		CancellationPenaltyExponent: 1.5,
		VerifiedBonus:               10,
		FarDistanceKm:               5,
		DistancePenaltyPerKm:        2,
		FraudFlagPenalty:            40,
		LowRiskMinScore:             70,
		MediumRiskMinScore:          40,
		CODLimitDefault:             decimal.NewFromInt(500000),
		CODLimitVerified:            decimal.NewFromInt(1500000),
	}
}

// RiskInput is everything the engine reads about one COD order.
type RiskInput struct {
	Amount              decimal.Decimal
	CODLimit            decimal.Decimal
	DistanceKm          float64
	TrustScore          int
	RecentCancellations int
	IsVerified          bool
	FraudFlagged        bool
}

// RiskEngine scores COD orders.
//
// Scoring:
//
//	score = trust
//	      − CancellationPenaltyBase × n^CancellationPenaltyExponent
//	      + VerifiedBonus                                  (verified only)
//	      − max(0, distance − FarDistanceKm) × DistancePenaltyPerKm
//	      − FraudFlagPenalty                               (flagged only)
//
// Level: score ≥ LowRiskMinScore → low, ≥ MediumRiskMinScore → medium,
// otherwise high. An amount above the COD limit is high regardless.
type RiskEngine struct {
	policy RiskPolicy
}

// NewRiskEngine validates policy. The cancellation exponent must be above 1
// so that each further cancellation costs more than the one before.
func NewRiskEngine(policy RiskPolicy) (RiskEngine, error) {
	var problems []error
	if policy.MediumRiskMinScore > policy.LowRiskMinScore {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("risk_thresholds",
			fmt.Errorf("medium threshold %v is above low threshold %v", policy.MediumRiskMinScore, policy.LowRiskMinScore)))
	}
	if policy.CancellationPenaltyExponent <= 1 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("cancellation_penalty_exponent",
			policy.CancellationPenaltyExponent, "1 (exclusive)", "∞"))
	}
	if !policy.CODLimitDefault.IsPositive() || !policy.CODLimitVerified.IsPositive() {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("cod_limit", errors.New("limits must be greater than 0")))
	}
	if err := errors.Join(problems...); err != nil {
		return RiskEngine{}, err
	}
	return RiskEngine{policy: policy}, nil
}

// CODLimit returns the amount above which a COD order is always high risk.
func (e RiskEngine) CODLimit(isVerified bool) decimal.Decimal {
	if isVerified {
		return e.policy.CODLimitVerified
	}
	return e.policy.CODLimitDefault
}

// Score applies the scoring formula, rounded to 2 decimals.
func (e RiskEngine) Score(in RiskInput) float64 {
	p := e.policy
	score := float64(in.TrustScore)

	if in.RecentCancellations > 0 {
		score -= p.CancellationPenaltyBase * math.Pow(float64(in.RecentCancellations), p.CancellationPenaltyExponent)
	}
	if in.IsVerified {
		score += p.VerifiedBonus
	}
	if over := in.DistanceKm - p.FarDistanceKm; over > 0 {
		score -= over * p.DistancePenaltyPerKm
	}
	if in.FraudFlagged {
		score -= p.FraudFlagPenalty
	}

	return math.Round(score*100) / 100
}

// Level maps a score to a risk level.
func (e RiskEngine) Level(score float64) risk.Level {
	switch {
	case score >= e.policy.LowRiskMinScore:
		return risk.Low
	case score >= e.policy.MediumRiskMinScore:
		return risk.Medium
	default:
		return risk.High
	}
}

// Evaluate scores the order and freezes the result in a Snapshot.
func (e RiskEngine) Evaluate(in RiskInput, at time.Time) (risk.Snapshot, error) {
	if in.Amount.IsNegative() {
		return risk.Snapshot{}, errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%s is negative", in.Amount))
	}
	limit := in.CODLimit
	if !limit.IsPositive() {
		limit = e.CODLimit(in.IsVerified)
	}

	score := e.Score(in)
	level := e.Level(score)
	overLimit := in.Amount.GreaterThan(limit)
	if overLimit {
		level = risk.High
	}

	return risk.NewSnapshot(risk.SnapshotInput{
		TrustScore:          in.TrustScore,
		RecentCancellations: in.RecentCancellations,
		DistanceKm:          in.DistanceKm,
		IsVerified:          in.IsVerified,
		FraudFlagged:        in.FraudFlagged,
		OverLimit:           overLimit,
		Score:               score,
		Level:               level,
		EvaluatedAt:         at,
	})
}
