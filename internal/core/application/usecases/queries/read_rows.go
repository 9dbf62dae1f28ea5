package queries

import (
	"time"

	"fulfillment/internal/core/domain/model/risk"
)

// riskColumns selects the flattened risk snapshot of alias o.
const riskColumns = `
	o.risk_level,
	o.risk_score,
	o.risk_trust_score,
	o.risk_recent_cancellations,
	o.risk_distance_km,
	o.risk_is_verified,
	o.risk_fraud_flagged,
	o.risk_over_limit,
	o.risk_evaluated_at`

// riskRow scans riskColumns. Every field is null for unassessed orders.
type riskRow struct {
	RiskLevel               *int
	RiskScore               *float64
	RiskTrustScore          *int
	RiskRecentCancellations *int
	RiskDistanceKm          *float64
	RiskIsVerified          *bool
	RiskFraudFlagged        *bool
	RiskOverLimit           *bool
	RiskEvaluatedAt         *time.Time
}

func (r riskRow) view() *RiskView {
	if r.RiskEvaluatedAt == nil || r.RiskLevel == nil {
		return nil
	}
	return &RiskView{
		Level:               risk.Level(*r.RiskLevel),
		Score:               deref(r.RiskScore),
		TrustScore:          deref(r.RiskTrustScore),
		RecentCancellations: deref(r.RiskRecentCancellations),
		DistanceKm:          deref(r.RiskDistanceKm),
		IsVerified:          deref(r.RiskIsVerified),
		FraudFlagged:        deref(r.RiskFraudFlagged),
		OverLimit:           deref(r.RiskOverLimit),
		EvaluatedAt:         r.RiskEvaluatedAt.UTC(),
	}
}

type decisionRow struct {
	DecisionAction               *string
	DecisionActor                *string
	DecisionReason               *string
	DecisionIsFraud              *bool
	DecisionHighRiskAcknowledged *bool
	DecisionDecidedAt            *time.Time
}

func (r decisionRow) view() *DecisionView {
	if r.DecisionAction == nil || r.DecisionDecidedAt == nil {
		return nil
	}
	return &DecisionView{
		Action:               risk.Action(*r.DecisionAction),
		Actor:                deref(r.DecisionActor),
		Reason:               deref(r.DecisionReason),
		IsFraud:              deref(r.DecisionIsFraud),
		HighRiskAcknowledged: deref(r.DecisionHighRiskAcknowledged),
		DecidedAt:            r.DecisionDecidedAt.UTC(),
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
