package risk

import (
	"errors"
	"time"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrSnapshotIsNotConstructed = errors.New("Snapshot must be created via NewSnapshot constructor")

// Snapshot is the audit record of one risk evaluation. It is immutable: a new
// evaluation produces a new Snapshot, and none is produced once a decision
// has been recorded on the order.
type Snapshot struct {
	trustScore          int
	recentCancellations int
	distanceKm          float64
	isVerified          bool
	fraudFlagged        bool
	overLimit           bool
	score               float64
	level               Level
	evaluatedAt         time.Time

	guard guard.ConstructorGuard
}

// SnapshotInput groups the values captured by a Snapshot.
type SnapshotInput struct {
	TrustScore          int
	RecentCancellations int
	DistanceKm          float64
	IsVerified          bool
	FraudFlagged        bool
	OverLimit           bool
	Score               float64
	Level               Level
	EvaluatedAt         time.Time
}

// NewSnapshot validates and freezes the evaluation inputs and result.
func NewSnapshot(in SnapshotInput) (Snapshot, error) {
	var problems []error
	if in.RecentCancellations < 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("recent_cancellations", in.RecentCancellations, 0, "∞"))
	}
	if in.DistanceKm < 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("distance_km", in.DistanceKm, 0, "∞"))
	}
	if in.EvaluatedAt.IsZero() {
		problems = append(problems, errs.NewValueIsRequiredError("evaluated_at"))
	}
	problems = append(problems, in.Level.Validate())
	if err := errors.Join(problems...); err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		trustScore:          in.TrustScore,
		recentCancellations: in.RecentCancellations,
		distanceKm:          in.DistanceKm,
		isVerified:          in.IsVerified,
		fraudFlagged:        in.FraudFlagged,
		overLimit:           in.OverLimit,
		score:               in.Score,
		level:               in.Level,
		evaluatedAt:         in.EvaluatedAt,
		guard:               guard.NewConstructorGuard(),
	}, nil
}

func (s Snapshot) Validate() error {
	return s.guard.Validate(ErrSnapshotIsNotConstructed)
}

func (s Snapshot) TrustScore() int          { return s.trustScore }
func (s Snapshot) RecentCancellations() int { return s.recentCancellations }
func (s Snapshot) DistanceKm() float64      { return s.distanceKm }
func (s Snapshot) IsVerified() bool         { return s.isVerified }
func (s Snapshot) FraudFlagged() bool       { return s.fraudFlagged }
func (s Snapshot) OverLimit() bool          { return s.overLimit }
func (s Snapshot) Score() float64           { return s.score }
func (s Snapshot) Level() Level             { return s.level }
func (s Snapshot) EvaluatedAt() time.Time   { return s.evaluatedAt }

// Input returns the captured values, used by persistence adapters.
func (s Snapshot) Input() SnapshotInput {
	return SnapshotInput{
		TrustScore:          s.trustScore,
		RecentCancellations: s.recentCancellations,
		DistanceKm:          s.distanceKm,
		IsVerified:          s.isVerified,
		FraudFlagged:        s.fraudFlagged,
		OverLimit:           s.overLimit,
		Score:               s.score,
		Level:               s.level,
		EvaluatedAt:         s.evaluatedAt,
	}
}
