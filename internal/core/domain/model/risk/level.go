package risk

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Level is a coarse classification of non-payment or fraud likelihood.
type Level int

const (
	// Unknown is the zero value and never the result of an evaluation.
	Unknown Level = iota
	// Low orders are auto-approvable.
	Low
	// Medium orders need an admin review but may be approved normally.
	Medium
	// High orders need an explicit, acknowledged fraud decision.
	High
)

func getLevelStrings() map[Level]string {
	return map[Level]string{
		Unknown: "unknown",
		Low:     "low",
		Medium:  "medium",
		High:    "high",
	}
}

func (l Level) String() string {
	if s, ok := getLevelStrings()[l]; ok {
		return s
	}
	return "unknown"
}

// Validate rejects Unknown and out-of-range values.
func (l Level) Validate() error {
	if l < Low || l > High {
		return errs.NewValueIsInvalidErrorWithCause("risk level", fmt.Errorf("%d is not a valid level", l))
	}
	return nil
}

// ParseLevel converts "low", "medium" or "high" into a Level.
func ParseLevel(s string) (Level, error) {
	for l, str := range getLevelStrings() {
		if l != Unknown && str == s {
			return l, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("risk level", fmt.Errorf("%q is not a valid level", s))
}
