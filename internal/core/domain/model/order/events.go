package order

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// StatusChanged is recorded by the aggregate for every applied transition and
// published after the surrounding transaction commits.
type StatusChanged struct {
	OrderID    kernel.UUID
	CustomerID kernel.UUID
	From       Status
	To         Status
	Actor      string
	Message    string
	OccurredAt time.Time
}
