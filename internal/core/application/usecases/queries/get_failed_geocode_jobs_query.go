package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var ErrGetFailedGeocodeJobsQueryIsNotConstructed = errors.New(
	"GetFailedGeocodeJobsQuery must be created via NewGetFailedGeocodeJobsQuery constructor",
)

// GetFailedGeocodeJobsQuery lists addresses the resolver gave up on. These
// orders cannot leave preparing until an operator corrects the location.
type GetFailedGeocodeJobsQuery struct {
	guard guard.ConstructorGuard
}

func NewGetFailedGeocodeJobsQuery() GetFailedGeocodeJobsQuery {
	return GetFailedGeocodeJobsQuery{guard: guard.NewConstructorGuard()}
}

func (q GetFailedGeocodeJobsQuery) Validate() error {
	return q.guard.Validate(ErrGetFailedGeocodeJobsQueryIsNotConstructed)
}

type GetFailedGeocodeJobsQueryResponse struct {
	OrderID     kernel.UUID
	OrderStatus order.Status
	Address     string
	Attempts    int
	LastError   string
	FailedAt    time.Time
}
