package ports

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
)

// ErrAddressNotFound is returned by a Geocoder that answered but found no match.
var ErrAddressNotFound = errors.New("address not found")

// Geocoder resolves a free-text address. Implementations call a remote
// service and may be slow or fail; callers never hold a database
// transaction across a call.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (kernel.GeoPoint, error)
}
