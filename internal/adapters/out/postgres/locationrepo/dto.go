// Package locationrepo persists delivery locations, one row per order.
package locationrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// LocationDTO is the delivery_locations row. Lat and Lng are null until the
// address is resolved or corrected.
type LocationDTO struct {
	OrderID       uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Address       string     `gorm:"type:text;not null"`
	Lat           *float64   `gorm:"type:double precision"`
	Lng           *float64   `gorm:"type:double precision"`
	Status        string     `gorm:"type:varchar(24);index;not null"`
	Attempts      int        `gorm:"not null;default:0"`
	LastError     string     `gorm:"type:text"`
	NextAttemptAt *time.Time `gorm:"index"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime:false;not null"`
}

func (LocationDTO) TableName() string {
	return "delivery_locations"
}

func fromDomain(l *delivery.Location) LocationDTO {
	s := l.State()
	dto := LocationDTO{
		OrderID:       s.OrderID.Bytes(),
		Address:       s.Address,
		Status:        s.Status.String(),
		Attempts:      s.Attempts,
		LastError:     s.LastError,
		NextAttemptAt: s.NextAttemptAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if s.Point != nil {
		lat, lng := s.Point.Lat(), s.Point.Lng()
		dto.Lat, dto.Lng = &lat, &lng
	}
	return dto
}

func toDomain(dto LocationDTO) (*delivery.Location, error) {
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	var point *kernel.GeoPoint
	if dto.Lat != nil && dto.Lng != nil {
		p, pointErr := kernel.NewGeoPoint(*dto.Lat, *dto.Lng)
		if pointErr != nil {
			return nil, pointErr
		}
		point = &p
	}

	var next *time.Time
	if dto.NextAttemptAt != nil {
		t := dto.NextAttemptAt.UTC()
		next = &t
	}

	return delivery.RestoreLocation(delivery.LocationState{
		OrderID:       orderID,
		Address:       dto.Address,
		Point:         point,
		Status:        delivery.GeocodeStatus(dto.Status),
		Attempts:      dto.Attempts,
		LastError:     dto.LastError,
		NextAttemptAt: next,
		UpdatedAt:     dto.UpdatedAt.UTC(),
	})
}
