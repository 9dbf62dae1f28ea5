// Package courierrepo provides data transfer objects and mapping functions for courier persistence.
// Couriers and their assignments live in separate tables; an assignment row
// is active while released_at is null.
package courierrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/courier"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// Names of the partial unique indexes that keep at most one active
// assignment per order and per courier.
const (
	ActiveOrderIndex   = "ux_courier_assignments_active_order"
	ActiveCourierIndex = "ux_courier_assignments_active_courier"
)

// CourierDTO represents the database structure for persisting courier aggregates.
type CourierDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"type:varchar(255);not null"`
	Phone        string    `gorm:"type:varchar(32);not null"`
	VehicleType  string    `gorm:"type:varchar(16);not null"`
	Availability string    `gorm:"type:varchar(16);index;not null"`
}

// TableName specifies the database table name for courier entities.
// Overrides GORM's default naming convention to use "couriers" instead of "courier_dtos".
func (CourierDTO) TableName() string {
	return "couriers"
}

// AssignmentDTO is the courier_assignments row. VehicleType is copied from
// the courier at assignment time.
type AssignmentDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:ux_courier_assignments_active_order,where:released_at IS NULL"`
	CourierID   uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:ux_courier_assignments_active_courier,where:released_at IS NULL"`
	VehicleType string     `gorm:"type:varchar(16);not null"`
	AssignedAt  time.Time  `gorm:"not null"`
	ReleasedAt  *time.Time `gorm:"index"`
}

func (AssignmentDTO) TableName() string {
	return "courier_assignments"
}

// fromDomain converts a courier domain aggregate to its database representation.
func fromDomain(c *courier.Courier) CourierDTO {
	return CourierDTO{
		ID:           c.ID().Bytes(),
		Name:         c.Name(),
		Phone:        c.Phone(),
		VehicleType:  c.VehicleType().String(),
		Availability: c.Availability().String(),
	}
}

// toDomain converts a database DTO to a courier domain aggregate using RestoreCourier.
func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	return courier.RestoreCourier(
		id,
		dto.Name,
		dto.Phone,
		courier.VehicleType(dto.VehicleType),
		courier.Availability(dto.Availability),
	)
}

func assignmentFromDomain(a *courier.Assignment) AssignmentDTO {
	return AssignmentDTO{
		ID:          a.ID().Bytes(),
		OrderID:     a.OrderID().Bytes(),
		CourierID:   a.CourierID().Bytes(),
		VehicleType: a.VehicleType().String(),
		AssignedAt:  a.AssignedAt(),
		ReleasedAt:  a.ReleasedAt(),
	}
}

func assignmentToDomain(dto AssignmentDTO) (*courier.Assignment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	courierID, err := kernel.UUIDFromBytes(dto.CourierID[:])
	if err != nil {
		return nil, err
	}

	var releasedAt *time.Time
	if dto.ReleasedAt != nil {
		t := dto.ReleasedAt.UTC()
		releasedAt = &t
	}

	return courier.RestoreAssignment(
		id,
		orderID,
		courierID,
		courier.VehicleType(dto.VehicleType),
		dto.AssignedAt.UTC(),
		releasedAt,
	)
}
