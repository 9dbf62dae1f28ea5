package locationrepo

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLocationRepository implements LocationRepository using GORM.
type GormLocationRepository struct {
	db *gorm.DB
}

func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

func (r *GormLocationRepository) Add(ctx context.Context, location *delivery.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	dto := fromDomain(location)
	return r.db.WithContext(ctx).Create(&dto).Error
}

func (r *GormLocationRepository) Update(ctx context.Context, location *delivery.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}

	dto := fromDomain(location)
	result := r.db.WithContext(ctx).Model(&dto).Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("delivery location", location.OrderID().String())
	}
	return nil
}

func (r *GormLocationRepository) Get(ctx context.Context, orderID kernel.UUID) (*delivery.Location, error) {
	return r.first(r.db.WithContext(ctx), orderID)
}

// GetForUpdate locks the location row until the transaction ends.
func (r *GormLocationRepository) GetForUpdate(ctx context.Context, orderID kernel.UUID) (*delivery.Location, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), orderID)
}

func (r *GormLocationRepository) first(db *gorm.DB, orderID kernel.UUID) (*delivery.Location, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto LocationDTO
	if err := db.First(&dto, "order_id = ?", orderID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("delivery location", orderID.String())
		}
		return nil, err
	}
	return toDomain(dto)
}

// ListDue returns pending locations whose next attempt is at or before now,
// earliest first. Locations of completed or cancelled orders are left out.
// Rows are not locked.
func (r *GormLocationRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*delivery.Location, error) {
	var dtos []LocationDTO
	err := r.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = delivery_locations.order_id").
		Where("delivery_locations.status = ? AND delivery_locations.next_attempt_at <= ?", delivery.Pending.String(), now).
		Where("orders.status NOT IN ?", []int{int(order.Completed), int(order.Cancelled)}).
		Order("delivery_locations.next_attempt_at").Order("delivery_locations.order_id").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	locations := make([]*delivery.Location, 0, len(dtos))
	for _, dto := range dtos {
		l, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, nil
}
