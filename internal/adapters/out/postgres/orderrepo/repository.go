package orderrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/delivery"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes every column of an existing order, zero values included.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&dto).Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.first(r.db.WithContext(ctx), id)
}

// GetForUpdate retrieves an order with SELECT ... FOR UPDATE.
func (r *GormOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), id)
}

func (r *GormOrderRepository) first(db *gorm.DB, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListExpiredConfirmations returns waiting_confirmation orders whose deadline
// is before now, oldest deadline first.
func (r *GormOrderRepository) ListExpiredConfirmations(ctx context.Context, now time.Time, limit int) ([]kernel.UUID, error) {
	rows, err := r.db.WithContext(ctx).Raw(`
		SELECT id
		FROM orders
		WHERE status = ?
			AND confirmation_deadline < ?
		ORDER BY confirmation_deadline, id
		LIMIT ?
	`, int(order.WaitingConfirmation), now, limit).Rows()
	if err != nil {
		return nil, err
	}
	return scanIDs(rows)
}

// ListAwaitingCourier returns queueing or preparing orders with a
// dispatchable location and no active assignment, oldest first.
func (r *GormOrderRepository) ListAwaitingCourier(ctx context.Context, limit int) ([]kernel.UUID, error) {
	rows, err := r.db.WithContext(ctx).Raw(`
		SELECT o.id
		FROM orders o
		JOIN delivery_locations l ON l.order_id = o.id
		WHERE o.status IN ?
			AND l.status IN ?
			AND NOT EXISTS (
				SELECT 1 FROM courier_assignments a
				WHERE a.order_id = o.id AND a.released_at IS NULL
			)
		ORDER BY o.placed_at, o.id
		LIMIT ?
	`,
		[]int{int(order.Queueing), int(order.Preparing)},
		[]string{delivery.Resolved.String(), delivery.ManuallyCorrected.String()},
		limit,
	).Rows()
	if err != nil {
		return nil, err
	}
	return scanIDs(rows)
}

// CountCancellationsSince counts the customer's orders cancelled at or after since.
func (r *GormOrderRepository) CountCancellationsSince(ctx context.Context, customerID kernel.UUID, since time.Time) (int, error) {
	if err := customerID.Validate(); err != nil {
		return 0, err
	}

	var n int64
	err := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("customer_id = ? AND status = ? AND cancelled_at >= ?", customerID.Bytes(), int(order.Cancelled), since).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func scanIDs(rows *sql.Rows) ([]kernel.UUID, error) {
	defer rows.Close()

	ids := make([]kernel.UUID, 0)
	for rows.Next() {
		var raw uuid.UUID
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := kernel.UUIDFromBytes(raw[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
