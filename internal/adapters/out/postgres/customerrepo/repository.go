// Package customerrepo stores customer trust profiles synced from the
// identity service, together with the fraud flag set by COD rejections.
package customerrepo

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/customer"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustomerDTO is the customers row.
type CustomerDTO struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TrustScore   int        `gorm:"type:smallint;not null"`
	IsVerified   bool       `gorm:"not null"`
	FraudFlagged bool       `gorm:"not null;index"`
	FraudReason  string     `gorm:"type:text"`
	FlaggedAt    *time.Time
}

func (CustomerDTO) TableName() string {
	return "customers"
}

// GormCustomerRepository implements CustomerRepository using GORM.
type GormCustomerRepository struct {
	db *gorm.DB
}

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) Get(ctx context.Context, id kernel.UUID) (*customer.Customer, error) {
	return r.first(r.db.WithContext(ctx), id)
}

func (r *GormCustomerRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*customer.Customer, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}), id)
}

// Save inserts the profile or overwrites every column of an existing one.
func (r *GormCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	if err := c.Validate(); err != nil {
		return err
	}

	dto := CustomerDTO{
		ID:           c.ID().Bytes(),
		TrustScore:   c.TrustScore(),
		IsVerified:   c.IsVerified(),
		FraudFlagged: c.FraudFlagged(),
		FraudReason:  c.FraudReason(),
		FlaggedAt:    c.FlaggedAt(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&dto).Error
}

func (r *GormCustomerRepository) first(db *gorm.DB, id kernel.UUID) (*customer.Customer, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto CustomerDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("customer", id.String())
		}
		return nil, err
	}

	var flaggedAt *time.Time
	if dto.FlaggedAt != nil {
		t := dto.FlaggedAt.UTC()
		flaggedAt = &t
	}
	return customer.RestoreCustomer(id, dto.TrustScore, dto.IsVerified, dto.FraudFlagged, dto.FraudReason, flaggedAt)
}
