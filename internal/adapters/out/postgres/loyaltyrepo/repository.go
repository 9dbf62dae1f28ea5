package loyaltyrepo

import (
	"context"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/loyalty"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLoyaltyRepository implements LoyaltyRepository using GORM.
type GormLoyaltyRepository struct {
	db *gorm.DB
}

func NewGormLoyaltyRepository(db *gorm.DB) *GormLoyaltyRepository {
	return &GormLoyaltyRepository{db: db}
}

// GetAccountForUpdate creates the account if needed and locks its row.
func (r *GormLoyaltyRepository) GetAccountForUpdate(ctx context.Context, id kernel.UUID, now time.Time) (*loyalty.Account, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	empty := AccountDTO{ID: id.Bytes(), UpdatedAt: now}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&empty).Error; err != nil {
		return nil, err
	}

	var dto AccountDTO
	err := db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		return nil, err
	}
	return accountToDomain(dto)
}

// Append inserts the entry and re-derives the balance. A repeated earn key
// is skipped with ON CONFLICT DO NOTHING so the surrounding transaction stays
// usable; Append then reports false.
func (r *GormLoyaltyRepository) Append(ctx context.Context, account *loyalty.Account, tx *loyalty.Transaction) (bool, error) {
	if err := account.Validate(); err != nil {
		return false, err
	}
	if err := tx.Validate(); err != nil {
		return false, err
	}

	db := r.db.WithContext(ctx)
	dto := transactionFromDomain(tx)
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&dto)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	var balance int64
	err := db.Raw(`
		UPDATE loyalty_accounts
		SET balance = (
				SELECT COALESCE(SUM(CASE WHEN type IN ? THEN -points ELSE points END), 0)
				FROM point_transactions
				WHERE account_id = ?
			),
			updated_at = ?
		WHERE id = ?
		RETURNING balance
	`,
		[]string{loyalty.Redeemed.String(), loyalty.Expired.String()},
		dto.AccountID,
		tx.CreatedAt(),
		dto.AccountID,
	).Scan(&balance).Error
	if err != nil {
		return false, err
	}
	if balance != account.Balance() {
		return false, fmt.Errorf("loyalty account %s: ledger balance %d does not match %d", account.ID(), balance, account.Balance())
	}

	return true, nil
}
