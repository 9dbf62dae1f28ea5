// Package loyaltyrepo persists loyalty accounts and their append-only points
// ledger. The stored balance is always re-derived from the ledger inside the
// transaction that appended to it.
package loyaltyrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/loyalty"

	"github.com/google/uuid"
)

// EarnKeyIndex keeps one Earned entry per order.
const EarnKeyIndex = "ux_point_transactions_earn_key"

// AccountDTO is the loyalty_accounts row; its id is the customer id.
type AccountDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Balance   int64     `gorm:"not null;default:0;check:chk_loyalty_accounts_balance,balance >= 0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false;not null"`
}

func (AccountDTO) TableName() string {
	return "loyalty_accounts"
}

// TransactionDTO is the point_transactions row. Points are stored as a
// magnitude; the type gives the sign.
type TransactionDTO struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AccountID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type      string     `gorm:"type:varchar(16);not null"`
	Points    int64      `gorm:"not null"`
	OrderRef  *uuid.UUID `gorm:"type:uuid;index"`
	EarnKey   *string    `gorm:"type:varchar(64);uniqueIndex:ux_point_transactions_earn_key"`
	Reason    string     `gorm:"type:text"`
	CreatedAt time.Time  `gorm:"autoCreateTime:false;not null;index"`
}

func (TransactionDTO) TableName() string {
	return "point_transactions"
}

func transactionFromDomain(tx *loyalty.Transaction) TransactionDTO {
	var orderRef *uuid.UUID
	if ref := tx.OrderRef(); ref != nil {
		raw := ref.Bytes()
		orderRef = &raw
	}
	return TransactionDTO{
		ID:        tx.ID().Bytes(),
		AccountID: tx.AccountID().Bytes(),
		Type:      tx.Type().String(),
		Points:    tx.Points(),
		OrderRef:  orderRef,
		EarnKey:   tx.EarnKey(),
		Reason:    tx.Reason(),
		CreatedAt: tx.CreatedAt(),
	}
}

func accountToDomain(dto AccountDTO) (*loyalty.Account, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	return loyalty.RestoreAccount(id, dto.Balance, dto.UpdatedAt.UTC())
}
