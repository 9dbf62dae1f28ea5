package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/loyalty"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetLoyaltyAccountQueryHandler struct {
	db *gorm.DB
}

func NewGetLoyaltyAccountQueryHandler(db *gorm.DB) GetLoyaltyAccountQueryHandler {
	return GetLoyaltyAccountQueryHandler{db: db}
}

// Handle reads the account row and its newest entries, newest first.
func (h GetLoyaltyAccountQueryHandler) Handle(
	ctx context.Context,
	query GetLoyaltyAccountQuery,
) (GetLoyaltyAccountQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetLoyaltyAccountQueryResponse{}, err
	}

	res := GetLoyaltyAccountQueryResponse{
		AccountID: query.AccountID(),
		History:   make([]LedgerEntry, 0),
	}
	db := h.db.WithContext(ctx)

	var balance int64
	var updatedAt time.Time
	err := db.Raw(`SELECT balance, updated_at FROM loyalty_accounts WHERE id = ?`, query.AccountID().Bytes()).
		Row().Scan(&balance, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return res, nil
	}
	if err != nil {
		return GetLoyaltyAccountQueryResponse{}, err
	}
	res.Balance = balance
	at := updatedAt.UTC()
	res.UpdatedAt = &at

	rows, err := db.Raw(`
		SELECT
			id,
			type,
			points,
			order_ref,
			reason,
			created_at
		FROM point_transactions
		WHERE account_id = ?
		ORDER BY created_at DESC, id
		LIMIT ?
	`, query.AccountID().Bytes(), query.Limit()).Rows()
	if err != nil {
		return GetLoyaltyAccountQueryResponse{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entry     LedgerEntry
			id        uuid.UUID
			txType    string
			points    int64
			orderRef  uuid.NullUUID
			createdAt time.Time
		)
		if err = rows.Scan(&id, &txType, &points, &orderRef, &entry.Reason, &createdAt); err != nil {
			return GetLoyaltyAccountQueryResponse{}, err
		}

		txID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return GetLoyaltyAccountQueryResponse{}, idErr
		}
		entry.ID = txID
		entry.Type = loyalty.TransactionType(txType)
		entry.Points = points * entry.Type.Sign()
		entry.CreatedAt = createdAt.UTC()

		if orderRef.Valid {
			ref, idErr := kernel.UUIDFromBytes(orderRef.UUID[:])
			if idErr != nil {
				return GetLoyaltyAccountQueryResponse{}, idErr
			}
			entry.OrderRef = &ref
		}
		res.History = append(res.History, entry)
	}

	if err = rows.Err(); err != nil {
		return GetLoyaltyAccountQueryResponse{}, err
	}

	return res, nil
}
