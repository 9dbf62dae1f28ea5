package postgres

import (
	"fulfillment/internal/adapters/out/postgres/courierrepo"
	"fulfillment/internal/adapters/out/postgres/customerrepo"
	"fulfillment/internal/adapters/out/postgres/locationrepo"
	"fulfillment/internal/adapters/out/postgres/loyaltyrepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"

	"gorm.io/gorm"
)

// Models lists every table of the service in dependency order.
func Models() []any {
	return []any{
		&orderrepo.OrderDTO{},
		&locationrepo.LocationDTO{},
		&courierrepo.CourierDTO{},
		&courierrepo.AssignmentDTO{},
		&customerrepo.CustomerDTO{},
		&loyaltyrepo.AccountDTO{},
		&loyaltyrepo.TransactionDTO{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
