package persistence

import (
	"fmt"

	"github.com/erp/stockflow/internal/domain/catalog"
	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/partner"
	"github.com/erp/stockflow/internal/domain/production"
	"github.com/erp/stockflow/internal/domain/trade"
	"gorm.io/gorm"
)

// numberSequence is one named document counter
type numberSequence struct {
	Name  string `gorm:"type:varchar(50);primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (numberSequence) TableName() string {
	return "number_sequences"
}

// Models lists every persisted model in dependency order
func Models() []any {
	return []any{
		&partner.Client{},
		&partner.Warehouse{},
		&catalog.Product{},
		&inventory.StockPosition{},
		&inventory.StockMovement{},
		&partner.LedgerPosting{},
		&trade.PurchaseOrder{},
		&trade.PurchaseOrderItem{},
		&trade.SalesOrder{},
		&trade.SalesOrderItem{},
		&production.ProductionRecord{},
		&production.WastageRecord{},
		&production.CuttingOperation{},
		&production.CuttingOutput{},
		&numberSequence{},
	}
}

// AutoMigrate creates the schema from the models. Postgres deployments use the
// SQL migrations instead; this serves sqlite runs and tests.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
