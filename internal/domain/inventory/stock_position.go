package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockPosition is the on-hand quantity of one product in one warehouse.
// It is a cache over the movement log and only changes through the stock ledger.
type StockPosition struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_product_warehouse,priority:1"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_product_warehouse,priority:2"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockPosition) TableName() string {
	return "stock"
}

// EmptyPosition is the position of a product never stocked in a warehouse
func EmptyPosition(productID, warehouseID uuid.UUID) *StockPosition {
	return &StockPosition{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    decimal.Zero,
	}
}

// CanSupply reports whether qty can be taken from the position
func (p *StockPosition) CanSupply(qty decimal.Decimal) bool {
	return p.Quantity.GreaterThanOrEqual(qty)
}
