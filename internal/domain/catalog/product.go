package catalog

import (
	"strings"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// UnitType is the unit a product is bought and sold in
type UnitType string

const (
	// UnitKg quantities are already in kilograms
	UnitKg UnitType = "kg"
	// UnitBag quantities are counted in bags of a per-line bag weight
	UnitBag UnitType = "bag"
)

// IsValid returns true if the unit type is valid
func (u UnitType) IsValid() bool {
	return u == UnitKg || u == UnitBag
}

// String returns the string representation
func (u UnitType) String() string {
	return string(u)
}

// Product represents a product/SKU in the catalog
type Product struct {
	shared.BaseAggregateRoot
	Code         string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string          `gorm:"type:varchar(200);not null"`
	UnitType     UnitType        `gorm:"type:varchar(10);not null;default:'kg'"`
	BasePrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderLevel decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinStock     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MaxStock     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(code, name string, unitType UnitType) (*Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError("product code is required")
	}
	if len(code) > 50 {
		return nil, shared.NewValidationError("product code cannot exceed 50 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("product name is required")
	}
	if unitType == "" {
		unitType = UnitKg
	}
	if !unitType.IsValid() {
		return nil, shared.NewValidationError("invalid unit type %q", unitType)
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		UnitType:          unitType,
		BasePrice:         decimal.Zero,
		ReorderLevel:      decimal.Zero,
		MinStock:          decimal.Zero,
		MaxStock:          decimal.Zero,
	}, nil
}

// SetStockLevels sets the reorder, minimum and maximum stock levels.
// A zero maximum means unbounded.
func (p *Product) SetStockLevels(reorder, minStock, maxStock decimal.Decimal) error {
	if reorder.IsNegative() || minStock.IsNegative() || maxStock.IsNegative() {
		return shared.NewValidationError("stock levels cannot be negative")
	}
	if !maxStock.IsZero() && minStock.GreaterThan(maxStock) {
		return shared.NewValidationError("min stock cannot exceed max stock")
	}
	p.ReorderLevel = reorder
	p.MinStock = minStock
	p.MaxStock = maxStock
	p.Touch()
	return nil
}

// NeedsReorder reports whether the given on-hand quantity is at or below the reorder level
func (p *Product) NeedsReorder(onHand decimal.Decimal) bool {
	return p.ReorderLevel.IsPositive() && onHand.LessThanOrEqual(p.ReorderLevel)
}
