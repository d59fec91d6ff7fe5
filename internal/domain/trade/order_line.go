package trade

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// moneyPlaces is the scale amounts and weights are persisted at
const moneyPlaces = 4

// OrderLine holds the priced columns shared by purchase and sales order items
type OrderLine struct {
	ProductID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	UnitType       UnitType         `gorm:"type:varchar(10);not null"`
	BagWeight      *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Quantity       decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	UnitPrice      decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	TaxRate        decimal.Decimal  `gorm:"type:decimal(7,4);not null;default:0"`
	DiscountRate   decimal.Decimal  `gorm:"type:decimal(7,4);not null;default:0"`
	TotalKg        decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Subtotal       decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	DiscountAmount decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount      decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	LineTotal      decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
}

func newOrderLine(pl PricedLine) OrderLine {
	return OrderLine{
		ProductID:      pl.ProductID,
		UnitType:       pl.UnitType,
		BagWeight:      pl.BagWeight,
		Quantity:       pl.Quantity,
		UnitPrice:      pl.UnitPrice,
		TaxRate:        pl.TaxRate,
		DiscountRate:   pl.DiscountRate,
		TotalKg:        pl.TotalKg.Round(moneyPlaces),
		Subtotal:       pl.Subtotal.Round(moneyPlaces),
		DiscountAmount: pl.DiscountAmount.Round(moneyPlaces),
		TaxAmount:      pl.TaxAmount.Round(moneyPlaces),
		LineTotal:      pl.LineTotal.Round(moneyPlaces),
	}
}

// OrderTotals holds the priced order-level columns shared by purchase and sales orders
type OrderTotals struct {
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalKg        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

func newOrderTotals(po PricedOrder) OrderTotals {
	return OrderTotals{
		Subtotal:       po.Subtotal.Round(moneyPlaces),
		DiscountAmount: po.DiscountAmount.Round(moneyPlaces),
		TaxAmount:      po.TaxAmount.Round(moneyPlaces),
		TotalAmount:    po.TotalAmount.Round(moneyPlaces),
		TotalKg:        po.TotalKg.Round(moneyPlaces),
	}
}

// FormatNumber renders a sequential document number such as PO001 or INV042.
// Numbers past 999 simply grow wider.
func FormatNumber(prefix string, seq int64) string {
	return fmt.Sprintf("%s%03d", prefix, seq)
}
