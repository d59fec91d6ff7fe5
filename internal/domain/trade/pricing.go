package trade

import (
	"github.com/erp/stockflow/internal/domain/catalog"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineInput is one order line as submitted by the caller.
// Totals are never taken from the caller; they are derived here.
type LineInput struct {
	ProductID    uuid.UUID
	UnitType     UnitType
	Quantity     decimal.Decimal
	BagWeight    *decimal.Decimal
	UnitPrice    decimal.Decimal
	TaxRate      decimal.Decimal
	DiscountRate decimal.Decimal
}

// PricedLine is a line with its canonical weight and money amounts
type PricedLine struct {
	LineInput
	TotalKg        decimal.Decimal
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	LineTotal      decimal.Decimal
}

// PricedOrder aggregates priced lines into order totals
type PricedOrder struct {
	Lines           []PricedLine
	Subtotal        decimal.Decimal
	DiscountAmount  decimal.Decimal
	TaxAmount       decimal.Decimal
	ShippingCharges decimal.Decimal
	TotalAmount     decimal.Decimal
	TotalKg         decimal.Decimal
}

// FinalSubtotal is the subtotal after discount, before tax and shipping
func (o PricedOrder) FinalSubtotal() decimal.Decimal {
	return o.Subtotal.Sub(o.DiscountAmount)
}

// ValidateLines checks every line before anything is priced. The first
// offending line aborts the whole order; lines are numbered from 1.
func ValidateLines(lines []LineInput) error {
	if len(lines) == 0 {
		return shared.NewValidationError("at least one item is required")
	}
	for i, l := range lines {
		n := i + 1
		if l.ProductID == uuid.Nil {
			return shared.NewValidationError("item %d: product_id is required", n)
		}
		if l.UnitType == "" {
			l.UnitType = catalog.UnitKg
		}
		if !l.UnitType.IsValid() {
			return shared.NewValidationError("item %d: invalid unit type %q", n, l.UnitType)
		}
		if !l.Quantity.IsPositive() {
			return shared.NewValidationError("item %d: quantity must be greater than 0", n)
		}
		if !l.UnitPrice.IsPositive() {
			return shared.NewValidationError("item %d: unit_price must be greater than 0", n)
		}
		if l.UnitType == catalog.UnitBag && (l.BagWeight == nil || !l.BagWeight.IsPositive()) {
			return shared.NewValidationError("item %d: missing bag weight", n)
		}
		if !rateInRange(l.TaxRate) {
			return shared.NewValidationError("item %d: tax_rate must be between 0 and 100", n)
		}
		if !rateInRange(l.DiscountRate) {
			return shared.NewValidationError("item %d: discount_rate must be between 0 and 100", n)
		}
	}
	return nil
}

// PriceLines validates and prices an order.
//
//	item_subtotal = total_kg * unit_price
//	item_discount = item_subtotal * discount_rate / 100
//	item_tax      = (item_subtotal - item_discount) * tax_rate / 100
//	total_amount  = subtotal - discount_amount + tax_amount + shipping
func PriceLines(lines []LineInput, shipping decimal.Decimal) (PricedOrder, error) {
	if shipping.IsNegative() {
		return PricedOrder{}, shared.NewValidationError("shipping_charges cannot be negative")
	}
	if err := ValidateLines(lines); err != nil {
		return PricedOrder{}, err
	}

	order := PricedOrder{
		Lines:           make([]PricedLine, 0, len(lines)),
		Subtotal:        decimal.Zero,
		DiscountAmount:  decimal.Zero,
		TaxAmount:       decimal.Zero,
		ShippingCharges: shipping,
		TotalKg:         decimal.Zero,
	}

	for _, l := range lines {
		if l.UnitType == "" {
			l.UnitType = catalog.UnitKg
		}
		totalKg, err := NormalizeQuantity(l.UnitType, l.Quantity, l.BagWeight)
		if err != nil {
			return PricedOrder{}, err
		}
		pl := PriceLine(l, totalKg)
		order.Lines = append(order.Lines, pl)
		order.Subtotal = order.Subtotal.Add(pl.Subtotal)
		order.DiscountAmount = order.DiscountAmount.Add(pl.DiscountAmount)
		order.TaxAmount = order.TaxAmount.Add(pl.TaxAmount)
		order.TotalKg = order.TotalKg.Add(pl.TotalKg)
	}

	order.TotalAmount = order.FinalSubtotal().Add(order.TaxAmount).Add(shipping)
	return order, nil
}

// PriceLine prices one line with an already normalized weight
func PriceLine(l LineInput, totalKg decimal.Decimal) PricedLine {
	subtotal := totalKg.Mul(l.UnitPrice)
	discount := subtotal.Mul(l.DiscountRate).Div(hundred)
	tax := subtotal.Sub(discount).Mul(l.TaxRate).Div(hundred)
	return PricedLine{
		LineInput:      l,
		TotalKg:        totalKg,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		LineTotal:      subtotal.Sub(discount).Add(tax),
	}
}

func rateInRange(r decimal.Decimal) bool {
	return !r.IsNegative() && r.LessThanOrEqual(hundred)
}
