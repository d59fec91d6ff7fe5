package trade

import (
	"github.com/erp/stockflow/internal/domain/catalog"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// UnitType is the unit an order line is entered in
type UnitType = catalog.UnitType

// NormalizeQuantity converts a line quantity into its canonical weight in kg.
// A bag line needs a positive bag weight; a kg line is already canonical.
func NormalizeQuantity(unitType UnitType, quantity decimal.Decimal, bagWeight *decimal.Decimal) (decimal.Decimal, error) {
	if quantity.IsNegative() {
		return decimal.Zero, shared.NewValidationError("quantity cannot be negative")
	}
	switch unitType {
	case catalog.UnitKg:
		return quantity, nil
	case catalog.UnitBag:
		if bagWeight == nil || !bagWeight.IsPositive() {
			return decimal.Zero, shared.NewValidationError("missing bag weight")
		}
		return quantity.Mul(*bagWeight), nil
	}
	return decimal.Zero, shared.NewValidationError("invalid unit type %q, must be kg or bag", unitType)
}
