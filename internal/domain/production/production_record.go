package production

import (
	"fmt"
	"time"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ProductionRecord is one immutable production event: purchased material of one
// purchase order item converted into produced stock. Wastage is derived, never stored.
type ProductionRecord struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductionNumber    string          `gorm:"type:varchar(60);not null;uniqueIndex"`
	PurchaseOrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseOrderItemID *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	ProductID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	WarehouseID         uuid.UUID       `gorm:"type:uuid;not null"`
	PurchasedKg         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ProductionKg        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ProductionDate      time.Time       `gorm:"type:date;not null;index"`
	Notes               string          `gorm:"type:text"`
	CreatedAt           time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductionRecord) TableName() string {
	return "production_records"
}

// FormatProductionNumber builds a time-based production number with a sequence suffix
func FormatProductionNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("PROD-%d-%d", at.UnixMilli(), seq)
}

// NewProductionRecord records production of one purchase order item.
// The produced quantity must be positive and no more than the item's purchased weight.
func NewProductionRecord(
	number string,
	order *trade.PurchaseOrder,
	item *trade.PurchaseOrderItem,
	productionKg decimal.Decimal,
	productionDate time.Time,
	notes string,
) (*ProductionRecord, error) {
	if err := item.ValidateProduction(productionKg); err != nil {
		return nil, err
	}
	if productionDate.IsZero() {
		productionDate = time.Now()
	}
	itemID := item.ID
	return &ProductionRecord{
		ID:                  uuid.New(),
		ProductionNumber:    number,
		PurchaseOrderID:     order.ID,
		PurchaseOrderItemID: &itemID,
		ProductID:           item.ProductID,
		WarehouseID:         order.WarehouseID,
		PurchasedKg:         item.PurchasedKg(),
		ProductionKg:        productionKg,
		ProductionDate:      productionDate,
		Notes:               notes,
		CreatedAt:           time.Now(),
	}, nil
}

// WastageKg is purchased minus produced
func (r *ProductionRecord) WastageKg() decimal.Decimal {
	return r.PurchasedKg.Sub(r.ProductionKg)
}

// WastagePercentage is wastage as a percentage of the purchased weight
func (r *ProductionRecord) WastagePercentage() decimal.Decimal {
	if !r.PurchasedKg.IsPositive() {
		return decimal.Zero
	}
	return r.WastageKg().Div(r.PurchasedKg).Mul(hundred)
}

// HasWastage reports whether the event lost material
func (r *ProductionRecord) HasWastage() bool {
	return r.WastageKg().IsPositive()
}

// MovementNote is the audit note written on the production stock movement
func (r *ProductionRecord) MovementNote(poNumber string) string {
	return fmt.Sprintf("Production %s from PO %s: purchased %s kg, produced %s kg, wastage %s kg (%s%%)",
		r.ProductionNumber, poNumber,
		r.PurchasedKg.StringFixed(3), r.ProductionKg.StringFixed(3),
		r.WastageKg().StringFixed(3), r.WastagePercentage().StringFixed(2))
}

// ItemProduction is one produced quantity in a batch request
type ItemProduction struct {
	ItemID       uuid.UUID
	ProductionKg decimal.Decimal
}

// MatchBatch checks that a batch covers every pending item of the order exactly once
// and names no other item. It returns the entries paired with their items in order.
func MatchBatch(order *trade.PurchaseOrder, entries []ItemProduction) ([]*trade.PurchaseOrderItem, error) {
	if len(entries) == 0 {
		return nil, shared.NewValidationError("at least one item production entry is required")
	}

	seen := make(map[uuid.UUID]bool, len(entries))
	items := make([]*trade.PurchaseOrderItem, 0, len(entries))
	for _, e := range entries {
		if seen[e.ItemID] {
			return nil, shared.NewValidationError("item %s appears more than once", e.ItemID)
		}
		seen[e.ItemID] = true

		item := order.FindItem(e.ItemID)
		if item == nil {
			return nil, shared.NewValidationError("item %s does not belong to purchase order %s", e.ItemID, order.PONumber)
		}
		if err := item.ValidateProduction(e.ProductionKg); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	for _, pending := range order.PendingItems() {
		if !seen[pending.ID] {
			return nil, shared.NewValidationError("missing production entry for item %s", pending.ID)
		}
	}
	return items, nil
}
