package production

import (
	"time"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WastageStatus represents the approval state of a wastage record
type WastageStatus string

const (
	WastageStatusPending  WastageStatus = "pending"
	WastageStatusApproved WastageStatus = "approved"
)

// WastageSource says where a wastage record came from
type WastageSource string

const (
	WastageSourceProduction WastageSource = "production"
	WastageSourceManual     WastageSource = "manual"
)

// WastageRecord is material lost either in production or reported by hand.
// Production wastage is approved on creation and never touches stock, since only
// produced weight was credited. Manual wastage deducts stock when approved.
type WastageRecord struct {
	shared.BaseAggregateRoot
	ProductionRecordID *uuid.UUID      `gorm:"type:uuid;uniqueIndex"`
	ProductID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	WarehouseID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CostValue          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Reason             string          `gorm:"type:varchar(50);not null"`
	Description        string          `gorm:"type:text"`
	WastageDate        time.Time       `gorm:"type:date;not null;index"`
	Status             WastageStatus   `gorm:"type:varchar(20);not null;index"`
	Source             WastageSource   `gorm:"type:varchar(20);not null"`
	ApprovedAt         *time.Time
}

// TableName returns the table name for GORM
func (WastageRecord) TableName() string {
	return "wastage_records"
}

// NewProductionWastage derives the approved wastage record of a production event.
// It returns nil when nothing was lost.
func NewProductionWastage(rec *ProductionRecord, poNumber string) *WastageRecord {
	if !rec.HasWastage() {
		return nil
	}
	now := time.Now()
	recID := rec.ID
	w := &WastageRecord{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		ProductionRecordID: &recID,
		ProductID:          rec.ProductID,
		WarehouseID:        rec.WarehouseID,
		Quantity:           rec.WastageKg(),
		CostValue:          decimal.Zero,
		Reason:             "production",
		Description:        "Wastage " + rec.WastagePercentage().StringFixed(2) + "% from PO " + poNumber,
		WastageDate:        rec.ProductionDate,
		Status:             WastageStatusApproved,
		Source:             WastageSourceProduction,
		ApprovedAt:         &now,
	}
	return w
}

// NewManualWastage reports wastage found outside production. It starts pending.
func NewManualWastage(productID, warehouseID uuid.UUID, quantity, costValue decimal.Decimal, reason, description string, date time.Time) (*WastageRecord, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("product_id is required")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewValidationError("warehouse_id is required")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("quantity must be greater than 0")
	}
	if costValue.IsNegative() {
		return nil, shared.NewValidationError("cost_value cannot be negative")
	}
	if reason == "" {
		reason = "other"
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &WastageRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		WarehouseID:       warehouseID,
		Quantity:          quantity,
		CostValue:         costValue,
		Reason:            reason,
		Description:       description,
		WastageDate:       date,
		Status:            WastageStatusPending,
		Source:            WastageSourceManual,
	}, nil
}

// Approve approves a pending record
func (w *WastageRecord) Approve(at time.Time) error {
	if w.Status == WastageStatusApproved {
		return shared.NewAlreadyProcessedError("wastage record %s is already approved", w.ID)
	}
	w.Status = WastageStatusApproved
	w.ApprovedAt = &at
	w.Touch()
	w.AddDomainEvent(NewWastageApprovedEvent(w))
	return nil
}

// DeductsStockOnApproval reports whether approval must remove the quantity from stock
func (w *WastageRecord) DeductsStockOnApproval() bool {
	return w.Source == WastageSourceManual
}
