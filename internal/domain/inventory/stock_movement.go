package inventory

import (
	"time"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType represents the reason a stock quantity changed
type MovementType string

const (
	MovementPurchase    MovementType = "purchase"
	MovementProduction  MovementType = "production"
	MovementSale        MovementType = "sale"
	MovementAdjustment  MovementType = "adjustment"
	MovementTransferIn  MovementType = "transfer_in"
	MovementTransferOut MovementType = "transfer_out"
	MovementCutting     MovementType = "cutting"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementPurchase,
		MovementProduction,
		MovementSale,
		MovementAdjustment,
		MovementTransferIn,
		MovementTransferOut,
		MovementCutting:
		return true
	}
	return false
}

// Reference types recorded on movements
const (
	ReferencePurchaseOrder    = "purchase_order"
	ReferenceProductionRecord = "production_record"
	ReferenceSalesOrder       = "sales_order"
	ReferenceSalesCancel      = "sales_order_cancel"
	ReferenceWastageRecord    = "wastage_record"
	ReferenceCuttingOperation = "cutting_operation"
	ReferenceManual           = "manual"
	ReferenceTransfer         = "transfer"
)

// StockMovement is one immutable line in the stock movement log.
// Quantity is signed: positive for stock in, negative for stock out.
type StockMovement struct {
	ID                     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID              uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_product_warehouse,priority:1"`
	WarehouseID            uuid.UUID       `gorm:"type:uuid;not null;index:idx_movement_product_warehouse,priority:2"`
	MovementType           MovementType    `gorm:"type:varchar(20);not null;index"`
	Quantity               decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAfter           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReferenceType          string          `gorm:"type:varchar(30)"`
	ReferenceID            *uuid.UUID      `gorm:"type:uuid;index"`
	CounterpartWarehouseID *uuid.UUID      `gorm:"type:uuid"`
	Notes                  string          `gorm:"type:text"`
	CreatedAt              time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// IsInbound reports whether the movement added stock
func (m *StockMovement) IsInbound() bool {
	return m.Quantity.IsPositive()
}

// Entry describes one stock change requested of the stock ledger.
// Quantity is always positive; the ledger operation decides the sign.
type Entry struct {
	ProductID              uuid.UUID
	WarehouseID            uuid.UUID
	Quantity               decimal.Decimal
	MovementType           MovementType
	ReferenceType          string
	ReferenceID            *uuid.UUID
	CounterpartWarehouseID *uuid.UUID
	Notes                  string
}

// Validate checks the entry before any write
func (e Entry) Validate() error {
	if e.ProductID == uuid.Nil {
		return shared.NewValidationError("product_id is required")
	}
	if e.WarehouseID == uuid.Nil {
		return shared.NewValidationError("warehouse_id is required")
	}
	if !e.Quantity.IsPositive() {
		return shared.NewValidationError("quantity must be greater than 0")
	}
	if !e.MovementType.IsValid() {
		return shared.NewValidationError("invalid movement type %q", e.MovementType)
	}
	return nil
}

// NewMovement builds the log line for an applied entry
func NewMovement(e Entry, signed, balanceAfter decimal.Decimal) *StockMovement {
	return &StockMovement{
		ID:                     uuid.New(),
		ProductID:              e.ProductID,
		WarehouseID:            e.WarehouseID,
		MovementType:           e.MovementType,
		Quantity:               signed,
		BalanceAfter:           balanceAfter,
		ReferenceType:          e.ReferenceType,
		ReferenceID:            e.ReferenceID,
		CounterpartWarehouseID: e.CounterpartWarehouseID,
		Notes:                  e.Notes,
		CreatedAt:              time.Now(),
	}
}
