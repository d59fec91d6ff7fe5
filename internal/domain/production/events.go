package production

import (
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeProductionRecord = "ProductionRecord"
	AggregateTypeWastageRecord    = "WastageRecord"
)

// Event type constants
const (
	EventTypeItemProduced    = "ItemProduced"
	EventTypeWastageApproved = "WastageApproved"
)

// ItemProducedEvent is published after a production event commits
type ItemProducedEvent struct {
	shared.BaseDomainEvent
	ProductionNumber string          `json:"production_number"`
	PurchaseOrderID  uuid.UUID       `json:"purchase_order_id"`
	ProductID        uuid.UUID       `json:"product_id"`
	WarehouseID      uuid.UUID       `json:"warehouse_id"`
	PurchasedKg      decimal.Decimal `json:"purchased_kg"`
	ProductionKg     decimal.Decimal `json:"production_kg"`
	WastageKg        decimal.Decimal `json:"wastage_kg"`
}

// NewItemProducedEvent creates a new ItemProducedEvent
func NewItemProducedEvent(r *ProductionRecord) *ItemProducedEvent {
	return &ItemProducedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeItemProduced, AggregateTypeProductionRecord, r.ID),
		ProductionNumber: r.ProductionNumber,
		PurchaseOrderID:  r.PurchaseOrderID,
		ProductID:        r.ProductID,
		WarehouseID:      r.WarehouseID,
		PurchasedKg:      r.PurchasedKg,
		ProductionKg:     r.ProductionKg,
		WastageKg:        r.WastageKg(),
	}
}

// WastageApprovedEvent is published when a manual wastage report is approved
type WastageApprovedEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// NewWastageApprovedEvent creates a new WastageApprovedEvent
func NewWastageApprovedEvent(w *WastageRecord) *WastageApprovedEvent {
	return &WastageApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWastageApproved, AggregateTypeWastageRecord, w.ID),
		ProductID:       w.ProductID,
		WarehouseID:     w.WarehouseID,
		Quantity:        w.Quantity,
	}
}
