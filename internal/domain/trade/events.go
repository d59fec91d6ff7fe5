package trade

import (
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypePurchaseOrder = "PurchaseOrder"
	AggregateTypeSalesOrder    = "SalesOrder"
)

// Event type constants
const (
	EventTypePurchaseOrderCreated             = "PurchaseOrderCreated"
	EventTypePurchaseOrderCancelled           = "PurchaseOrderCancelled"
	EventTypePurchaseOrderProductionCompleted = "PurchaseOrderProductionCompleted"
	EventTypeSalesOrderCreated                = "SalesOrderCreated"
	EventTypeSalesOrderConfirmed              = "SalesOrderConfirmed"
	EventTypeSalesOrderCancelled              = "SalesOrderCancelled"
)

// PurchaseOrderCreatedEvent is published when a purchase order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	PONumber    string          `json:"po_number"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalKg     decimal.Decimal `json:"total_kg"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(o *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, o.ID),
		PONumber:        o.PONumber,
		SupplierID:      o.SupplierID,
		WarehouseID:     o.WarehouseID,
		TotalAmount:     o.TotalAmount,
		TotalKg:         o.TotalKg,
	}
}

// PurchaseOrderCancelledEvent is published when a purchase order is cancelled
type PurchaseOrderCancelledEvent struct {
	shared.BaseDomainEvent
	PONumber   string    `json:"po_number"`
	SupplierID uuid.UUID `json:"supplier_id"`
}

// NewPurchaseOrderCancelledEvent creates a new PurchaseOrderCancelledEvent
func NewPurchaseOrderCancelledEvent(o *PurchaseOrder) *PurchaseOrderCancelledEvent {
	return &PurchaseOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCancelled, AggregateTypePurchaseOrder, o.ID),
		PONumber:        o.PONumber,
		SupplierID:      o.SupplierID,
	}
}

// PurchaseOrderProductionCompletedEvent is published when the last item of an order is produced
type PurchaseOrderProductionCompletedEvent struct {
	shared.BaseDomainEvent
	PONumber          string          `json:"po_number"`
	ProductionKg      decimal.Decimal `json:"production_kg"`
	WastageKg         decimal.Decimal `json:"wastage_kg"`
	WastagePercentage decimal.Decimal `json:"wastage_percentage"`
}

// NewPurchaseOrderProductionCompletedEvent creates a new PurchaseOrderProductionCompletedEvent
func NewPurchaseOrderProductionCompletedEvent(o *PurchaseOrder) *PurchaseOrderProductionCompletedEvent {
	return &PurchaseOrderProductionCompletedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypePurchaseOrderProductionCompleted, AggregateTypePurchaseOrder, o.ID),
		PONumber:          o.PONumber,
		ProductionKg:      o.ProductionKg,
		WastageKg:         o.WastageKg,
		WastagePercentage: o.WastagePercentage,
	}
}

// SalesOrderCreatedEvent is published when a sales order is created
type SalesOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewSalesOrderCreatedEvent creates a new SalesOrderCreatedEvent
func NewSalesOrderCreatedEvent(o *SalesOrder) *SalesOrderCreatedEvent {
	return &SalesOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderCreated, AggregateTypeSalesOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		TotalAmount:     o.TotalAmount,
	}
}

// SalesOrderConfirmedEvent is published when a sales order deducts stock and raises its receivable
type SalesOrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string          `json:"order_number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalKg     decimal.Decimal `json:"total_kg"`
}

// NewSalesOrderConfirmedEvent creates a new SalesOrderConfirmedEvent
func NewSalesOrderConfirmedEvent(o *SalesOrder) *SalesOrderConfirmedEvent {
	return &SalesOrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderConfirmed, AggregateTypeSalesOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		WarehouseID:     o.WarehouseID,
		TotalAmount:     o.TotalAmount,
		TotalKg:         o.TotalKg,
	}
}

// SalesOrderCancelledEvent is published when a sales order is cancelled
type SalesOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
}

// NewSalesOrderCancelledEvent creates a new SalesOrderCancelledEvent
func NewSalesOrderCancelledEvent(o *SalesOrder) *SalesOrderCancelledEvent {
	return &SalesOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderCancelled, AggregateTypeSalesOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
	}
}
