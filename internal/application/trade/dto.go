package trade

import (
	"time"

	"github.com/erp/stockflow/internal/domain/catalog"
	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Shared Line DTOs ====================

// OrderItemInput represents one line of a create order request.
// Derived amounts are never accepted from the caller.
type OrderItemInput struct {
	ProductID    uuid.UUID        `json:"product_id" binding:"required"`
	UnitType     string           `json:"unit_type" binding:"omitempty,unit_type"`
	Quantity     decimal.Decimal  `json:"quantity"`
	BagWeight    *decimal.Decimal `json:"bag_weight"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	TaxRate      decimal.Decimal  `json:"tax_rate"`
	DiscountRate decimal.Decimal  `json:"discount_rate"`
}

// ToLineInputs converts request lines into pricing inputs
func ToLineInputs(items []OrderItemInput) []trade.LineInput {
	lines := make([]trade.LineInput, len(items))
	for i, item := range items {
		lines[i] = trade.LineInput{
			ProductID:    item.ProductID,
			UnitType:     catalog.UnitType(item.UnitType),
			Quantity:     item.Quantity,
			BagWeight:    item.BagWeight,
			UnitPrice:    item.UnitPrice,
			TaxRate:      item.TaxRate,
			DiscountRate: item.DiscountRate,
		}
	}
	return lines
}

// OrderItemResponse represents a priced order line in API responses
type OrderItemResponse struct {
	ID             uuid.UUID        `json:"id"`
	ProductID      uuid.UUID        `json:"product_id"`
	UnitType       string           `json:"unit_type"`
	Quantity       decimal.Decimal  `json:"quantity"`
	BagWeight      *decimal.Decimal `json:"bag_weight,omitempty"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	TaxRate        decimal.Decimal  `json:"tax_rate"`
	DiscountRate   decimal.Decimal  `json:"discount_rate"`
	TotalKg        decimal.Decimal  `json:"total_kg"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
	TaxAmount      decimal.Decimal  `json:"tax_amount"`
	LineTotal      decimal.Decimal  `json:"line_total"`
}

func toOrderItemResponse(id uuid.UUID, l trade.OrderLine) OrderItemResponse {
	return OrderItemResponse{
		ID:             id,
		ProductID:      l.ProductID,
		UnitType:       l.UnitType.String(),
		Quantity:       l.Quantity,
		BagWeight:      l.BagWeight,
		UnitPrice:      l.UnitPrice,
		TaxRate:        l.TaxRate,
		DiscountRate:   l.DiscountRate,
		TotalKg:        l.TotalKg,
		Subtotal:       l.Subtotal,
		DiscountAmount: l.DiscountAmount,
		TaxAmount:      l.TaxAmount,
		LineTotal:      l.LineTotal,
	}
}

// ==================== Purchase Order DTOs ====================

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID           uuid.UUID        `json:"supplier_id" binding:"required"`
	WarehouseID          uuid.UUID        `json:"warehouse_id" binding:"required"`
	OrderDate            *time.Time       `json:"order_date"`
	ExpectedDeliveryDate *time.Time       `json:"expected_delivery_date"`
	Items                []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	MakePayment          bool             `json:"make_payment"`
	PaymentMethod        string           `json:"payment_method" binding:"max=30"`
	Notes                string           `json:"notes"`
}

// PurchaseOrderListFilter represents filter options for purchase order list
type PurchaseOrderListFilter struct {
	Status                string     `form:"status" binding:"omitempty,oneof=pending confirmed received cancelled"`
	SupplierID            *uuid.UUID `form:"-"`
	IsProductionCompleted *bool      `form:"is_production_completed"`
	From                  *time.Time `form:"from" time_format:"2006-01-02"`
	To                    *time.Time `form:"to" time_format:"2006-01-02"`
	Page                  int        `form:"page" binding:"omitempty,min=1"`
	PageSize              int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy               string     `form:"order_by"`
	OrderDir              string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PurchaseOrderItemResponse represents a purchase order item in API responses
type PurchaseOrderItemResponse struct {
	OrderItemResponse
	IsProductionCompleted bool             `json:"is_production_completed"`
	ProductionKg          *decimal.Decimal `json:"production_kg,omitempty"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID                    uuid.UUID                   `json:"id"`
	PONumber              string                      `json:"po_number"`
	SupplierID            uuid.UUID                   `json:"supplier_id"`
	WarehouseID           uuid.UUID                   `json:"warehouse_id"`
	OrderDate             time.Time                   `json:"order_date"`
	ExpectedDeliveryDate  *time.Time                  `json:"expected_delivery_date,omitempty"`
	Subtotal              decimal.Decimal             `json:"subtotal"`
	DiscountAmount        decimal.Decimal             `json:"discount_amount"`
	TaxAmount             decimal.Decimal             `json:"tax_amount"`
	TotalAmount           decimal.Decimal             `json:"total_amount"`
	TotalKg               decimal.Decimal             `json:"total_kg"`
	Status                string                      `json:"status"`
	IsProductionCompleted bool                        `json:"is_production_completed"`
	ProductionKg          decimal.Decimal             `json:"production_kg"`
	WastageKg             decimal.Decimal             `json:"wastage_kg"`
	WastagePercentage     decimal.Decimal             `json:"wastage_percentage"`
	ProductionDate        *time.Time                  `json:"production_date,omitempty"`
	PaidImmediately       bool                        `json:"paid_immediately"`
	Notes                 string                      `json:"notes,omitempty"`
	Items                 []PurchaseOrderItemResponse `json:"items"`
	CreatedAt             time.Time                   `json:"created_at"`
	UpdatedAt             time.Time                   `json:"updated_at"`
}

// PendingProductionResponse summarises an order still waiting for production
type PendingProductionResponse struct {
	ID               uuid.UUID       `json:"id"`
	PONumber         string          `json:"po_number"`
	SupplierID       uuid.UUID       `json:"supplier_id"`
	WarehouseID      uuid.UUID       `json:"warehouse_id"`
	OrderDate        time.Time       `json:"order_date"`
	Status           string          `json:"status"`
	ItemCount        int             `json:"item_count"`
	PendingItemCount int             `json:"pending_item_count"`
	TotalKg          decimal.Decimal `json:"total_kg"`
	PendingKg        decimal.Decimal `json:"pending_kg"`
}

// ToPurchaseOrderResponse converts a domain PurchaseOrder to a response
func ToPurchaseOrderResponse(o *trade.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		items[i] = PurchaseOrderItemResponse{
			OrderItemResponse:     toOrderItemResponse(item.ID, item.OrderLine),
			IsProductionCompleted: item.IsProductionCompleted,
			ProductionKg:          item.ProductionKg,
		}
	}
	return PurchaseOrderResponse{
		ID:                    o.ID,
		PONumber:              o.PONumber,
		SupplierID:            o.SupplierID,
		WarehouseID:           o.WarehouseID,
		OrderDate:             o.OrderDate,
		ExpectedDeliveryDate:  o.ExpectedDeliveryDate,
		Subtotal:              o.Subtotal,
		DiscountAmount:        o.DiscountAmount,
		TaxAmount:             o.TaxAmount,
		TotalAmount:           o.TotalAmount,
		TotalKg:               o.TotalKg,
		Status:                o.Status.String(),
		IsProductionCompleted: o.IsProductionCompleted,
		ProductionKg:          o.ProductionKg,
		WastageKg:             o.WastageKg,
		WastagePercentage:     o.WastagePercentage,
		ProductionDate:        o.ProductionDate,
		PaidImmediately:       o.PaidImmediately,
		Notes:                 o.Notes,
		Items:                 items,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
}

// ToPendingProductionResponse summarises the order's production progress
func ToPendingProductionResponse(o *trade.PurchaseOrder) PendingProductionResponse {
	pending := o.PendingItems()
	pendingKg := decimal.Zero
	for _, item := range pending {
		pendingKg = pendingKg.Add(item.PurchasedKg())
	}
	return PendingProductionResponse{
		ID:               o.ID,
		PONumber:         o.PONumber,
		SupplierID:       o.SupplierID,
		WarehouseID:      o.WarehouseID,
		OrderDate:        o.OrderDate,
		Status:           o.Status.String(),
		ItemCount:        len(o.Items),
		PendingItemCount: len(pending),
		TotalKg:          o.TotalKg,
		PendingKg:        pendingKg,
	}
}

// ==================== Sales Order DTOs ====================

// CreateSalesOrderRequest represents a request to create a sales order
type CreateSalesOrderRequest struct {
	CustomerID      uuid.UUID        `json:"customer_id" binding:"required"`
	WarehouseID     uuid.UUID        `json:"warehouse_id" binding:"required"`
	OrderDate       *time.Time       `json:"order_date"`
	Items           []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	ShippingCharges decimal.Decimal  `json:"shipping_charges"`
	Status          string           `json:"status" binding:"omitempty,oneof=draft confirmed"`
	MakePayment     bool             `json:"make_payment"`
	PaymentMethod   string           `json:"payment_method" binding:"max=30"`
	Notes           string           `json:"notes"`
}

// ConfirmSalesOrderRequest represents a request to confirm a draft sales order
type ConfirmSalesOrderRequest struct {
	MakePayment   bool   `json:"make_payment"`
	PaymentMethod string `json:"payment_method" binding:"max=30"`
}

// SalesOrderListFilter represents filter options for sales order list
type SalesOrderListFilter struct {
	Status     string     `form:"status" binding:"omitempty,oneof=draft confirmed cancelled"`
	CustomerID *uuid.UUID `form:"-"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SalesOrderResponse represents a sales order in API responses
type SalesOrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	CustomerID      uuid.UUID           `json:"customer_id"`
	WarehouseID     uuid.UUID           `json:"warehouse_id"`
	OrderDate       time.Time           `json:"order_date"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount"`
	TaxAmount       decimal.Decimal     `json:"tax_amount"`
	ShippingCharges decimal.Decimal     `json:"shipping_charges"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	TotalKg         decimal.Decimal     `json:"total_kg"`
	Status          string              `json:"status"`
	StockDeducted   bool                `json:"stock_deducted"`
	PaidImmediately bool                `json:"paid_immediately"`
	Notes           string              `json:"notes,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// ToSalesOrderResponse converts a domain SalesOrder to a response
func ToSalesOrderResponse(o *trade.SalesOrder) SalesOrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i := range o.Items {
		items[i] = toOrderItemResponse(o.Items[i].ID, o.Items[i].OrderLine)
	}
	return SalesOrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		WarehouseID:     o.WarehouseID,
		OrderDate:       o.OrderDate,
		Subtotal:        o.Subtotal,
		DiscountAmount:  o.DiscountAmount,
		TaxAmount:       o.TaxAmount,
		ShippingCharges: o.ShippingCharges,
		TotalAmount:     o.TotalAmount,
		TotalKg:         o.TotalKg,
		Status:          o.Status.String(),
		StockDeducted:   o.StockDeducted,
		PaidImmediately: o.PaidImmediately,
		Notes:           o.Notes,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
