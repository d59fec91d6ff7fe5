package production

import (
	"time"

	"github.com/erp/stockflow/internal/domain/production"
	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Production DTOs ====================

// ProcessItemRequest records production of one purchase order item
type ProcessItemRequest struct {
	PurchaseOrderID uuid.UUID       `json:"purchase_order_id" binding:"required"`
	ItemID          uuid.UUID       `json:"item_id" binding:"required"`
	ProductionKg    decimal.Decimal `json:"production_kg"`
	ProductionDate  *time.Time      `json:"production_date"`
	Notes           string          `json:"notes"`
}

// ItemProductionInput is one entry of a batch production request
type ItemProductionInput struct {
	ItemID       uuid.UUID       `json:"item_id" binding:"required"`
	ProductionKg decimal.Decimal `json:"production_kg"`
}

// ProcessOrderRequest records production of every pending item of a purchase order
type ProcessOrderRequest struct {
	PurchaseOrderID uuid.UUID             `json:"purchase_order_id" binding:"required"`
	Items           []ItemProductionInput `json:"items" binding:"required,min=1,dive"`
	ProductionDate  *time.Time            `json:"production_date"`
	Notes           string                `json:"notes"`
}

// HistoryFilter represents filter options for production history
type HistoryFilter struct {
	PurchaseOrderID *uuid.UUID `form:"-"`
	ProductID       *uuid.UUID `form:"-"`
	From            *time.Time `form:"from" time_format:"2006-01-02"`
	To              *time.Time `form:"to" time_format:"2006-01-02"`
	Page            int        `form:"page" binding:"omitempty,min=1"`
	PageSize        int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ProductionRecordResponse represents a production record with its derived wastage
type ProductionRecordResponse struct {
	ID                  uuid.UUID       `json:"id"`
	ProductionNumber    string          `json:"production_number"`
	PurchaseOrderID     uuid.UUID       `json:"purchase_order_id"`
	PurchaseOrderItemID *uuid.UUID      `json:"purchase_order_item_id,omitempty"`
	ProductID           uuid.UUID       `json:"product_id"`
	WarehouseID         uuid.UUID       `json:"warehouse_id"`
	PurchasedKg         decimal.Decimal `json:"purchased_kg"`
	ProductionKg        decimal.Decimal `json:"production_kg"`
	WastageKg           decimal.Decimal `json:"wastage_kg"`
	WastagePercentage   decimal.Decimal `json:"wastage_percentage"`
	ProductionDate      time.Time       `json:"production_date"`
	Notes               string          `json:"notes,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

// ToProductionRecordResponse converts a domain ProductionRecord to a response
func ToProductionRecordResponse(r *production.ProductionRecord) ProductionRecordResponse {
	return ProductionRecordResponse{
		ID:                  r.ID,
		ProductionNumber:    r.ProductionNumber,
		PurchaseOrderID:     r.PurchaseOrderID,
		PurchaseOrderItemID: r.PurchaseOrderItemID,
		ProductID:           r.ProductID,
		WarehouseID:         r.WarehouseID,
		PurchasedKg:         r.PurchasedKg,
		ProductionKg:        r.ProductionKg,
		WastageKg:           r.WastageKg(),
		WastagePercentage:   r.WastagePercentage().Round(2),
		ProductionDate:      r.ProductionDate,
		Notes:               r.Notes,
		CreatedAt:           r.CreatedAt,
	}
}

// ToProductionRecordResponses converts a slice of records
func ToProductionRecordResponses(records []production.ProductionRecord) []ProductionRecordResponse {
	out := make([]ProductionRecordResponse, len(records))
	for i := range records {
		out[i] = ToProductionRecordResponse(&records[i])
	}
	return out
}

// ProductionResultResponse is returned after an item or a whole order is produced
type ProductionResultResponse struct {
	PurchaseOrderID       uuid.UUID                  `json:"purchase_order_id"`
	PONumber              string                     `json:"po_number"`
	Records               []ProductionRecordResponse `json:"records"`
	IsProductionCompleted bool                       `json:"is_production_completed"`
	ProductionKg          decimal.Decimal            `json:"production_kg"`
	WastageKg             decimal.Decimal            `json:"wastage_kg"`
	WastagePercentage     decimal.Decimal            `json:"wastage_percentage"`
	PendingItemCount      int                        `json:"pending_item_count"`
}

func toProductionResult(order *trade.PurchaseOrder, records []*production.ProductionRecord) *ProductionResultResponse {
	out := make([]ProductionRecordResponse, len(records))
	for i, r := range records {
		out[i] = ToProductionRecordResponse(r)
	}
	return &ProductionResultResponse{
		PurchaseOrderID:       order.ID,
		PONumber:              order.PONumber,
		Records:               out,
		IsProductionCompleted: order.IsProductionCompleted,
		ProductionKg:          order.ProductionKg,
		WastageKg:             order.WastageKg,
		WastagePercentage:     order.WastagePercentage,
		PendingItemCount:      len(order.PendingItems()),
	}
}

// ProductionItemResponse is one purchase order item as seen by production
type ProductionItemResponse struct {
	ItemID                uuid.UUID        `json:"item_id"`
	ProductID             uuid.UUID        `json:"product_id"`
	UnitType              string           `json:"unit_type"`
	Quantity              decimal.Decimal  `json:"quantity"`
	BagWeight             *decimal.Decimal `json:"bag_weight,omitempty"`
	PurchasedKg           decimal.Decimal  `json:"purchased_kg"`
	IsProductionCompleted bool             `json:"is_production_completed"`
	ProductionKg          *decimal.Decimal `json:"production_kg,omitempty"`
	WastageKg             *decimal.Decimal `json:"wastage_kg,omitempty"`
}

// ProductionContextResponse is everything needed to record production of an order
type ProductionContextResponse struct {
	PurchaseOrderID       uuid.UUID                  `json:"purchase_order_id"`
	PONumber              string                     `json:"po_number"`
	SupplierID            uuid.UUID                  `json:"supplier_id"`
	WarehouseID           uuid.UUID                  `json:"warehouse_id"`
	Status                string                     `json:"status"`
	IsProductionCompleted bool                       `json:"is_production_completed"`
	PurchasedKg           decimal.Decimal            `json:"purchased_kg"`
	PendingKg             decimal.Decimal            `json:"pending_kg"`
	ProductionKg          decimal.Decimal            `json:"production_kg"`
	WastageKg             decimal.Decimal            `json:"wastage_kg"`
	WastagePercentage     decimal.Decimal            `json:"wastage_percentage"`
	ProductionDate        *time.Time                 `json:"production_date,omitempty"`
	Items                 []ProductionItemResponse   `json:"items"`
	Records               []ProductionRecordResponse `json:"records"`
}

func toProductionContext(order *trade.PurchaseOrder, records []production.ProductionRecord) *ProductionContextResponse {
	items := make([]ProductionItemResponse, len(order.Items))
	pendingKg := decimal.Zero
	for i := range order.Items {
		item := &order.Items[i]
		resp := ProductionItemResponse{
			ItemID:                item.ID,
			ProductID:             item.ProductID,
			UnitType:              item.UnitType.String(),
			Quantity:              item.Quantity,
			BagWeight:             item.BagWeight,
			PurchasedKg:           item.PurchasedKg(),
			IsProductionCompleted: item.IsProductionCompleted,
			ProductionKg:          item.ProductionKg,
		}
		if item.ProductionKg != nil {
			w := item.PurchasedKg().Sub(*item.ProductionKg)
			resp.WastageKg = &w
		} else {
			pendingKg = pendingKg.Add(item.PurchasedKg())
		}
		items[i] = resp
	}
	return &ProductionContextResponse{
		PurchaseOrderID:       order.ID,
		PONumber:              order.PONumber,
		SupplierID:            order.SupplierID,
		WarehouseID:           order.WarehouseID,
		Status:                order.Status.String(),
		IsProductionCompleted: order.IsProductionCompleted,
		PurchasedKg:           order.TotalKg,
		PendingKg:             pendingKg,
		ProductionKg:          order.ProductionKg,
		WastageKg:             order.WastageKg,
		WastagePercentage:     order.WastagePercentage,
		ProductionDate:        order.ProductionDate,
		Items:                 items,
		Records:               ToProductionRecordResponses(records),
	}
}

// PendingItemResponse is a purchase order item still waiting for production
type PendingItemResponse struct {
	PurchaseOrderID uuid.UUID       `json:"purchase_order_id"`
	PONumber        string          `json:"po_number"`
	SupplierID      uuid.UUID       `json:"supplier_id"`
	WarehouseID     uuid.UUID       `json:"warehouse_id"`
	OrderDate       time.Time       `json:"order_date"`
	ItemID          uuid.UUID       `json:"item_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	UnitType        string          `json:"unit_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	PurchasedKg     decimal.Decimal `json:"purchased_kg"`
}

// ==================== Wastage DTOs ====================

// ReportWastageRequest reports wastage found outside production
type ReportWastageRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	CostValue   decimal.Decimal `json:"cost_value"`
	Reason      string          `json:"reason" binding:"max=50"`
	Description string          `json:"description"`
	WastageDate *time.Time      `json:"wastage_date"`
}

// WastageListFilter represents filter options for wastage list
type WastageListFilter struct {
	Status      string     `form:"status" binding:"omitempty,oneof=pending approved"`
	Source      string     `form:"source" binding:"omitempty,oneof=production manual"`
	ProductID   *uuid.UUID `form:"-"`
	WarehouseID *uuid.UUID `form:"-"`
	From        *time.Time `form:"from" time_format:"2006-01-02"`
	To          *time.Time `form:"to" time_format:"2006-01-02"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// WastageResponse represents a wastage record in API responses
type WastageResponse struct {
	ID                 uuid.UUID       `json:"id"`
	ProductionRecordID *uuid.UUID      `json:"production_record_id,omitempty"`
	ProductID          uuid.UUID       `json:"product_id"`
	WarehouseID        uuid.UUID       `json:"warehouse_id"`
	Quantity           decimal.Decimal `json:"quantity"`
	CostValue          decimal.Decimal `json:"cost_value"`
	Reason             string          `json:"reason"`
	Description        string          `json:"description,omitempty"`
	WastageDate        time.Time       `json:"wastage_date"`
	Status             string          `json:"status"`
	Source             string          `json:"source"`
	ApprovedAt         *time.Time      `json:"approved_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// ToWastageResponse converts a domain WastageRecord to a response
func ToWastageResponse(w *production.WastageRecord) WastageResponse {
	return WastageResponse{
		ID:                 w.ID,
		ProductionRecordID: w.ProductionRecordID,
		ProductID:          w.ProductID,
		WarehouseID:        w.WarehouseID,
		Quantity:           w.Quantity,
		CostValue:          w.CostValue,
		Reason:             w.Reason,
		Description:        w.Description,
		WastageDate:        w.WastageDate,
		Status:             string(w.Status),
		Source:             string(w.Source),
		ApprovedAt:         w.ApprovedAt,
		CreatedAt:          w.CreatedAt,
	}
}

// ==================== Cutting DTOs ====================

// CuttingOutputInput is one requested output of a cutting operation
type CuttingOutputInput struct {
	ProductID    uuid.UUID       `json:"product_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	QualityGrade string          `json:"quality_grade" binding:"max=10"`
}

// CreateCuttingRequest creates a pending cutting operation
type CreateCuttingRequest struct {
	InputProductID uuid.UUID            `json:"input_product_id" binding:"required"`
	InputQuantity  decimal.Decimal      `json:"input_quantity"`
	WarehouseID    uuid.UUID            `json:"warehouse_id" binding:"required"`
	Outputs        []CuttingOutputInput `json:"outputs" binding:"required,min=1,dive"`
	OperatorName   string               `json:"operator_name" binding:"max=100"`
	Notes          string               `json:"notes"`
}

// CuttingListFilter represents filter options for cutting operations
type CuttingListFilter struct {
	Status      string     `form:"status" binding:"omitempty,oneof=pending completed cancelled"`
	WarehouseID *uuid.UUID `form:"-"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CuttingOutputResponse represents one output of a cutting operation
type CuttingOutputResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	QualityGrade string          `json:"quality_grade"`
}

// CuttingResponse represents a cutting operation in API responses
type CuttingResponse struct {
	ID              uuid.UUID               `json:"id"`
	OperationNumber string                  `json:"operation_number"`
	InputProductID  uuid.UUID               `json:"input_product_id"`
	InputQuantity   decimal.Decimal         `json:"input_quantity"`
	TotalOutput     decimal.Decimal         `json:"total_output"`
	WarehouseID     uuid.UUID               `json:"warehouse_id"`
	OperationDate   time.Time               `json:"operation_date"`
	OperatorName    string                  `json:"operator_name,omitempty"`
	Status          string                  `json:"status"`
	Notes           string                  `json:"notes,omitempty"`
	Outputs         []CuttingOutputResponse `json:"outputs"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// ToCuttingResponse converts a domain CuttingOperation to a response
func ToCuttingResponse(c *production.CuttingOperation) CuttingResponse {
	outputs := make([]CuttingOutputResponse, len(c.Outputs))
	for i, o := range c.Outputs {
		outputs[i] = CuttingOutputResponse{
			ID:           o.ID,
			ProductID:    o.OutputProductID,
			Quantity:     o.Quantity,
			QualityGrade: o.QualityGrade,
		}
	}
	return CuttingResponse{
		ID:              c.ID,
		OperationNumber: c.OperationNumber,
		InputProductID:  c.InputProductID,
		InputQuantity:   c.InputQuantity,
		TotalOutput:     c.TotalOutput(),
		WarehouseID:     c.WarehouseID,
		OperationDate:   c.OperationDate,
		OperatorName:    c.OperatorName,
		Status:          string(c.Status),
		Notes:           c.Notes,
		Outputs:         outputs,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
