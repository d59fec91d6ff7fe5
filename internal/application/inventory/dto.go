package inventory

import (
	"time"

	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PositionResponse represents a stock position in API responses
type PositionResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

// PositionListFilter represents filter options for the stock position list
type PositionListFilter struct {
	ProductID   *uuid.UUID `form:"-"`
	WarehouseID *uuid.UUID `form:"-"`
	NonZeroOnly bool       `form:"non_zero_only"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// AdjustStockRequest is a manual signed correction
type AdjustStockRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	Notes       string          `json:"notes"`
}

// TransferStockRequest moves stock between warehouses
type TransferStockRequest struct {
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	FromWarehouseID uuid.UUID       `json:"from_warehouse_id" binding:"required"`
	ToWarehouseID   uuid.UUID       `json:"to_warehouse_id" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity"`
	Notes           string          `json:"notes"`
}

// HistoryRequest represents filter options for the movement history
type HistoryRequest struct {
	ProductID    *uuid.UUID `form:"-"`
	WarehouseID  *uuid.UUID `form:"-"`
	MovementType string     `form:"movement_type" binding:"omitempty,oneof=purchase production sale adjustment transfer_in transfer_out cutting"`
	Limit        int        `form:"limit" binding:"omitempty,min=1"`
}

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID                     uuid.UUID       `json:"id"`
	ProductID              uuid.UUID       `json:"product_id"`
	WarehouseID            uuid.UUID       `json:"warehouse_id"`
	MovementType           string          `json:"movement_type"`
	Quantity               decimal.Decimal `json:"quantity"`
	BalanceAfter           decimal.Decimal `json:"balance_after"`
	ReferenceType          string          `json:"reference_type,omitempty"`
	ReferenceID            *uuid.UUID      `json:"reference_id,omitempty"`
	CounterpartWarehouseID *uuid.UUID      `json:"counterpart_warehouse_id,omitempty"`
	Notes                  string          `json:"notes,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
}

// TransferResponse holds both legs of a transfer
type TransferResponse struct {
	Out MovementResponse `json:"out"`
	In  MovementResponse `json:"in"`
}

// ToPositionResponse converts a domain position to a response
func ToPositionResponse(p *inventory.StockPosition) PositionResponse {
	resp := PositionResponse{
		ProductID:   p.ProductID,
		WarehouseID: p.WarehouseID,
		Quantity:    p.Quantity,
	}
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		resp.UpdatedAt = &t
	}
	return resp
}

// ToMovementResponse converts a domain movement to a response
func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:                     m.ID,
		ProductID:              m.ProductID,
		WarehouseID:            m.WarehouseID,
		MovementType:           string(m.MovementType),
		Quantity:               m.Quantity,
		BalanceAfter:           m.BalanceAfter,
		ReferenceType:          m.ReferenceType,
		ReferenceID:            m.ReferenceID,
		CounterpartWarehouseID: m.CounterpartWarehouseID,
		Notes:                  m.Notes,
		CreatedAt:              m.CreatedAt,
	}
}

// ToMovementResponses converts a slice of movements
func ToMovementResponses(movements []inventory.StockMovement) []MovementResponse {
	out := make([]MovementResponse, len(movements))
	for i := range movements {
		out[i] = ToMovementResponse(&movements[i])
	}
	return out
}
