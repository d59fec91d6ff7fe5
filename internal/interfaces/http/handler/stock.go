package handler

import (
	inventoryapp "github.com/erp/stockflow/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StockHandler handles stock position endpoints
type StockHandler struct {
	BaseHandler
	service *inventoryapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(service *inventoryapp.StockService) *StockHandler {
	return &StockHandler{service: service}
}

// GetPosition handles GET /stock?product_id=&warehouse_id=
// A pair with no position row reports zero rather than 404.
func (h *StockHandler) GetPosition(c *gin.Context) {
	productID, ok := h.requiredQueryUUID(c, "product_id")
	if !ok {
		return
	}
	warehouseID, ok := h.requiredQueryUUID(c, "warehouse_id")
	if !ok {
		return
	}
	position, err := h.service.GetPosition(c.Request.Context(), productID, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, position)
}

// ListPositions handles GET /stock/positions
func (h *StockHandler) ListPositions(c *gin.Context) {
	var filter inventoryapp.PositionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{
		"product_id":   &filter.ProductID,
		"warehouse_id": &filter.WarehouseID,
	}) {
		return
	}
	positions, total, err := h.service.ListPositions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, positions, total, filter.Page, filter.PageSize)
}

// Adjust handles POST /stock/adjust
func (h *StockHandler) Adjust(c *gin.Context) {
	var req inventoryapp.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	movement, err := h.service.Adjust(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}

// Transfer handles POST /stock/transfer
func (h *StockHandler) Transfer(c *gin.Context) {
	var req inventoryapp.TransferStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.service.Transfer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// History handles GET /stock/history
func (h *StockHandler) History(c *gin.Context) {
	var req inventoryapp.HistoryRequest
	if !h.bindQuery(c, &req) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{
		"product_id":   &req.ProductID,
		"warehouse_id": &req.WarehouseID,
	}) {
		return
	}
	movements, err := h.service.History(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movements)
}
