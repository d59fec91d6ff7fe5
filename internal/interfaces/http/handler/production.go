package handler

import (
	productionapp "github.com/erp/stockflow/internal/application/production"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductionHandler handles production processing endpoints
type ProductionHandler struct {
	BaseHandler
	service *productionapp.ProductionService
}

// NewProductionHandler creates a new ProductionHandler
func NewProductionHandler(service *productionapp.ProductionService) *ProductionHandler {
	return &ProductionHandler{service: service}
}

// ProcessItem handles POST /production/items
func (h *ProductionHandler) ProcessItem(c *gin.Context) {
	var req productionapp.ProcessItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.service.ProcessItem(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ProcessOrder handles POST /production/orders; every pending item must be listed
func (h *ProductionHandler) ProcessOrder(c *gin.Context) {
	var req productionapp.ProcessOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.service.ProcessOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetContext handles GET /production/orders/:id
func (h *ProductionHandler) GetContext(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	ctxResp, err := h.service.GetProductionContext(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ctxResp)
}

// HistoryByOrder handles GET /production/orders/:id/history
func (h *ProductionHandler) HistoryByOrder(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	records, err := h.service.HistoryByOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}

// History handles GET /production/history
func (h *ProductionHandler) History(c *gin.Context) {
	var filter productionapp.HistoryFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{
		"purchase_order_id": &filter.PurchaseOrderID,
		"product_id":        &filter.ProductID,
	}) {
		return
	}
	records, total, err := h.service.History(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, records, total, filter.Page, filter.PageSize)
}

// PendingItems handles GET /production/pending-items
func (h *ProductionHandler) PendingItems(c *gin.Context) {
	items, err := h.service.PendingItems(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
