package handler

import (
	tradeapp "github.com/erp/stockflow/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SalesOrderHandler handles sales order endpoints
type SalesOrderHandler struct {
	BaseHandler
	service *tradeapp.SalesOrderService
}

// NewSalesOrderHandler creates a new SalesOrderHandler
func NewSalesOrderHandler(service *tradeapp.SalesOrderService) *SalesOrderHandler {
	return &SalesOrderHandler{service: service}
}

// Create handles POST /sales-orders.
// A confirmed order (the default) deducts stock and posts the receivable; a draft touches neither.
func (h *SalesOrderHandler) Create(c *gin.Context) {
	var req tradeapp.CreateSalesOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// GetByID handles GET /sales-orders/:id
func (h *SalesOrderHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	order, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List handles GET /sales-orders
func (h *SalesOrderHandler) List(c *gin.Context) {
	var filter tradeapp.SalesOrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{"customer_id": &filter.CustomerID}) {
		return
	}
	orders, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Confirm handles POST /sales-orders/:id/confirm. The body is optional.
func (h *SalesOrderHandler) Confirm(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req tradeapp.ConfirmSalesOrderRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}
	order, err := h.service.Confirm(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel handles POST /sales-orders/:id/cancel
func (h *SalesOrderHandler) Cancel(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	order, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
