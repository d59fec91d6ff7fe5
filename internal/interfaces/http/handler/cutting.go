package handler

import (
	"context"

	productionapp "github.com/erp/stockflow/internal/application/production"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CuttingHandler handles cutting operation endpoints
type CuttingHandler struct {
	BaseHandler
	service *productionapp.CuttingService
}

// NewCuttingHandler creates a new CuttingHandler
func NewCuttingHandler(service *productionapp.CuttingService) *CuttingHandler {
	return &CuttingHandler{service: service}
}

// Create handles POST /cutting
func (h *CuttingHandler) Create(c *gin.Context) {
	var req productionapp.CreateCuttingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	op, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, op)
}

// Process handles POST /cutting/:id/process
func (h *CuttingHandler) Process(c *gin.Context) {
	h.byID(c, h.service.Process)
}

// Cancel handles POST /cutting/:id/cancel
func (h *CuttingHandler) Cancel(c *gin.Context) {
	h.byID(c, h.service.Cancel)
}

// GetByID handles GET /cutting/:id
func (h *CuttingHandler) GetByID(c *gin.Context) {
	h.byID(c, h.service.GetByID)
}

// List handles GET /cutting
func (h *CuttingHandler) List(c *gin.Context) {
	var filter productionapp.CuttingListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{"warehouse_id": &filter.WarehouseID}) {
		return
	}
	ops, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, ops, total, filter.Page, filter.PageSize)
}

func (h *CuttingHandler) byID(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*productionapp.CuttingResponse, error)) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	op, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, op)
}
