package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	productionapp "github.com/erp/stockflow/internal/application/production"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WastageHandler handles wastage endpoints
type WastageHandler struct {
	BaseHandler
	service *productionapp.WastageService
}

// NewWastageHandler creates a new WastageHandler
func NewWastageHandler(service *productionapp.WastageService) *WastageHandler {
	return &WastageHandler{service: service}
}

// Report handles POST /wastage. Manual reports start pending.
func (h *WastageHandler) Report(c *gin.Context) {
	var req productionapp.ReportWastageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	record, err := h.service.Report(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, record)
}

// Approve handles POST /wastage/:id/approve
func (h *WastageHandler) Approve(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	record, err := h.service.Approve(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// List handles GET /wastage
func (h *WastageHandler) List(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	records, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, records, total, filter.Page, filter.PageSize)
}

// Export handles GET /wastage/export, streaming the filtered records as an xlsx workbook
func (h *WastageHandler) Export(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	// Buffer so a failure can still be answered with the JSON envelope.
	var buf bytes.Buffer
	if err := h.service.Export(c.Request.Context(), filter, &buf); err != nil {
		h.HandleError(c, err)
		return
	}
	filename := fmt.Sprintf("wastage_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *WastageHandler) bindFilter(c *gin.Context) (productionapp.WastageListFilter, bool) {
	var filter productionapp.WastageListFilter
	if !h.bindQuery(c, &filter) {
		return filter, false
	}
	ok := h.queryUUIDs(c, map[string]**uuid.UUID{
		"product_id":   &filter.ProductID,
		"warehouse_id": &filter.WarehouseID,
	})
	return filter, ok
}
