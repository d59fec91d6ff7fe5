package handler

import (
	"net/http"
	"time"

	ledgerapp "github.com/erp/stockflow/internal/application/ledger"
	"github.com/erp/stockflow/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PettyCashHandler handles petty cash and client ledger endpoints
type PettyCashHandler struct {
	BaseHandler
	service *ledgerapp.LedgerService
}

// NewPettyCashHandler creates a new PettyCashHandler
func NewPettyCashHandler(service *ledgerapp.LedgerService) *PettyCashHandler {
	return &PettyCashHandler{service: service}
}

// Create handles POST /petty-cash
func (h *PettyCashHandler) Create(c *gin.Context) {
	var req ledgerapp.CreatePettyCashRequest
	if !h.bindJSON(c, &req) {
		return
	}
	posting, err := h.service.CreatePettyCash(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, posting)
}

// List handles GET /petty-cash. Totals are reported alongside the page.
func (h *PettyCashHandler) List(c *gin.Context) {
	var filter ledgerapp.PostingListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if !h.queryUUIDs(c, map[string]**uuid.UUID{"client_id": &filter.ClientID}) {
		return
	}
	result, err := h.service.ListPostings(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result, result.Total, result.Page, result.PageSize)
}

// Update handles PUT /petty-cash/:id
func (h *PettyCashHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req ledgerapp.UpdatePettyCashRequest
	if !h.bindJSON(c, &req) {
		return
	}
	posting, err := h.service.UpdatePettyCash(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, posting)
}

// Delete handles DELETE /petty-cash/:id
func (h *PettyCashHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeletePettyCash(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"id": id, "voided": true}))
}

// DailySummary handles GET /petty-cash/daily-summary?date=YYYY-MM-DD, defaulting to today
func (h *PettyCashHandler) DailySummary(c *gin.Context) {
	date, ok := h.queryDate(c, "date")
	if !ok {
		return
	}
	day := time.Now()
	if date != nil {
		day = *date
	}
	summary, err := h.service.DailySummary(c.Request.Context(), day)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ClientStatement handles GET /clients/:id/statement?from=&to=&page=&page_size=
func (h *PettyCashHandler) ClientStatement(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var filter ledgerapp.StatementFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	statement, err := h.service.ClientStatement(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, statement, statement.Total, statement.Page, statement.PageSize)
}

// BalanceCheck handles GET /clients/:id/balance-check
func (h *PettyCashHandler) BalanceCheck(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	check, err := h.service.VerifyBalance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, check)
}
