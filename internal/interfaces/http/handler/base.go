package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/infrastructure/logger"
	"github.com/erp/stockflow/internal/interfaces/http/dto"
	"github.com/erp/stockflow/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError converts an error returned by a service into a response.
// Domain errors map by kind; persistence and unknown errors are logged and
// answered with a generic 500 so store details never reach the client.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) || domainErr.Kind == shared.KindPersistence {
		logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
		code := dto.ErrCodeInternal
		if domainErr != nil {
			code = dto.ErrCodePersistence
		}
		h.Error(c, http.StatusInternalServerError, code, "An unexpected error occurred")
		return
	}

	code := dto.CodeForKind(domainErr.Kind)
	h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
}

// bindJSON binds the request body; on failure it writes the 400 response and returns false
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.handleBindError(c, err)
		return false
	}
	return true
}

// bindOptionalJSON binds a body that may be absent
func (h *BaseHandler) bindOptionalJSON(c *gin.Context, req any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		h.handleBindError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters; on failure it writes the 400 response and returns false
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.handleBindError(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) handleBindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		middleware.HandleValidationError(c, err)
		return
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request: "+err.Error())
}

// pathID parses the :id path parameter; on failure it writes the 400 response
func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid id: must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// queryUUIDs parses optional UUID query parameters into their targets
func (h *BaseHandler) queryUUIDs(c *gin.Context, targets map[string]**uuid.UUID) bool {
	for name, target := range targets {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid "+name+": must be a UUID")
			return false
		}
		*target = &id
	}
	return true
}

// requiredQueryUUID parses a mandatory UUID query parameter
func (h *BaseHandler) requiredQueryUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Query(name))
	if err != nil {
		h.BadRequest(c, name+" is required and must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// queryDate parses an optional YYYY-MM-DD query parameter
func (h *BaseHandler) queryDate(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		h.BadRequest(c, "Invalid "+name+": expected YYYY-MM-DD")
		return nil, false
	}
	return &d, true
}
