package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader lets clients retry a write without applying it twice
const IdempotencyKeyHeader = "Idempotency-Key"

// MaxIdempotencyKeyLength bounds the header value
const MaxIdempotencyKeyLength = 255

// Idempotency rejects a second request carrying an Idempotency-Key already
// seen for the same method and path within ttl. Keys of requests that fail
// (status >= 400) are released so the client can retry with the same key.
// Requests without the header pass through. When the store itself fails the
// request is served unguarded and the failure is logged.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(IdempotencyKeyHeader)
		if header == "" {
			c.Next()
			return
		}
		if len(header) > MaxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		key := c.Request.Method + " " + c.Request.URL.Path + "|" + header
		ctx := c.Request.Context()

		fresh, err := store.MarkProcessed(ctx, key, ttl)
		if err != nil {
			logger.Warn("Idempotency store unavailable, serving request unguarded",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err),
			)
			c.Next()
			return
		}
		if !fresh {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeDuplicateRequest,
				"A request with this Idempotency-Key was already processed",
				GetRequestID(c),
			))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Release(context.WithoutCancel(ctx), key); err != nil {
				logger.Warn("Failed to release idempotency key",
					zap.String("request_id", GetRequestID(c)),
					zap.Error(err),
				)
			}
		}
	}
}
