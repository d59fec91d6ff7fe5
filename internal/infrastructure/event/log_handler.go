package event

import (
	"context"

	"github.com/erp/stockflow/internal/domain/shared"
	"go.uber.org/zap"
)

// LogHandler writes one structured log line per domain event
type LogHandler struct {
	logger *zap.Logger
}

// NewLogHandler creates a handler that logs every event it receives
func NewLogHandler(logger *zap.Logger) *LogHandler {
	return &LogHandler{logger: logger}
}

// EventTypes is empty, so the handler subscribes to all events
func (h *LogHandler) EventTypes() []string {
	return nil
}

// Handle logs the event
func (h *LogHandler) Handle(_ context.Context, ev shared.DomainEvent) error {
	h.logger.Info("Domain event",
		zap.String("event_type", ev.EventType()),
		zap.String("event_id", ev.EventID().String()),
		zap.String("aggregate_type", ev.AggregateType()),
		zap.String("aggregate_id", ev.AggregateID().String()),
		zap.Time("occurred_at", ev.OccurredAt()),
	)
	return nil
}

var _ shared.EventHandler = (*LogHandler)(nil)
