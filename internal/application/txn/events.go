package txn

import (
	"context"

	"github.com/erp/stockflow/internal/domain/shared"
	"go.uber.org/zap"
)

// PublishEvents publishes and clears the pending events of the given aggregates.
// It must only be called once the transaction that produced them has committed.
// Handler failures are logged and never undo the committed work.
func PublishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, aggregates ...shared.AggregateRoot) {
	for _, agg := range aggregates {
		events := agg.PullEvents()
		if publisher == nil || len(events) == 0 {
			continue
		}
		if err := publisher.Publish(ctx, events...); err != nil && logger != nil {
			logger.Warn("failed to publish domain events",
				zap.String("aggregate_id", agg.AggregateID().String()),
				zap.Int("event_count", len(events)),
				zap.Error(err),
			)
		}
	}
}
