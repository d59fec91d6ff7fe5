package inventory

import (
	"context"
	"fmt"

	"github.com/erp/stockflow/internal/application/txn"
	"github.com/erp/stockflow/internal/domain/production"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockAlert represents a stock level alert
type StockAlert struct {
	ProductID       string `json:"product_id"`
	ProductCode     string `json:"product_code"`
	WarehouseID     string `json:"warehouse_id"`
	CurrentQuantity string `json:"current_quantity"`
	ReorderLevel    string `json:"reorder_level"`
	AlertType       string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// StockAlertNotifier is the interface for sending stock alerts
type StockAlertNotifier interface {
	// SendAlert sends a stock alert notification
	SendAlert(ctx context.Context, alert StockAlert) error
}

// LowStockHandler checks reorder levels after events that take stock out
type LowStockHandler struct {
	scope    txn.TransactionScope
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// NewLowStockHandler creates a new handler for stock-reducing events
func NewLowStockHandler(scope txn.TransactionScope, logger *zap.Logger) *LowStockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LowStockHandler{
		scope:    scope,
		logger:   logger,
		notifier: NewLoggingStockAlertNotifier(logger),
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *LowStockHandler) WithNotifier(notifier StockAlertNotifier) *LowStockHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{
		trade.EventTypeSalesOrderConfirmed,
		production.EventTypeWastageApproved,
	}
}

// Handle checks every (product, warehouse) pair the event reduced
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	type key struct{ product, warehouse uuid.UUID }
	var keys []key

	switch e := event.(type) {
	case *trade.SalesOrderConfirmedEvent:
		order, err := h.scope.Repositories().SalesOrders().FindByID(ctx, e.AggregateID())
		if err != nil {
			return err
		}
		for _, item := range order.Items {
			keys = append(keys, key{item.ProductID, order.WarehouseID})
		}
	case *production.WastageApprovedEvent:
		keys = append(keys, key{e.ProductID, e.WarehouseID})
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	for _, k := range keys {
		if err := h.check(ctx, k.product, k.warehouse); err != nil {
			h.logger.Error("failed to check stock level",
				zap.String("product_id", k.product.String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (h *LowStockHandler) check(ctx context.Context, productID, warehouseID uuid.UUID) error {
	repos := h.scope.Repositories()
	product, err := repos.Products().FindByID(ctx, productID)
	if err != nil {
		return err
	}
	pos, err := repos.Stock().FindPosition(ctx, productID, warehouseID)
	if err != nil {
		return err
	}
	if !product.NeedsReorder(pos.Quantity) {
		return nil
	}

	alertType := "low_stock"
	if pos.Quantity.IsZero() {
		alertType = "out_of_stock"
	}
	alert := StockAlert{
		ProductID:       productID.String(),
		ProductCode:     product.Code,
		WarehouseID:     warehouseID.String(),
		CurrentQuantity: pos.Quantity.String(),
		ReorderLevel:    product.ReorderLevel.String(),
		AlertType:       alertType,
	}
	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		// notification failure must not fail event handling
		h.logger.Error("failed to send stock alert notification",
			zap.String("product_id", alert.ProductID),
			zap.Error(err),
		)
	}
	return nil
}

// Ensure LowStockHandler implements shared.EventHandler
var _ shared.EventHandler = (*LowStockHandler)(nil)

// LoggingStockAlertNotifier is a simple notifier that logs alerts
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(ctx context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("product_code", alert.ProductCode),
		zap.String("warehouse_id", alert.WarehouseID),
		zap.String("current_qty", alert.CurrentQuantity),
		zap.String("reorder_level", alert.ReorderLevel),
	)
	return nil
}

// Ensure LoggingStockAlertNotifier implements StockAlertNotifier
var _ StockAlertNotifier = (*LoggingStockAlertNotifier)(nil)
