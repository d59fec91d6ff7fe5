package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when no meter is given.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// OrderType labels order metrics.
type OrderType string

const (
	OrderTypeSales    OrderType = "sales"
	OrderTypePurchase OrderType = "purchase"
)

// InventoryMetricsProvider supplies the periodically collected inventory gauges.
type InventoryMetricsProvider interface {
	// GetLowStockCount returns the number of products at or below their reorder level
	GetLowStockCount(ctx context.Context) (int64, error)
}

// BusinessMetrics records pipeline activity: orders, production output,
// wastage, rejected stock movements and ledger postings.
type BusinessMetrics struct {
	logger *zap.Logger

	orderCreatedTotal    *Counter
	orderAmountTotal     *FloatCounter
	productionKgTotal    *FloatCounter
	wastageKgTotal       *FloatCounter
	stockRejectionsTotal *Counter
	ledgerPostingsTotal  *Counter
	lowStockProducts     *Gauge

	inventoryProvider InventoryMetricsProvider
	stopChan          chan struct{}
	stopOnce          sync.Once
	collectOnce       sync.Once
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter             metric.Meter
	Logger            *zap.Logger
	InventoryProvider InventoryMetricsProvider
}

// NewBusinessMetrics creates the business metric instruments.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		logger:            logger,
		inventoryProvider: cfg.InventoryProvider,
		stopChan:          make(chan struct{}),
	}

	var err error
	if bm.orderCreatedTotal, err = NewCounter(cfg.Meter, "stockflow_order_created_total", "Orders created", "{orders}"); err != nil {
		return nil, err
	}
	if bm.orderAmountTotal, err = NewFloatCounter(cfg.Meter, "stockflow_order_amount_total", "Total order amount", "{currency}"); err != nil {
		return nil, err
	}
	if bm.productionKgTotal, err = NewFloatCounter(cfg.Meter, "stockflow_production_kg_total", "Kilograms produced", "kg"); err != nil {
		return nil, err
	}
	if bm.wastageKgTotal, err = NewFloatCounter(cfg.Meter, "stockflow_wastage_kg_total", "Kilograms lost to production wastage", "kg"); err != nil {
		return nil, err
	}
	if bm.stockRejectionsTotal, err = NewCounter(cfg.Meter, "stockflow_stock_rejections_total", "Stock movements rejected for insufficient stock", "{movements}"); err != nil {
		return nil, err
	}
	if bm.ledgerPostingsTotal, err = NewCounter(cfg.Meter, "stockflow_ledger_postings_total", "Ledger postings written", "{postings}"); err != nil {
		return nil, err
	}
	if bm.lowStockProducts, err = NewGauge(cfg.Meter, "stockflow_low_stock_products", "Products at or below their reorder level", "{products}"); err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordOrderWithAmount records an order creation and its total amount.
func (bm *BusinessMetrics) RecordOrderWithAmount(ctx context.Context, orderType OrderType, amount decimal.Decimal) {
	attr := AttrOrderType.String(string(orderType))
	bm.orderCreatedTotal.Inc(ctx, attr)
	bm.orderAmountTotal.Add(ctx, amount.InexactFloat64(), attr)
}

// RecordProduction records one production event.
func (bm *BusinessMetrics) RecordProduction(ctx context.Context, producedKg, wastageKg decimal.Decimal) {
	bm.productionKgTotal.Add(ctx, producedKg.InexactFloat64())
	bm.wastageKgTotal.Add(ctx, wastageKg.InexactFloat64())
}

// RecordStockRejection records a stock movement refused for insufficient stock.
func (bm *BusinessMetrics) RecordStockRejection(ctx context.Context, operation string) {
	bm.stockRejectionsTotal.Inc(ctx, AttrOperation.String(operation))
}

// RecordLedgerPosting records a manual ledger posting.
func (bm *BusinessMetrics) RecordLedgerPosting(ctx context.Context, txType string) {
	bm.ledgerPostingsTotal.Inc(ctx, AttrTransactionType.String(txType))
}

// RecordLowStockCount records the number of products needing reorder.
func (bm *BusinessMetrics) RecordLowStockCount(ctx context.Context, count int64) {
	bm.lowStockProducts.Record(ctx, count)
}

// StartPeriodicCollection collects the inventory gauges every interval
// (default 5 minutes) until Stop is called or ctx ends. It is non-blocking.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	if bm.inventoryProvider == nil {
		return
	}
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.runPeriodicCollection(ctx, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectInventoryMetrics(ctx)
	for {
		select {
		case <-bm.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			bm.collectInventoryMetrics(ctx)
		}
	}
}

func (bm *BusinessMetrics) collectInventoryMetrics(ctx context.Context) {
	count, err := bm.inventoryProvider.GetLowStockCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to collect low stock count", zap.Error(err))
		return
	}
	bm.RecordLowStockCount(ctx, count)
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}
