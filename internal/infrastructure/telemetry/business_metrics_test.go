package telemetry_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/stockflow/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T, provider telemetry.InventoryMetricsProvider) (*telemetry.BusinessMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:             mp.Meter("test"),
		InventoryProvider: provider,
	})
	require.NoError(t, err)
	return bm, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func floatSum(t *testing.T, agg metricdata.Aggregation) float64 {
	t.Helper()
	sum, ok := agg.(metricdata.Sum[float64])
	require.True(t, ok)
	var total float64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{})
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, bm)
}

func TestBusinessMetrics_Orders(t *testing.T) {
	bm, reader := newTestMetrics(t, nil)
	ctx := context.Background()

	bm.RecordOrderWithAmount(ctx, telemetry.OrderTypePurchase, decimal.RequireFromString("1250.50"))
	bm.RecordOrderWithAmount(ctx, telemetry.OrderTypeSales, decimal.NewFromInt(300))
	bm.RecordOrderWithAmount(ctx, telemetry.OrderTypeSales, decimal.NewFromInt(200))

	data := collect(t, reader)
	created, ok := data["stockflow_order_created_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	counts := map[string]int64{}
	for _, dp := range created.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key("order_type"))
		counts[v.AsString()] = dp.Value
	}
	assert.Equal(t, int64(1), counts["purchase"])
	assert.Equal(t, int64(2), counts["sales"])
	assert.InDelta(t, 1750.5, floatSum(t, data["stockflow_order_amount_total"]), 0.001)
}

func TestBusinessMetrics_Production(t *testing.T) {
	bm, reader := newTestMetrics(t, nil)
	ctx := context.Background()

	bm.RecordProduction(ctx, decimal.NewFromInt(950), decimal.NewFromInt(50))
	bm.RecordProduction(ctx, decimal.NewFromInt(100), decimal.Zero)

	data := collect(t, reader)
	assert.InDelta(t, 1050, floatSum(t, data["stockflow_production_kg_total"]), 0.001)
	assert.InDelta(t, 50, floatSum(t, data["stockflow_wastage_kg_total"]), 0.001)
}

func TestBusinessMetrics_RejectionsAndPostings(t *testing.T) {
	bm, reader := newTestMetrics(t, nil)
	ctx := context.Background()

	bm.RecordStockRejection(ctx, "sale")
	bm.RecordLedgerPosting(ctx, "cash_in")

	data := collect(t, reader)
	assert.Contains(t, data, "stockflow_stock_rejections_total")
	assert.Contains(t, data, "stockflow_ledger_postings_total")
}

type fakeInventoryProvider struct {
	calls atomic.Int32
	count int64
	err   error
}

func (f *fakeInventoryProvider) GetLowStockCount(ctx context.Context) (int64, error) {
	f.calls.Add(1)
	return f.count, f.err
}

func TestBusinessMetrics_PeriodicCollection(t *testing.T) {
	provider := &fakeInventoryProvider{count: 3}
	bm, reader := newTestMetrics(t, provider)

	bm.StartPeriodicCollection(context.Background(), 10*time.Millisecond)
	defer bm.Stop()

	assert.Eventually(t, func() bool { return provider.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	gauge, ok := collect(t, reader)["stockflow_low_stock_products"].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(3), gauge.DataPoints[0].Value)
}

func TestBusinessMetrics_PeriodicCollectionErrorIsLogged(t *testing.T) {
	provider := &fakeInventoryProvider{err: errors.New("db down")}
	bm, _ := newTestMetrics(t, provider)

	ctx, cancel := context.WithCancel(context.Background())
	bm.StartPeriodicCollection(ctx, time.Hour)
	assert.Eventually(t, func() bool { return provider.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	bm.Stop()
	bm.Stop()
}
