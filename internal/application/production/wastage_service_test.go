package production_test

import (
	"bytes"
	"context"
	"testing"

	productionapp "github.com/erp/stockflow/internal/application/production"
	"github.com/erp/stockflow/internal/domain/catalog"
	"github.com/erp/stockflow/internal/domain/production"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/infrastructure/export"
	"github.com/erp/stockflow/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWastageService_ReportAndApprove(t *testing.T) {
	env := newProductionEnv(t)
	ctx := context.Background()
	product := env.fx.Product(catalog.UnitKg)
	env.fx.Stock(product.ID, env.warehouseID, dec("40"))

	reported, err := env.wastage.Report(ctx, productionapp.ReportWastageRequest{
		ProductID:   product.ID,
		WarehouseID: env.warehouseID,
		Quantity:    dec("7.5"),
		Reason:      "spoilage",
	})
	require.NoError(t, err)
	assert.Equal(t, string(production.WastageStatusPending), reported.Status)
	assert.Equal(t, string(production.WastageSourceManual), reported.Source)
	// pending reports leave stock alone
	testutil.AssertDec(t, "40", env.fx.Quantity(product.ID, env.warehouseID))

	approved, err := env.wastage.Approve(ctx, reported.ID)
	require.NoError(t, err)
	assert.Equal(t, string(production.WastageStatusApproved), approved.Status)
	assert.NotNil(t, approved.ApprovedAt)
	testutil.AssertDec(t, "32.5", env.fx.Quantity(product.ID, env.warehouseID))
	assert.Contains(t, env.publisher.HandledTypes(), production.EventTypeWastageApproved)

	_, err = env.wastage.Approve(ctx, reported.ID)
	assert.True(t, shared.IsKind(err, shared.KindAlreadyProcessed))
	testutil.AssertDec(t, "32.5", env.fx.Quantity(product.ID, env.warehouseID))
}

func TestWastageService_ApproveBeyondStock(t *testing.T) {
	env := newProductionEnv(t)
	ctx := context.Background()
	product := env.fx.Product(catalog.UnitKg)
	env.fx.Stock(product.ID, env.warehouseID, dec("5"))

	reported, err := env.wastage.Report(ctx, productionapp.ReportWastageRequest{
		ProductID:   product.ID,
		WarehouseID: env.warehouseID,
		Quantity:    dec("6"),
		Reason:      "damaged",
	})
	require.NoError(t, err)

	_, err = env.wastage.Approve(ctx, reported.ID)
	assert.True(t, shared.IsKind(err, shared.KindInsufficientStock), "%v", err)

	list, _, err := env.wastage.List(ctx, productionapp.WastageListFilter{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, list, 1, "failed approval must leave the record pending")
}

func TestWastageService_Report_Rejections(t *testing.T) {
	env := newProductionEnv(t)
	product := env.fx.Product(catalog.UnitKg)

	tests := []struct {
		name string
		req  productionapp.ReportWastageRequest
		kind shared.ErrorKind
	}{
		{
			name: "zero quantity",
			req:  productionapp.ReportWastageRequest{ProductID: product.ID, WarehouseID: env.warehouseID, Quantity: dec("0")},
			kind: shared.KindValidation,
		},
		{
			name: "unknown product",
			req:  productionapp.ReportWastageRequest{ProductID: uuid.New(), WarehouseID: env.warehouseID, Quantity: dec("1")},
			kind: shared.KindNotFound,
		},
		{
			name: "unknown warehouse",
			req:  productionapp.ReportWastageRequest{ProductID: product.ID, WarehouseID: uuid.New(), Quantity: dec("1")},
			kind: shared.KindNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.wastage.Report(context.Background(), tt.req)
			assert.Equal(t, tt.kind, shared.KindOf(err))
		})
	}

	_, err := env.wastage.Approve(context.Background(), uuid.New())
	assert.True(t, shared.IsKind(err, shared.KindNotFound))
}

func TestWastageService_ListFilters(t *testing.T) {
	env := newProductionEnv(t)
	ctx := context.Background()
	kgProduct := env.fx.Product(catalog.UnitKg)
	order := env.purchase(t, map[uuid.UUID]string{kgProduct.ID: "100"})
	_, err := env.processItem(order, "90")
	require.NoError(t, err)

	other := env.fx.Product(catalog.UnitKg)
	_, err = env.wastage.Report(ctx, productionapp.ReportWastageRequest{
		ProductID: other.ID, WarehouseID: env.warehouseID, Quantity: dec("2"), Reason: "spill",
	})
	require.NoError(t, err)

	_, total, err := env.wastage.List(ctx, productionapp.WastageListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	fromProduction, _, err := env.wastage.List(ctx, productionapp.WastageListFilter{Source: "production"})
	require.NoError(t, err)
	require.Len(t, fromProduction, 1)
	testutil.AssertDec(t, "10", fromProduction[0].Quantity)

	byProduct, _, err := env.wastage.List(ctx, productionapp.WastageListFilter{ProductID: &other.ID})
	require.NoError(t, err)
	require.Len(t, byProduct, 1)
	assert.Equal(t, "spill", byProduct[0].Reason)
}

func TestWastageService_Export(t *testing.T) {
	env := newProductionEnv(t)
	ctx := context.Background()
	product := env.fx.Product(catalog.UnitKg)
	for _, qty := range []string{"1", "2", "3"} {
		_, err := env.wastage.Report(ctx, productionapp.ReportWastageRequest{
			ProductID: product.ID, WarehouseID: env.warehouseID, Quantity: dec(qty), Reason: "trim",
		})
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	err := env.wastage.Export(ctx, productionapp.WastageListFilter{}, &buf)
	assert.True(t, shared.IsKind(err, shared.KindValidation), "export without an exporter")

	env.wastage.SetExporter(export.NewExcelExporter())
	require.NoError(t, env.wastage.Export(ctx, productionapp.WastageListFilter{}, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Len(t, rows, 5, "header, three records and the totals row")
	assert.Equal(t, "Total", rows[4][0])
}
