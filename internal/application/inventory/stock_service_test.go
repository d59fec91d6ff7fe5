package inventory_test

import (
	"context"
	"testing"

	inventoryapp "github.com/erp/stockflow/internal/application/inventory"
	"github.com/erp/stockflow/internal/domain/catalog"
	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/infrastructure/persistence"
	"github.com/erp/stockflow/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var dec = testutil.Dec

func newStockService(t *testing.T) (*inventoryapp.StockService, *testutil.Fixtures) {
	db := testutil.NewSQLiteDB(t)
	return inventoryapp.NewStockService(persistence.NewGormTransactionScope(db), zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestStockService_Adjust(t *testing.T) {
	svc, fx := newStockService(t)
	ctx := context.Background()
	product := fx.Product(catalog.UnitKg)
	warehouse := fx.Warehouse()

	movement, err := svc.Adjust(ctx, inventoryapp.AdjustStockRequest{
		ProductID: product.ID, WarehouseID: warehouse.ID, Quantity: dec("12.5"), Notes: "count",
	})
	require.NoError(t, err)
	assert.Equal(t, string(inventory.MovementAdjustment), movement.MovementType)
	testutil.AssertDec(t, "12.5", movement.Quantity)
	testutil.AssertDec(t, "12.5", movement.BalanceAfter)

	movement, err = svc.Adjust(ctx, inventoryapp.AdjustStockRequest{
		ProductID: product.ID, WarehouseID: warehouse.ID, Quantity: dec("-2.5"),
	})
	require.NoError(t, err)
	testutil.AssertDec(t, "-2.5", movement.Quantity)
	testutil.AssertDec(t, "10", movement.BalanceAfter)

	pos, err := svc.GetPosition(ctx, product.ID, warehouse.ID)
	require.NoError(t, err)
	testutil.AssertDec(t, "10", pos.Quantity)
}

func TestStockService_Adjust_FractionalQuantitiesRemoveExactly(t *testing.T) {
	svc, fx := newStockService(t)
	ctx := context.Background()
	product := fx.Product(catalog.UnitKg)
	warehouse := fx.Warehouse()

	for _, qty := range []string{"0.7", "0.1"} {
		_, err := svc.Adjust(ctx, inventoryapp.AdjustStockRequest{
			ProductID: product.ID, WarehouseID: warehouse.ID, Quantity: dec(qty),
		})
		require.NoError(t, err)
	}

	pos, err := svc.GetPosition(ctx, product.ID, warehouse.ID)
	require.NoError(t, err)
	testutil.AssertDec(t, "0.8", pos.Quantity)

	// removing exactly what the position reports must succeed and leave zero
	movement, err := svc.Adjust(ctx, inventoryapp.AdjustStockRequest{
		ProductID: product.ID, WarehouseID: warehouse.ID, Quantity: pos.Quantity.Neg(),
	})
	require.NoError(t, err)
	testutil.AssertDec(t, "0", movement.BalanceAfter)
	testutil.AssertDec(t, "0", fx.Quantity(product.ID, warehouse.ID))
}

func TestStockService_Adjust_Rejections(t *testing.T) {
	svc, fx := newStockService(t)
	product := fx.Product(catalog.UnitKg)
	warehouse := fx.Warehouse()
	fx.Stock(product.ID, warehouse.ID, dec("3"))

	tests := []struct {
		name string
		req  inventoryapp.AdjustStockRequest
		kind shared.ErrorKind
	}{
		{
			name: "below zero",
			req:  inventoryapp.AdjustStockRequest{ProductID: product.ID, WarehouseID: warehouse.ID, Quantity: dec("-3.001")},
			kind: shared.KindInsufficientStock,
		},
		{
			name: "zero",
			req:  inventoryapp.AdjustStockRequest{ProductID: product.ID, WarehouseID: warehouse.ID, Quantity: dec("0")},
			kind: shared.KindValidation,
		},
		{
			name: "unknown product",
			req:  inventoryapp.AdjustStockRequest{ProductID: uuid.New(), WarehouseID: warehouse.ID, Quantity: dec("1")},
			kind: shared.KindNotFound,
		},
		{
			name: "unknown warehouse",
			req:  inventoryapp.AdjustStockRequest{ProductID: product.ID, WarehouseID: uuid.New(), Quantity: dec("1")},
			kind: shared.KindNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Adjust(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, shared.KindOf(err))
			testutil.AssertDec(t, "3", fx.Quantity(product.ID, warehouse.ID))
		})
	}
}

func TestStockService_GetPosition_Unstocked(t *testing.T) {
	svc, fx := newStockService(t)
	pos, err := svc.GetPosition(context.Background(), fx.Product(catalog.UnitKg).ID, fx.Warehouse().ID)
	require.NoError(t, err)
	assert.True(t, pos.Quantity.IsZero())
}

func TestStockService_Transfer(t *testing.T) {
	svc, fx := newStockService(t)
	ctx := context.Background()
	product := fx.Product(catalog.UnitKg)
	main := fx.Warehouse()
	branch := fx.Warehouse()
	fx.Stock(product.ID, main.ID, dec("30"))

	result, err := svc.Transfer(ctx, inventoryapp.TransferStockRequest{
		ProductID: product.ID, FromWarehouseID: main.ID, ToWarehouseID: branch.ID, Quantity: dec("12"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(inventory.MovementTransferOut), result.Out.MovementType)
	assert.Equal(t, string(inventory.MovementTransferIn), result.In.MovementType)
	assert.Equal(t, &branch.ID, result.Out.CounterpartWarehouseID)
	assert.Equal(t, &main.ID, result.In.CounterpartWarehouseID)
	testutil.AssertDec(t, "18", fx.Quantity(product.ID, main.ID))
	testutil.AssertDec(t, "12", fx.Quantity(product.ID, branch.ID))

	t.Run("more than available moves nothing", func(t *testing.T) {
		_, err := svc.Transfer(ctx, inventoryapp.TransferStockRequest{
			ProductID: product.ID, FromWarehouseID: main.ID, ToWarehouseID: branch.ID, Quantity: dec("19"),
		})
		assert.True(t, shared.IsKind(err, shared.KindInsufficientStock))
		testutil.AssertDec(t, "18", fx.Quantity(product.ID, main.ID))
		testutil.AssertDec(t, "12", fx.Quantity(product.ID, branch.ID))
	})

	t.Run("same warehouse", func(t *testing.T) {
		_, err := svc.Transfer(ctx, inventoryapp.TransferStockRequest{
			ProductID: product.ID, FromWarehouseID: main.ID, ToWarehouseID: main.ID, Quantity: dec("1"),
		})
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})

	t.Run("non positive quantity", func(t *testing.T) {
		_, err := svc.Transfer(ctx, inventoryapp.TransferStockRequest{
			ProductID: product.ID, FromWarehouseID: main.ID, ToWarehouseID: branch.ID, Quantity: dec("-1"),
		})
		assert.True(t, shared.IsKind(err, shared.KindValidation))
	})
}

func TestStockService_HistoryAndPositions(t *testing.T) {
	svc, fx := newStockService(t)
	ctx := context.Background()
	product := fx.Product(catalog.UnitKg)
	other := fx.Product(catalog.UnitKg)
	main := fx.Warehouse()
	branch := fx.Warehouse()
	fx.Stock(product.ID, main.ID, dec("10"))
	fx.Stock(other.ID, main.ID, dec("4"))
	_, err := svc.Transfer(ctx, inventoryapp.TransferStockRequest{
		ProductID: product.ID, FromWarehouseID: main.ID, ToWarehouseID: branch.ID, Quantity: dec("10"),
	})
	require.NoError(t, err)

	history, err := svc.History(ctx, inventoryapp.HistoryRequest{ProductID: &product.ID})
	require.NoError(t, err)
	assert.Len(t, history, 3)

	outs, err := svc.History(ctx, inventoryapp.HistoryRequest{ProductID: &product.ID, MovementType: "transfer_out"})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	testutil.AssertDec(t, "0", outs[0].BalanceAfter)

	limited, err := svc.History(ctx, inventoryapp.HistoryRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	positions, total, err := svc.ListPositions(ctx, inventoryapp.PositionListFilter{WarehouseID: &main.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, positions, 2)

	nonZero, total, err := svc.ListPositions(ctx, inventoryapp.PositionListFilter{WarehouseID: &main.ID, NonZeroOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, other.ID, nonZero[0].ProductID)
}
