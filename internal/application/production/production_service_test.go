package production_test

import (
	"context"
	"sync"
	"testing"

	inventoryapp "github.com/erp/stockflow/internal/application/inventory"
	productionapp "github.com/erp/stockflow/internal/application/production"
	tradeapp "github.com/erp/stockflow/internal/application/trade"
	"github.com/erp/stockflow/internal/domain/catalog"
	"github.com/erp/stockflow/internal/domain/production"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/erp/stockflow/internal/infrastructure/lock"
	"github.com/erp/stockflow/internal/infrastructure/persistence"
	"github.com/erp/stockflow/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var dec = testutil.Dec

type productionEnv struct {
	fx         *testutil.Fixtures
	production *productionapp.ProductionService
	wastage    *productionapp.WastageService
	cutting    *productionapp.CuttingService
	purchases  *tradeapp.PurchaseOrderService
	stock      *inventoryapp.StockService
	publisher  *testutil.RecordingPublisher

	supplierID  uuid.UUID
	warehouseID uuid.UUID
}

func newProductionEnv(t *testing.T) *productionEnv {
	db := testutil.NewSQLiteDB(t)
	scope := persistence.NewGormTransactionScope(db)
	fx := testutil.NewFixtures(t, db)
	publisher := &testutil.RecordingPublisher{}

	ps := productionapp.NewProductionService(scope, zap.NewNop())
	ps.SetEventPublisher(publisher)
	ws := productionapp.NewWastageService(scope, zap.NewNop())
	ws.SetEventPublisher(publisher)

	return &productionEnv{
		fx:          fx,
		production:  ps,
		wastage:     ws,
		cutting:     productionapp.NewCuttingService(scope, zap.NewNop()),
		purchases:   tradeapp.NewPurchaseOrderService(scope, zap.NewNop()),
		stock:       inventoryapp.NewStockService(scope, zap.NewNop()),
		publisher:   publisher,
		supplierID:  fx.Supplier().ID,
		warehouseID: fx.Warehouse().ID,
	}
}

// purchase creates a purchase order with one line per product. Quantities are kg.
func (e *productionEnv) purchase(t *testing.T, kgs map[uuid.UUID]string) *tradeapp.PurchaseOrderResponse {
	t.Helper()
	items := make([]tradeapp.OrderItemInput, 0, len(kgs))
	for productID, kg := range kgs {
		items = append(items, tradeapp.OrderItemInput{ProductID: productID, Quantity: dec(kg), UnitPrice: dec("10")})
	}
	order, err := e.purchases.Create(context.Background(), tradeapp.CreatePurchaseOrderRequest{
		SupplierID:  e.supplierID,
		WarehouseID: e.warehouseID,
		Items:       items,
	})
	require.NoError(t, err)
	return order
}

// bagOrder creates the 10 bags of 25kg order used across the production tests
func (e *productionEnv) bagOrder(t *testing.T, productID uuid.UUID) *tradeapp.PurchaseOrderResponse {
	t.Helper()
	bagWeight := dec("25")
	order, err := e.purchases.Create(context.Background(), tradeapp.CreatePurchaseOrderRequest{
		SupplierID:  e.supplierID,
		WarehouseID: e.warehouseID,
		Items: []tradeapp.OrderItemInput{{
			ProductID: productID,
			UnitType:  string(catalog.UnitBag),
			Quantity:  dec("10"),
			BagWeight: &bagWeight,
			UnitPrice: dec("100"),
			TaxRate:   dec("10"),
		}},
	})
	require.NoError(t, err)
	return order
}

func (e *productionEnv) processItem(order *tradeapp.PurchaseOrderResponse, kg string) (*productionapp.ProductionResultResponse, error) {
	return e.production.ProcessItem(context.Background(), productionapp.ProcessItemRequest{
		PurchaseOrderID: order.ID,
		ItemID:          order.Items[0].ID,
		ProductionKg:    dec(kg),
	})
}

func (e *productionEnv) wastageCount(t *testing.T) int64 {
	t.Helper()
	_, total, err := e.wastage.List(context.Background(), productionapp.WastageListFilter{})
	require.NoError(t, err)
	return total
}

func TestProductionService_ProcessItem_RecordsWastage(t *testing.T) {
	env := newProductionEnv(t)
	product := env.fx.Product(catalog.UnitBag)
	order := env.bagOrder(t, product.ID)

	result, err := env.processItem(order, "235")
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	record := result.Records[0]
	testutil.AssertDec(t, "250", record.PurchasedKg)
	testutil.AssertDec(t, "235", record.ProductionKg)
	testutil.AssertDec(t, "15", record.WastageKg)
	testutil.AssertDec(t, "6", record.WastagePercentage)
	assert.True(t, result.IsProductionCompleted)
	assert.Zero(t, result.PendingItemCount)

	// produced weight is credited, never the purchased weight
	testutil.AssertDec(t, "235", env.fx.Quantity(product.ID, env.warehouseID))

	wastage, total, err := env.wastage.List(context.Background(), productionapp.WastageListFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	testutil.AssertDec(t, "15", wastage[0].Quantity)
	assert.Equal(t, string(production.WastageSourceProduction), wastage[0].Source)
	assert.Equal(t, string(production.WastageStatusApproved), wastage[0].Status)
	assert.Equal(t, &record.ID, wastage[0].ProductionRecordID)

	ctxResp, err := env.production.GetProductionContext(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, ctxResp.IsProductionCompleted)
	assert.True(t, ctxResp.Items[0].IsProductionCompleted)
	testutil.AssertDec(t, "0", ctxResp.PendingKg)
	testutil.AssertDec(t, "15", ctxResp.WastageKg)
	require.Len(t, ctxResp.Records, 1)

	types := env.publisher.HandledTypes()
	assert.Contains(t, types, production.EventTypeItemProduced)
	assert.Contains(t, types, trade.EventTypePurchaseOrderProductionCompleted)
}

func TestProductionService_ProcessItem_NoWastageWhenFullyProduced(t *testing.T) {
	env := newProductionEnv(t)
	product := env.fx.Product(catalog.UnitBag)
	order := env.bagOrder(t, product.ID)

	result, err := env.processItem(order, "250")
	require.NoError(t, err)
	testutil.AssertDec(t, "0", result.Records[0].WastageKg)
	assert.Zero(t, env.wastageCount(t))
}

func TestProductionService_ProcessItem_Rejections(t *testing.T) {
	tests := []struct {
		name string
		kg   string
		kind shared.ErrorKind
	}{
		{name: "more than purchased", kg: "260", kind: shared.KindValidation},
		{name: "zero", kg: "0", kind: shared.KindValidation},
		{name: "negative", kg: "-5", kind: shared.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newProductionEnv(t)
			product := env.fx.Product(catalog.UnitBag)
			order := env.bagOrder(t, product.ID)

			_, err := env.processItem(order, tt.kg)
			require.Error(t, err)
			assert.Equal(t, tt.kind, shared.KindOf(err))

			assert.True(t, env.fx.Quantity(product.ID, env.warehouseID).IsZero())
			assert.Zero(t, env.wastageCount(t))
			history, err := env.production.HistoryByOrder(context.Background(), order.ID)
			require.NoError(t, err)
			assert.Empty(t, history)

			ctxResp, err := env.production.GetProductionContext(context.Background(), order.ID)
			require.NoError(t, err)
			assert.False(t, ctxResp.IsProductionCompleted)
			testutil.AssertDec(t, "250", ctxResp.PendingKg)
		})
	}
}

func TestProductionService_ProcessItem_Twice(t *testing.T) {
	env := newProductionEnv(t)
	product := env.fx.Product(catalog.UnitBag)
	order := env.bagOrder(t, product.ID)

	_, err := env.processItem(order, "235")
	require.NoError(t, err)

	_, err = env.processItem(order, "240")
	require.Error(t, err)
	assert.True(t, shared.IsKind(err, shared.KindAlreadyProcessed), "%v", err)

	testutil.AssertDec(t, "235", env.fx.Quantity(product.ID, env.warehouseID))
	history, err := env.production.HistoryByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	assert.EqualValues(t, 1, env.wastageCount(t))
}

func TestProductionService_ProcessItem_UnknownTargets(t *testing.T) {
	env := newProductionEnv(t)
	product := env.fx.Product(catalog.UnitKg)
	order := env.purchase(t, map[uuid.UUID]string{product.ID: "100"})

	_, err := env.production.ProcessItem(context.Background(), productionapp.ProcessItemRequest{
		PurchaseOrderID: uuid.New(),
		ItemID:          order.Items[0].ID,
		ProductionKg:    dec("10"),
	})
	assert.True(t, shared.IsKind(err, shared.KindNotFound))

	_, err = env.production.ProcessItem(context.Background(), productionapp.ProcessItemRequest{
		PurchaseOrderID: order.ID,
		ItemID:          uuid.New(),
		ProductionKg:    dec("10"),
	})
	assert.True(t, shared.IsKind(err, shared.KindNotFound))
}

func TestProductionService_ProcessItem_CancelledOrder(t *testing.T) {
	env := newProductionEnv(t)
	product := env.fx.Product(catalog.UnitKg)
	order := env.purchase(t, map[uuid.UUID]string{product.ID: "100"})

	_, err := env.purchases.Cancel(context.Background(), order.ID)
	require.NoError(t, err)

	_, err = env.processItem(order, "90")
	assert.True(t, shared.IsKind(err, shared.KindValidation))
	assert.True(t, env.fx.Quantity(product.ID, env.warehouseID).IsZero())
}

func TestProductionService_RollUpWaitsForEveryItem(t *testing.T) {
	env := newProductionEnv(t)
	first := env.fx.Product(catalog.UnitKg)
	second := env.fx.Product(catalog.UnitKg)
	order := env.purchase(t, map[uuid.UUID]string{first.ID: "100", second.ID: "50"})
	require.Len(t, order.Items, 2)

	byProduct := map[uuid.UUID]uuid.UUID{}
	for _, item := range order.Items {
		byProduct[item.ProductID] = item.ID
	}

	result, err := env.production.ProcessItem(context.Background(), productionapp.ProcessItemRequest{
		PurchaseOrderID: order.ID,
		ItemID:          byProduct[first.ID],
		ProductionKg:    dec("90"),
	})
	require.NoError(t, err)
	assert.False(t, result.IsProductionCompleted)
	assert.Equal(t, 1, result.PendingItemCount)

	pending, err := env.production.PendingItems(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, byProduct[second.ID], pending[0].ItemID)
	assert.Equal(t, order.PONumber, pending[0].PONumber)

	result, err = env.production.ProcessItem(context.Background(), productionapp.ProcessItemRequest{
		PurchaseOrderID: order.ID,
		ItemID:          byProduct[second.ID],
		ProductionKg:    dec("45"),
	})
	require.NoError(t, err)
	assert.True(t, result.IsProductionCompleted)
	testutil.AssertDec(t, "135", result.ProductionKg)
	testutil.AssertDec(t, "15", result.WastageKg)
	testutil.AssertDec(t, "10", result.WastagePercentage)

	pending, err = env.production.PendingItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = env.processItem(order, "1")
	assert.True(t, shared.IsKind(err, shared.KindAlreadyProcessed))
}

func TestProductionService_ProcessOrder(t *testing.T) {
	env := newProductionEnv(t)
	first := env.fx.Product(catalog.UnitKg)
	second := env.fx.Product(catalog.UnitKg)
	order := env.purchase(t, map[uuid.UUID]string{first.ID: "100", second.ID: "50"})

	inputs := func(kgs map[uuid.UUID]string) []productionapp.ItemProductionInput {
		var out []productionapp.ItemProductionInput
		for _, item := range order.Items {
			if kg, ok := kgs[item.ProductID]; ok {
				out = append(out, productionapp.ItemProductionInput{ItemID: item.ID, ProductionKg: dec(kg)})
			}
		}
		return out
	}

	t.Run("missing pending item is rejected", func(t *testing.T) {
		_, err := env.production.ProcessOrder(context.Background(), productionapp.ProcessOrderRequest{
			PurchaseOrderID: order.ID,
			Items:           inputs(map[uuid.UUID]string{first.ID: "100"}),
		})
		assert.True(t, shared.IsKind(err, shared.KindValidation), "%v", err)
		assert.True(t, env.fx.Quantity(first.ID, env.warehouseID).IsZero())
	})

	t.Run("one bad entry rolls back the batch", func(t *testing.T) {
		_, err := env.production.ProcessOrder(context.Background(), productionapp.ProcessOrderRequest{
			PurchaseOrderID: order.ID,
			Items:           inputs(map[uuid.UUID]string{first.ID: "95", second.ID: "51"}),
		})
		assert.True(t, shared.IsKind(err, shared.KindValidation), "%v", err)
		assert.True(t, env.fx.Quantity(first.ID, env.warehouseID).IsZero())
		assert.True(t, env.fx.Quantity(second.ID, env.warehouseID).IsZero())
		assert.Zero(t, env.wastageCount(t))
	})

	t.Run("complete batch", func(t *testing.T) {
		result, err := env.production.ProcessOrder(context.Background(), productionapp.ProcessOrderRequest{
			PurchaseOrderID: order.ID,
			Items:           inputs(map[uuid.UUID]string{first.ID: "95", second.ID: "50"}),
		})
		require.NoError(t, err)
		assert.Len(t, result.Records, 2)
		assert.True(t, result.IsProductionCompleted)
		testutil.AssertDec(t, "95", env.fx.Quantity(first.ID, env.warehouseID))
		testutil.AssertDec(t, "50", env.fx.Quantity(second.ID, env.warehouseID))
		// only the first item lost weight
		assert.EqualValues(t, 1, env.wastageCount(t))
	})

	t.Run("completed order is rejected", func(t *testing.T) {
		_, err := env.production.ProcessOrder(context.Background(), productionapp.ProcessOrderRequest{
			PurchaseOrderID: order.ID,
			Items:           inputs(map[uuid.UUID]string{first.ID: "95", second.ID: "50"}),
		})
		assert.True(t, shared.IsKind(err, shared.KindAlreadyProcessed))
	})
}

func TestProductionService_ConcurrentProcessing(t *testing.T) {
	env := newProductionEnv(t)
	env.production.SetItemLocker(lock.NewLocalLocker())
	product := env.fx.Product(catalog.UnitBag)
	order := env.bagOrder(t, product.ID)

	const workers = 5
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.processItem(order, "235")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			assert.True(t, shared.IsKind(err, shared.KindAlreadyProcessed), "%v", err)
			rejected++
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, rejected)
	testutil.AssertDec(t, "235", env.fx.Quantity(product.ID, env.warehouseID))

	movements, err := env.stock.History(context.Background(), inventoryapp.HistoryRequest{ProductID: &product.ID})
	require.NoError(t, err)
	assert.Len(t, movements, 1)
}

func TestProductionService_History(t *testing.T) {
	env := newProductionEnv(t)
	first := env.fx.Product(catalog.UnitKg)
	second := env.fx.Product(catalog.UnitKg)
	orderA := env.purchase(t, map[uuid.UUID]string{first.ID: "100"})
	orderB := env.purchase(t, map[uuid.UUID]string{second.ID: "40"})

	_, err := env.processItem(orderA, "100")
	require.NoError(t, err)
	_, err = env.processItem(orderB, "38")
	require.NoError(t, err)

	all, total, err := env.production.History(context.Background(), productionapp.HistoryFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	byOrder, total, err := env.production.History(context.Background(), productionapp.HistoryFilter{PurchaseOrderID: &orderB.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	testutil.AssertDec(t, "2", byOrder[0].WastageKg)
	testutil.AssertDec(t, "5", byOrder[0].WastagePercentage)

	byProduct, _, err := env.production.History(context.Background(), productionapp.HistoryFilter{ProductID: &first.ID})
	require.NoError(t, err)
	require.Len(t, byProduct, 1)
	assert.Equal(t, orderA.ID, byProduct[0].PurchaseOrderID)

	_, err = env.production.HistoryByOrder(context.Background(), uuid.New())
	assert.True(t, shared.IsKind(err, shared.KindNotFound))
}

func TestProductionService_WastageIdentity(t *testing.T) {
	env := newProductionEnv(t)
	for _, kg := range []string{"1", "33.333", "99.999", "100"} {
		product := env.fx.Product(catalog.UnitKg)
		order := env.purchase(t, map[uuid.UUID]string{product.ID: "100"})

		result, err := env.processItem(order, kg)
		require.NoError(t, err)
		rec := result.Records[0]
		assert.True(t, rec.PurchasedKg.Sub(rec.ProductionKg).Equal(rec.WastageKg), kg)
		want := rec.WastageKg.Div(rec.PurchasedKg).Mul(decimal.NewFromInt(100))
		assert.True(t, want.Sub(rec.WastagePercentage).Abs().LessThanOrEqual(dec("0.01")), kg)
	}
}
