package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	inventoryapp "github.com/erp/stockflow/internal/application/inventory"
	ledgerapp "github.com/erp/stockflow/internal/application/ledger"
	productionapp "github.com/erp/stockflow/internal/application/production"
	tradeapp "github.com/erp/stockflow/internal/application/trade"
	"github.com/erp/stockflow/internal/domain/catalog"
	"github.com/erp/stockflow/internal/infrastructure/cache"
	"github.com/erp/stockflow/internal/infrastructure/export"
	"github.com/erp/stockflow/internal/infrastructure/persistence"
	"github.com/erp/stockflow/internal/interfaces/http/dto"
	"github.com/erp/stockflow/internal/interfaces/http/handler"
	"github.com/erp/stockflow/internal/interfaces/http/middleware"
	"github.com/erp/stockflow/internal/interfaces/http/router"
	"github.com/erp/stockflow/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type apiEnv struct {
	engine *gin.Engine
	fx     *testutil.Fixtures
}

func newAPIEnv(t *testing.T, pinger handler.Pinger) *apiEnv {
	db := testutil.NewSQLiteDB(t)
	scope := persistence.NewGormTransactionScope(db)
	log := zap.NewNop()

	wastage := productionapp.NewWastageService(scope, log)
	wastage.SetExporter(export.NewExcelExporter())

	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	engine := router.NewEngine(router.EngineConfig{
		ServiceName: "stockflow-test",
		MaxBodySize: 1 << 20,
		Idempotency: middleware.Idempotency(store, time.Hour, log),
	}, router.Handlers{
		PurchaseOrder: handler.NewPurchaseOrderHandler(tradeapp.NewPurchaseOrderService(scope, log)),
		Production:    handler.NewProductionHandler(productionapp.NewProductionService(scope, log)),
		SalesOrder:    handler.NewSalesOrderHandler(tradeapp.NewSalesOrderService(scope, log)),
		Stock:         handler.NewStockHandler(inventoryapp.NewStockService(scope, log)),
		PettyCash:     handler.NewPettyCashHandler(ledgerapp.NewLedgerService(scope, log)),
		Wastage:       handler.NewWastageHandler(wastage),
		Cutting:       handler.NewCuttingHandler(productionapp.NewCuttingService(scope, log)),
		System:        handler.NewSystemHandler(pinger, "test"),
	}, log)

	return &apiEnv{engine: engine, fx: testutil.NewFixtures(t, db)}
}

func TestAPI_PurchaseProduceSell(t *testing.T) {
	env := newAPIEnv(t, stubPinger{})
	supplier := env.fx.Supplier()
	customer := env.fx.Customer()
	warehouse := env.fx.Warehouse()
	product := env.fx.Product(catalog.UnitBag)

	w := testutil.DoJSON(t, env.engine, http.MethodPost, "/api/v1/purchase-orders", map[string]any{
		"supplier_id":  supplier.ID,
		"warehouse_id": warehouse.ID,
		"items": []map[string]any{{
			"product_id": product.ID,
			"unit_type":  "bag",
			"quantity":   10,
			"bag_weight": 25,
			"unit_price": 100,
			"tax_rate":   10,
		}},
	})
	testutil.AssertStatus(t, w, http.StatusCreated)
	order := testutil.DecodeData[tradeapp.PurchaseOrderResponse](t, w)
	assert.Equal(t, "PO001", order.PONumber)
	testutil.AssertDec(t, "27500", order.TotalAmount)

	produce := map[string]any{
		"purchase_order_id": order.ID,
		"item_id":           order.Items[0].ID,
		"production_kg":     235,
	}
	w = testutil.DoJSON(t, env.engine, http.MethodPost, "/api/v1/production/items", produce)
	testutil.AssertStatus(t, w, http.StatusCreated)
	result := testutil.DecodeData[productionapp.ProductionResultResponse](t, w)
	assert.True(t, result.IsProductionCompleted)
	testutil.AssertDec(t, "15", result.WastageKg)

	w = testutil.DoJSON(t, env.engine, http.MethodPost, "/api/v1/production/items", produce)
	testutil.AssertErrorResponse(t, w, http.StatusConflict, dto.ErrCodeAlreadyProcessed)

	w = testutil.DoJSON(t, env.engine, http.MethodGet,
		fmt.Sprintf("/api/v1/stock?product_id=%s&warehouse_id=%s", product.ID, warehouse.ID), nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	position := testutil.DecodeData[inventoryapp.PositionResponse](t, w)
	testutil.AssertDec(t, "235", position.Quantity)

	sale := func(qty int) map[string]any {
		return map[string]any{
			"customer_id":      customer.ID,
			"warehouse_id":     warehouse.ID,
			"items":            []map[string]any{{"product_id": product.ID, "quantity": qty, "unit_price": 120}},
			"shipping_charges": 200,
		}
	}
	w = testutil.DoJSON(t, env.engine, http.MethodPost, "/api/v1/sales-orders", sale(300))
	testutil.AssertErrorResponse(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock)

	w = testutil.DoJSON(t, env.engine, http.MethodPost, "/api/v1/sales-orders", sale(50))
	testutil.AssertStatus(t, w, http.StatusCreated)
	so := testutil.DecodeData[tradeapp.SalesOrderResponse](t, w)
	testutil.AssertDec(t, "6200", so.TotalAmount)
	testutil.AssertDec(t, "185", env.fx.Quantity(product.ID, warehouse.ID))

	w = testutil.DoJSON(t, env.engine, http.MethodGet, "/api/v1/clients/"+customer.ID.String()+"/balance-check", nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	check := testutil.DecodeData[ledgerapp.BalanceCheckResponse](t, w)
	assert.True(t, check.Consistent)
	testutil.AssertDec(t, "6200", check.StoredBalance)
}

func TestAPI_ErrorMapping(t *testing.T) {
	env := newAPIEnv(t, stubPinger{})
	supplier := env.fx.Supplier()
	warehouse := env.fx.Warehouse()
	product := env.fx.Product(catalog.UnitKg)

	w := testutil.DoJSON(t, env.engine, http.MethodPost, "/api/v1/purchase-orders", map[string]any{
		"supplier_id":  supplier.ID,
		"warehouse_id": warehouse.ID,
		"items":        []map[string]any{{"product_id": product.ID, "quantity": 100, "unit_price": 5}},
	})
	testutil.AssertStatus(t, w, http.StatusCreated)
	order := testutil.DecodeData[tradeapp.PurchaseOrderResponse](t, w)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{
			name:   "unknown order",
			method: http.MethodGet,
			path:   "/api/v1/purchase-orders/" + uuid.NewString(),
			status: http.StatusNotFound,
			code:   dto.ErrCodeNotFound,
		},
		{
			name:   "malformed id",
			method: http.MethodGet,
			path:   "/api/v1/sales-orders/not-a-uuid",
			status: http.StatusBadRequest,
			code:   dto.ErrCodeBadRequest,
		},
		{
			name:   "production above purchased weight",
			method: http.MethodPost,
			path:   "/api/v1/production/items",
			body:   map[string]any{"purchase_order_id": order.ID, "item_id": order.Items[0].ID, "production_kg": 101},
			status: http.StatusBadRequest,
			code:   dto.ErrCodeValidation,
		},
		{
			name:   "missing required field",
			method: http.MethodPost,
			path:   "/api/v1/wastage",
			body:   map[string]any{"warehouse_id": warehouse.ID, "quantity": 1},
			status: http.StatusBadRequest,
			code:   dto.ErrCodeValidation,
		},
		{
			name:   "petty cash receivable",
			method: http.MethodPost,
			path:   "/api/v1/petty-cash",
			body:   map[string]any{"transaction_type": "receivable", "client_id": supplier.ID, "amount": 10},
			status: http.StatusBadRequest,
			code:   dto.ErrCodeValidation,
		},
		{
			name:   "adjust below zero",
			method: http.MethodPost,
			path:   "/api/v1/stock/adjust",
			body:   map[string]any{"product_id": product.ID, "warehouse_id": warehouse.ID, "quantity": -1},
			status: http.StatusUnprocessableEntity,
			code:   dto.ErrCodeInsufficientStock,
		},
		{
			name:   "stock position without product",
			method: http.MethodGet,
			path:   "/api/v1/stock?warehouse_id=" + warehouse.ID.String(),
			status: http.StatusBadRequest,
			code:   dto.ErrCodeBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.DoJSON(t, env.engine, tt.method, tt.path, tt.body)
			testutil.AssertErrorResponse(t, w, tt.status, tt.code)
		})
	}
}

func TestAPI_IdempotentPettyCash(t *testing.T) {
	env := newAPIEnv(t, stubPinger{})
	customer := env.fx.Customer()
	body := map[string]any{"transaction_type": "cash_in", "client_id": customer.ID, "amount": 250}
	key := map[string]string{middleware.IdempotencyKeyHeader: "receipt-0042"}

	w := testutil.DoJSON(t, env.engine, http.MethodPost, "/api/v1/petty-cash", body, key)
	testutil.AssertStatus(t, w, http.StatusCreated)

	w = testutil.DoJSON(t, env.engine, http.MethodPost, "/api/v1/petty-cash", body, key)
	testutil.AssertErrorResponse(t, w, http.StatusConflict, dto.ErrCodeDuplicateRequest)
	testutil.AssertDec(t, "-250", env.fx.Balance(customer.ID))

	w = testutil.DoJSON(t, env.engine, http.MethodGet, "/api/v1/petty-cash?client_id="+customer.ID.String(), nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	envelope := testutil.DecodeEnvelope(t, w)
	require.NotNil(t, envelope.Meta)
	assert.EqualValues(t, 1, envelope.Meta.Total)
}

func TestAPI_WastageExport(t *testing.T) {
	env := newAPIEnv(t, stubPinger{})
	warehouse := env.fx.Warehouse()
	product := env.fx.Product(catalog.UnitKg)

	w := testutil.DoJSON(t, env.engine, http.MethodPost, "/api/v1/wastage", map[string]any{
		"product_id": product.ID, "warehouse_id": warehouse.ID, "quantity": 3, "reason": "spill",
	})
	testutil.AssertStatus(t, w, http.StatusCreated)

	w = testutil.DoJSON(t, env.engine, http.MethodGet, "/api/v1/wastage/export", nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=\"wastage_")
	assert.NotZero(t, w.Body.Len())

	w = testutil.DoJSON(t, env.engine, http.MethodGet, "/api/v1/wastage/export?product_id=bad", nil)
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeBadRequest)
}

func TestAPI_Probes(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		env := newAPIEnv(t, stubPinger{})
		w := testutil.DoJSON(t, env.engine, http.MethodGet, "/ready", nil)
		testutil.AssertStatus(t, w, http.StatusOK)
	})

	t.Run("database down", func(t *testing.T) {
		env := newAPIEnv(t, stubPinger{err: errors.New("connection refused")})
		w := testutil.DoJSON(t, env.engine, http.MethodGet, "/ready", nil)
		testutil.AssertStatus(t, w, http.StatusServiceUnavailable)

		// liveness does not depend on the database
		w = testutil.DoJSON(t, env.engine, http.MethodGet, "/health", nil)
		testutil.AssertStatus(t, w, http.StatusOK)
	})
}
