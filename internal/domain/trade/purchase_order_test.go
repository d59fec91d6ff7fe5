package trade

import (
	"testing"
	"time"

	"github.com/erp/stockflow/internal/domain/catalog"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPurchaseOrder(t *testing.T, kgs ...string) *PurchaseOrder {
	t.Helper()
	lines := make([]LineInput, 0, len(kgs))
	for _, kg := range kgs {
		lines = append(lines, LineInput{ProductID: uuid.New(), UnitType: catalog.UnitKg, Quantity: dec(kg), UnitPrice: dec("10")})
	}
	priced, err := PriceLines(lines, decimal.Zero)
	require.NoError(t, err)
	order, err := NewPurchaseOrder("PO001", uuid.New(), uuid.New(), time.Now(), priced)
	require.NoError(t, err)
	return order
}

func TestNewPurchaseOrder(t *testing.T) {
	order := newTestPurchaseOrder(t, "100", "50")

	assert.Equal(t, PurchaseOrderStatusPending, order.Status)
	assert.False(t, order.IsProductionCompleted)
	assert.Len(t, order.Items, 2)
	assert.Len(t, order.PendingItems(), 2)
	for _, item := range order.Items {
		assert.Equal(t, order.ID, item.PurchaseOrderID)
	}
	assert.True(t, dec("1500").Equal(order.TotalAmount))
	require.Len(t, order.PendingEvents(), 1)
	assert.Equal(t, EventTypePurchaseOrderCreated, order.PendingEvents()[0].EventType())

	_, err := NewPurchaseOrder("PO002", uuid.Nil, uuid.New(), time.Now(), PricedOrder{})
	assert.True(t, shared.IsKind(err, shared.KindValidation))
}

func TestPurchaseOrderItem_ValidateProduction(t *testing.T) {
	order := newTestPurchaseOrder(t, "250")
	item := &order.Items[0]

	assert.NoError(t, item.ValidateProduction(dec("250")))
	assert.NoError(t, item.ValidateProduction(dec("0.001")))
	assert.True(t, shared.IsKind(item.ValidateProduction(dec("0")), shared.KindValidation))
	assert.True(t, shared.IsKind(item.ValidateProduction(dec("260")), shared.KindValidation))

	item.MarkProduced(dec("235"))
	assert.True(t, shared.IsKind(item.ValidateProduction(dec("1")), shared.KindAlreadyProcessed))
}

func TestPurchaseOrder_RollUp(t *testing.T) {
	order := newTestPurchaseOrder(t, "100", "200")
	today := time.Now()

	order.Items[0].MarkProduced(dec("90"))
	assert.False(t, order.RollUp(today))
	assert.False(t, order.IsProductionCompleted)
	assert.Nil(t, order.ProductionDate)
	assert.True(t, dec("90").Equal(order.ProductionKg))
	assert.True(t, dec("10").Equal(order.WastageKg))

	order.Items[1].MarkProduced(dec("200"))
	assert.True(t, order.RollUp(today))
	assert.True(t, order.IsProductionCompleted)
	require.NotNil(t, order.ProductionDate)
	assert.True(t, dec("290").Equal(order.ProductionKg))
	assert.True(t, dec("10").Equal(order.WastageKg))
	assert.True(t, dec("3.3333").Equal(order.WastagePercentage))

	assert.True(t, shared.IsKind(order.CheckProducible(), shared.KindAlreadyProcessed))
}

func TestPurchaseOrder_Cancel(t *testing.T) {
	order := newTestPurchaseOrder(t, "100")
	require.NoError(t, order.Cancel())
	assert.Equal(t, PurchaseOrderStatusCancelled, order.Status)
	assert.True(t, shared.IsKind(order.Cancel(), shared.KindValidation))
	assert.True(t, shared.IsKind(order.CheckProducible(), shared.KindValidation))

	produced := newTestPurchaseOrder(t, "100", "100")
	produced.Items[0].MarkProduced(dec("100"))
	assert.True(t, shared.IsKind(produced.Cancel(), shared.KindValidation))
}
