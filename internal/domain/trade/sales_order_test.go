package trade

import (
	"testing"
	"time"

	"github.com/erp/stockflow/internal/domain/catalog"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSalesOrder(t *testing.T) *SalesOrder {
	t.Helper()
	priced, err := PriceLines([]LineInput{{
		ProductID: uuid.New(),
		UnitType:  catalog.UnitKg,
		Quantity:  dec("50"),
		UnitPrice: dec("120"),
	}}, dec("200"))
	require.NoError(t, err)
	order, err := NewSalesOrder("INV001", uuid.New(), uuid.New(), time.Now(), priced)
	require.NoError(t, err)
	return order
}

func TestSalesOrder_Lifecycle(t *testing.T) {
	order := newTestSalesOrder(t)
	assert.Equal(t, SalesOrderStatusDraft, order.Status)
	assert.True(t, dec("6200").Equal(order.TotalAmount))
	assert.True(t, dec("200").Equal(order.ShippingCharges))

	require.NoError(t, order.Confirm())
	assert.Equal(t, SalesOrderStatusConfirmed, order.Status)
	assert.True(t, order.StockDeducted)
	assert.True(t, shared.IsKind(order.Confirm(), shared.KindValidation))

	restore, err := order.Cancel()
	require.NoError(t, err)
	assert.True(t, restore)
	assert.Equal(t, SalesOrderStatusCancelled, order.Status)

	_, err = order.Cancel()
	assert.True(t, shared.IsKind(err, shared.KindValidation))
}

func TestSalesOrder_CancelDraftLeavesStock(t *testing.T) {
	order := newTestSalesOrder(t)
	restore, err := order.Cancel()
	require.NoError(t, err)
	assert.False(t, restore)
}
