package testutil

import (
	"context"
	"fmt"
	"testing"

	inventoryapp "github.com/erp/stockflow/internal/application/inventory"
	"github.com/erp/stockflow/internal/domain/catalog"
	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/partner"
	"github.com/erp/stockflow/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Fixtures seeds reference data through the real repositories
type Fixtures struct {
	t  *testing.T
	db *gorm.DB
}

// NewFixtures creates fixtures over db
func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) code(prefix string) string {
	return prefix + uuid.NewString()[:8]
}

// Client seeds a client of the given type
func (f *Fixtures) Client(clientType partner.ClientType) *partner.Client {
	f.t.Helper()
	c, err := partner.NewClient(f.code("C"), "Client "+string(clientType), clientType)
	require.NoError(f.t, err)
	require.NoError(f.t, persistence.NewGormClientRepository(f.db).Save(context.Background(), c))
	return c
}

// Customer seeds a customer
func (f *Fixtures) Customer() *partner.Client {
	return f.Client(partner.ClientTypeCustomer)
}

// Supplier seeds a supplier
func (f *Fixtures) Supplier() *partner.Client {
	return f.Client(partner.ClientTypeSupplier)
}

// Warehouse seeds a warehouse
func (f *Fixtures) Warehouse() *partner.Warehouse {
	f.t.Helper()
	w, err := partner.NewWarehouse(f.code("W"), "Warehouse")
	require.NoError(f.t, err)
	require.NoError(f.t, persistence.NewGormWarehouseRepository(f.db).Save(context.Background(), w))
	return w
}

// Product seeds a product sold in the given unit
func (f *Fixtures) Product(unit catalog.UnitType) *catalog.Product {
	f.t.Helper()
	p, err := catalog.NewProduct(f.code("P"), "Product", unit)
	require.NoError(f.t, err)
	require.NoError(f.t, persistence.NewGormProductRepository(f.db).Save(context.Background(), p))
	return p
}

// ProductWithReorderLevel seeds a kg product that is low on stock below level
func (f *Fixtures) ProductWithReorderLevel(level decimal.Decimal) *catalog.Product {
	f.t.Helper()
	p, err := catalog.NewProduct(f.code("P"), "Product", catalog.UnitKg)
	require.NoError(f.t, err)
	p.ReorderLevel = level
	require.NoError(f.t, persistence.NewGormProductRepository(f.db).Save(context.Background(), p))
	return p
}

// Stock puts qty of a product into a warehouse with an adjustment movement
func (f *Fixtures) Stock(productID, warehouseID uuid.UUID, qty decimal.Decimal) {
	f.t.Helper()
	ledger := inventoryapp.NewStockLedger(persistence.NewGormStockRepository(f.db))
	_, err := ledger.Increment(context.Background(), inventory.Entry{
		ProductID:     productID,
		WarehouseID:   warehouseID,
		Quantity:      qty,
		MovementType:  inventory.MovementAdjustment,
		ReferenceType: inventory.ReferenceManual,
		Notes:         "opening stock",
	})
	require.NoError(f.t, err)
}

// Quantity returns the on-hand quantity of a product in a warehouse
func (f *Fixtures) Quantity(productID, warehouseID uuid.UUID) decimal.Decimal {
	f.t.Helper()
	pos, err := persistence.NewGormStockRepository(f.db).FindPosition(context.Background(), productID, warehouseID)
	require.NoError(f.t, err)
	return pos.Quantity
}

// Balance returns a client's stored balance
func (f *Fixtures) Balance(clientID uuid.UUID) decimal.Decimal {
	f.t.Helper()
	c, err := persistence.NewGormClientRepository(f.db).FindByID(context.Background(), clientID)
	require.NoError(f.t, err)
	return c.Balance
}

// Dec parses a decimal literal
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// AssertDec asserts got equals the decimal literal want regardless of scale
func AssertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	if !Dec(want).Equal(got) {
		msg := ""
		if len(msgAndArgs) > 0 {
			if format, ok := msgAndArgs[0].(string); ok {
				msg = ": " + fmt.Sprintf(format, msgAndArgs[1:]...)
			}
		}
		t.Errorf("expected %s, got %s%s", want, got.String(), msg)
	}
}
