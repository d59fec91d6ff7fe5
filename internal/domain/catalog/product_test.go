package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	p, err := NewProduct("rice-01", "Basmati Rice", UnitBag)
	require.NoError(t, err)
	assert.Equal(t, "RICE-01", p.Code)
	assert.Equal(t, UnitBag, p.UnitType)

	p, err = NewProduct("w1", "Wheat", "")
	require.NoError(t, err)
	assert.Equal(t, UnitKg, p.UnitType)

	_, err = NewProduct("", "Wheat", UnitKg)
	assert.Error(t, err)
	_, err = NewProduct("w1", "Wheat", UnitType("litre"))
	assert.Error(t, err)
}

func TestProduct_StockLevels(t *testing.T) {
	p, err := NewProduct("w1", "Wheat", UnitKg)
	require.NoError(t, err)

	require.NoError(t, p.SetStockLevels(decimal.NewFromInt(100), decimal.NewFromInt(50), decimal.NewFromInt(1000)))
	assert.True(t, p.NeedsReorder(decimal.NewFromInt(100)))
	assert.False(t, p.NeedsReorder(decimal.NewFromInt(101)))

	assert.Error(t, p.SetStockLevels(decimal.Zero, decimal.NewFromInt(10), decimal.NewFromInt(5)))
	assert.Error(t, p.SetStockLevels(decimal.NewFromInt(-1), decimal.Zero, decimal.Zero))
}
