package trade

import (
	"testing"

	"github.com/erp/stockflow/internal/domain/catalog"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestNormalizeQuantity(t *testing.T) {
	tests := []struct {
		name      string
		unit      UnitType
		quantity  string
		bagWeight *decimal.Decimal
		want      string
	}{
		{"kg passes through", catalog.UnitKg, "50", nil, "50"},
		{"kg ignores bag weight", catalog.UnitKg, "12.5", decPtr("25"), "12.5"},
		{"bag multiplies", catalog.UnitBag, "10", decPtr("25"), "250"},
		{"fractional bags", catalog.UnitBag, "2.5", decPtr("49.6"), "124"},
		{"fractional bag weight", catalog.UnitBag, "3", decPtr("0.3333"), "0.9999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeQuantity(tt.unit, dec(tt.quantity), tt.bagWeight)
			require.NoError(t, err)
			assert.True(t, dec(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestNormalizeQuantity_BagWeightProperty(t *testing.T) {
	for q := int64(1); q <= 20; q++ {
		for w := int64(1); w <= 60; w += 7 {
			weight := decimal.NewFromInt(w).Div(decimal.NewFromInt(4))
			got, err := NormalizeQuantity(catalog.UnitBag, decimal.NewFromInt(q), &weight)
			require.NoError(t, err)
			assert.True(t, decimal.NewFromInt(q).Mul(weight).Equal(got))
		}
	}
}

func TestNormalizeQuantity_Errors(t *testing.T) {
	_, err := NormalizeQuantity(catalog.UnitBag, dec("10"), nil)
	require.Error(t, err)
	assert.Equal(t, "missing bag weight", err.Error())
	assert.True(t, shared.IsKind(err, shared.KindValidation))

	_, err = NormalizeQuantity(catalog.UnitBag, dec("10"), decPtr("0"))
	assert.True(t, shared.IsKind(err, shared.KindValidation))

	_, err = NormalizeQuantity(UnitType("ton"), dec("10"), nil)
	assert.True(t, shared.IsKind(err, shared.KindValidation))
}
