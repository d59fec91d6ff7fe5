package trade

import (
	"testing"

	"github.com/erp/stockflow/internal/domain/catalog"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceLines_BaggedPurchase(t *testing.T) {
	priced, err := PriceLines([]LineInput{{
		ProductID: uuid.New(),
		UnitType:  catalog.UnitBag,
		Quantity:  dec("10"),
		BagWeight: decPtr("25"),
		UnitPrice: dec("100"),
		TaxRate:   dec("10"),
	}}, decimal.Zero)
	require.NoError(t, err)

	require.Len(t, priced.Lines, 1)
	assert.True(t, dec("250").Equal(priced.Lines[0].TotalKg))
	assert.True(t, dec("25000").Equal(priced.Subtotal))
	assert.True(t, dec("2500").Equal(priced.TaxAmount))
	assert.True(t, dec("27500").Equal(priced.TotalAmount))
}

func TestPriceLines_SaleWithShipping(t *testing.T) {
	priced, err := PriceLines([]LineInput{{
		ProductID: uuid.New(),
		UnitType:  catalog.UnitKg,
		Quantity:  dec("50"),
		UnitPrice: dec("120"),
	}}, dec("200"))
	require.NoError(t, err)

	assert.True(t, dec("6000").Equal(priced.Subtotal))
	assert.True(t, dec("6200").Equal(priced.TotalAmount))
	assert.True(t, dec("50").Equal(priced.TotalKg))
}

func TestPriceLines_DiscountBeforeTax(t *testing.T) {
	priced, err := PriceLines([]LineInput{{
		ProductID:    uuid.New(),
		UnitType:     catalog.UnitKg,
		Quantity:     dec("100"),
		UnitPrice:    dec("10"),
		TaxRate:      dec("5"),
		DiscountRate: dec("10"),
	}}, decimal.Zero)
	require.NoError(t, err)

	line := priced.Lines[0]
	assert.True(t, dec("1000").Equal(line.Subtotal))
	assert.True(t, dec("100").Equal(line.DiscountAmount))
	assert.True(t, dec("45").Equal(line.TaxAmount))
	assert.True(t, dec("945").Equal(line.LineTotal))
	assert.True(t, dec("900").Equal(priced.FinalSubtotal()))
	assert.True(t, dec("945").Equal(priced.TotalAmount))
}

func TestPriceLines_OrderIndependent(t *testing.T) {
	lines := []LineInput{
		{ProductID: uuid.New(), UnitType: catalog.UnitKg, Quantity: dec("33.3"), UnitPrice: dec("7.77"), TaxRate: dec("12.5"), DiscountRate: dec("3")},
		{ProductID: uuid.New(), UnitType: catalog.UnitBag, Quantity: dec("4"), BagWeight: decPtr("50"), UnitPrice: dec("61.2"), TaxRate: dec("0"), DiscountRate: dec("7.5")},
		{ProductID: uuid.New(), UnitType: catalog.UnitKg, Quantity: dec("0.125"), UnitPrice: dec("1999"), TaxRate: dec("18"), DiscountRate: dec("0")},
	}
	reversed := []LineInput{lines[2], lines[1], lines[0]}

	a, err := PriceLines(lines, dec("15"))
	require.NoError(t, err)
	b, err := PriceLines(reversed, dec("15"))
	require.NoError(t, err)
	again, err := PriceLines(lines, dec("15"))
	require.NoError(t, err)

	assert.True(t, a.TotalAmount.Equal(b.TotalAmount))
	assert.True(t, a.TaxAmount.Equal(b.TaxAmount))
	assert.True(t, a.TotalKg.Equal(b.TotalKg))
	assert.True(t, a.TotalAmount.Equal(again.TotalAmount))
}

func TestPriceLines_FailFast(t *testing.T) {
	good := LineInput{ProductID: uuid.New(), UnitType: catalog.UnitKg, Quantity: dec("1"), UnitPrice: dec("1")}

	tests := []struct {
		name    string
		bad     LineInput
		message string
	}{
		{"missing product", LineInput{UnitType: catalog.UnitKg, Quantity: dec("1"), UnitPrice: dec("1")}, "item 2: product_id is required"},
		{"zero quantity", LineInput{ProductID: uuid.New(), UnitType: catalog.UnitKg, Quantity: dec("0"), UnitPrice: dec("1")}, "item 2: quantity must be greater than 0"},
		{"zero price", LineInput{ProductID: uuid.New(), UnitType: catalog.UnitKg, Quantity: dec("1"), UnitPrice: dec("0")}, "item 2: unit_price must be greater than 0"},
		{"bag without weight", LineInput{ProductID: uuid.New(), UnitType: catalog.UnitBag, Quantity: dec("1"), UnitPrice: dec("1")}, "item 2: missing bag weight"},
		{"tax above 100", LineInput{ProductID: uuid.New(), UnitType: catalog.UnitKg, Quantity: dec("1"), UnitPrice: dec("1"), TaxRate: dec("101")}, "item 2: tax_rate must be between 0 and 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PriceLines([]LineInput{good, tt.bad}, decimal.Zero)
			require.Error(t, err)
			assert.True(t, shared.IsKind(err, shared.KindValidation))
			assert.Equal(t, tt.message, err.Error())
		})
	}

	_, err := PriceLines(nil, decimal.Zero)
	assert.True(t, shared.IsKind(err, shared.KindValidation))

	_, err = PriceLines([]LineInput{good}, dec("-1"))
	assert.True(t, shared.IsKind(err, shared.KindValidation))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "PO001", FormatNumber("PO", 1))
	assert.Equal(t, "INV042", FormatNumber("INV", 42))
	assert.Equal(t, "PO1000", FormatNumber("PO", 1000))
}
