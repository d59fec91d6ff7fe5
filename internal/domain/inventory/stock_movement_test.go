package inventory

import (
	"testing"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEntry_Validate(t *testing.T) {
	valid := Entry{
		ProductID:    uuid.New(),
		WarehouseID:  uuid.New(),
		Quantity:     decimal.NewFromInt(10),
		MovementType: MovementPurchase,
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(e *Entry)
	}{
		{"missing product", func(e *Entry) { e.ProductID = uuid.Nil }},
		{"missing warehouse", func(e *Entry) { e.WarehouseID = uuid.Nil }},
		{"zero quantity", func(e *Entry) { e.Quantity = decimal.Zero }},
		{"negative quantity", func(e *Entry) { e.Quantity = decimal.NewFromInt(-3) }},
		{"unknown movement", func(e *Entry) { e.MovementType = "theft" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			assert.True(t, shared.IsKind(e.Validate(), shared.KindValidation))
		})
	}
}

func TestNewMovement(t *testing.T) {
	counterpart := uuid.New()
	e := Entry{
		ProductID:              uuid.New(),
		WarehouseID:            uuid.New(),
		Quantity:               decimal.NewFromInt(40),
		MovementType:           MovementTransferOut,
		CounterpartWarehouseID: &counterpart,
	}
	m := NewMovement(e, e.Quantity.Neg(), decimal.NewFromInt(60))

	assert.False(t, m.IsInbound())
	assert.True(t, m.Quantity.Equal(decimal.NewFromInt(-40)))
	assert.Equal(t, &counterpart, m.CounterpartWarehouseID)
	assert.NotEqual(t, uuid.Nil, m.ID)
}

func TestHistoryFilter_Normalize(t *testing.T) {
	f := HistoryFilter{}
	f.Normalize()
	assert.Equal(t, DefaultHistoryLimit, f.Limit)

	f = HistoryFilter{Limit: 10000}
	f.Normalize()
	assert.Equal(t, MaxHistoryLimit, f.Limit)

	f = HistoryFilter{Limit: 7}
	f.Normalize()
	assert.Equal(t, 7, f.Limit)
}

func TestStockPosition_CanSupply(t *testing.T) {
	p := EmptyPosition(uuid.New(), uuid.New())
	assert.True(t, p.CanSupply(decimal.Zero))
	assert.False(t, p.CanSupply(decimal.NewFromInt(1)))

	p.Quantity = decimal.NewFromInt(5)
	assert.True(t, p.CanSupply(decimal.NewFromInt(5)))
}
