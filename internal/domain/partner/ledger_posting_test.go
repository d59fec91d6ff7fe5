package partner

import (
	"testing"
	"time"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedDelta(t *testing.T) {
	amount := decimal.NewFromInt(500)

	tests := []struct {
		name   string
		role   PartyRole
		txType TransactionType
		want   decimal.Decimal
	}{
		{"receivable customer", RoleCustomer, TransactionTypeReceivable, amount},
		{"payable supplier", RoleSupplier, TransactionTypePayable, amount},
		{"cash in customer", RoleCustomer, TransactionTypeCashIn, amount.Neg()},
		{"cash in supplier", RoleSupplier, TransactionTypeCashIn, amount},
		{"cash out customer", RoleCustomer, TransactionTypeCashOut, amount},
		{"cash out supplier", RoleSupplier, TransactionTypeCashOut, amount.Neg()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SignedDelta(tt.role, tt.txType, amount)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestSignedDelta_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		role   PartyRole
		txType TransactionType
		amount decimal.Decimal
	}{
		{"zero amount", RoleCustomer, TransactionTypeCashIn, decimal.Zero},
		{"negative amount", RoleCustomer, TransactionTypeCashIn, decimal.NewFromInt(-1)},
		{"receivable supplier", RoleSupplier, TransactionTypeReceivable, decimal.NewFromInt(1)},
		{"payable customer", RoleCustomer, TransactionTypePayable, decimal.NewFromInt(1)},
		{"unknown type", RoleCustomer, TransactionType("transfer"), decimal.NewFromInt(1)},
		{"unknown role", PartyRole("employee"), TransactionTypeCashIn, decimal.NewFromInt(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SignedDelta(tt.role, tt.txType, tt.amount)
			assert.True(t, shared.IsKind(err, shared.KindValidation))
		})
	}
}

func TestLedgerPosting_Reversal(t *testing.T) {
	orderID := uuid.New()
	p, err := NewLedgerPosting("PC-1", time.Now(), uuid.New(), RoleCustomer,
		TransactionTypeReceivable, decimal.NewFromInt(1050), ReferenceSalesOrder, &orderID)
	require.NoError(t, err)

	rev := p.NewReversal("PC-2", time.Time{}, "cancelled")

	assert.Equal(t, TransactionTypeReversal, rev.TransactionType)
	assert.True(t, rev.BalanceDelta.Add(p.BalanceDelta).IsZero())
	assert.Equal(t, p.ClientID, rev.ClientID)
	require.NotNil(t, rev.ReversesID)
	assert.Equal(t, p.ID, *rev.ReversesID)
	assert.False(t, p.IsManual())
}

func TestLedgerPosting_Reprice(t *testing.T) {
	p, err := NewLedgerPosting("PC-1", time.Now(), uuid.New(), RoleCustomer,
		TransactionTypeCashIn, decimal.NewFromInt(300), ReferenceManual, nil)
	require.NoError(t, err)
	assert.True(t, p.IsManual())

	delta, err := p.Reprice(p.ClientID, RoleCustomer, TransactionTypeCashOut, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, delta.Equal(decimal.NewFromInt(100)))

	_, err = p.Reprice(p.ClientID, RoleCustomer, TransactionTypeReceivable, decimal.NewFromInt(100))
	assert.True(t, shared.IsKind(err, shared.KindValidation))
}

func TestClient_ResolveRole(t *testing.T) {
	both, err := NewClient("c1", "Both Ltd", ClientTypeBoth)
	require.NoError(t, err)
	supplier, err := NewClient("s1", "Mill", ClientTypeSupplier)
	require.NoError(t, err)

	role, err := both.ResolveRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, role)

	role, err = both.ResolveRole(RoleSupplier)
	require.NoError(t, err)
	assert.Equal(t, RoleSupplier, role)

	role, err = supplier.ResolveRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleSupplier, role)

	_, err = supplier.ResolveRole(RoleCustomer)
	assert.True(t, shared.IsKind(err, shared.KindValidation))

	_, err = NewClient("x", "X", ClientType("employee"))
	assert.Error(t, err)
}
