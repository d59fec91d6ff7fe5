package production

import (
	"testing"
	"time"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualWastage(t *testing.T) {
	w, err := NewManualWastage(uuid.New(), uuid.New(), dec("12.5"), decimal.Zero, "damage", "rats", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, WastageStatusPending, w.Status)
	assert.True(t, w.DeductsStockOnApproval())
	assert.False(t, w.WastageDate.IsZero())

	require.NoError(t, w.Approve(time.Now()))
	assert.Equal(t, WastageStatusApproved, w.Status)
	assert.NotNil(t, w.ApprovedAt)
	require.Len(t, w.PendingEvents(), 1)

	assert.True(t, shared.IsKind(w.Approve(time.Now()), shared.KindAlreadyProcessed))
}

func TestManualWastage_Validation(t *testing.T) {
	_, err := NewManualWastage(uuid.Nil, uuid.New(), dec("1"), decimal.Zero, "", "", time.Now())
	assert.True(t, shared.IsKind(err, shared.KindValidation))
	_, err = NewManualWastage(uuid.New(), uuid.New(), dec("0"), decimal.Zero, "", "", time.Now())
	assert.True(t, shared.IsKind(err, shared.KindValidation))
	_, err = NewManualWastage(uuid.New(), uuid.New(), dec("1"), dec("-5"), "", "", time.Now())
	assert.True(t, shared.IsKind(err, shared.KindValidation))

	w, err := NewManualWastage(uuid.New(), uuid.New(), dec("1"), decimal.Zero, "", "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "other", w.Reason)
}
