package export

import (
	"bytes"
	"testing"
	"time"

	productionapp "github.com/erp/stockflow/internal/application/production"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExcelExporter_WriteWastageReport(t *testing.T) {
	approved := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	rows := []productionapp.WastageResponse{
		{
			ID:          uuid.New(),
			ProductID:   uuid.New(),
			WarehouseID: uuid.New(),
			Quantity:    decimal.RequireFromString("12.5"),
			CostValue:   decimal.RequireFromString("30"),
			Reason:      "production",
			Source:      "production",
			Status:      "approved",
			WastageDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			ApprovedAt:  &approved,
		},
		{
			ID:          uuid.New(),
			ProductID:   uuid.New(),
			WarehouseID: uuid.New(),
			Quantity:    decimal.RequireFromString("3"),
			Reason:      "damaged",
			Source:      "manual",
			Status:      "pending",
			WastageDate: time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC),
			Description: "torn bags",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewExcelExporter().WriteWastageReport(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{wastageSheet}, f.GetSheetList())

	got, err := f.GetRows(wastageSheet)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "Date", got[0][0])
	assert.Equal(t, "2026-04-01", got[1][0])
	assert.Equal(t, "12.5", got[1][3])
	assert.Equal(t, "2026-04-02", got[1][8])
	assert.Equal(t, "torn bags", got[2][9])
	assert.Equal(t, "Total", got[3][0])

	formula, err := f.GetCellFormula(wastageSheet, "D4")
	require.NoError(t, err)
	assert.Equal(t, "SUM(D2:D3)", formula)
}

func TestExcelExporter_EmptyReportHasHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExcelExporter().WriteWastageReport(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(wastageSheet)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
