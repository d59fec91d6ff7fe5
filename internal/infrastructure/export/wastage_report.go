package export

import (
	"fmt"
	"io"

	productionapp "github.com/erp/stockflow/internal/application/production"
	"github.com/xuri/excelize/v2"
)

const (
	wastageSheet = "Wastage"
	dateLayout   = "2006-01-02"
)

var wastageHeaders = []any{
	"Date", "Product ID", "Warehouse ID", "Quantity (kg)", "Cost Value",
	"Reason", "Source", "Status", "Approved At", "Description",
}

// ExcelExporter writes reports as xlsx workbooks
type ExcelExporter struct{}

// NewExcelExporter creates an ExcelExporter
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// WriteWastageReport writes one sheet with a header row, one row per record and a totals row
func (e *ExcelExporter) WriteWastageReport(w io.Writer, rows []productionapp.WastageResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", wastageSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(wastageSheet, "A1", &wastageHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(wastageHeaders))
	if err := f.SetCellStyle(wastageSheet, "A1", lastCol+"1", header); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range rows {
		approvedAt := ""
		if r.ApprovedAt != nil {
			approvedAt = r.ApprovedAt.Format(dateLayout)
		}
		values := []any{
			r.WastageDate.Format(dateLayout),
			r.ProductID.String(),
			r.WarehouseID.String(),
			r.Quantity.InexactFloat64(),
			r.CostValue.InexactFloat64(),
			r.Reason,
			r.Source,
			r.Status,
			approvedAt,
			r.Description,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(wastageSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if len(rows) > 0 {
		totalRow := len(rows) + 2
		if err := f.SetCellValue(wastageSheet, fmt.Sprintf("A%d", totalRow), "Total"); err != nil {
			return err
		}
		for _, col := range []string{"D", "E"} {
			formula := fmt.Sprintf("SUM(%s2:%s%d)", col, col, totalRow-1)
			if err := f.SetCellFormula(wastageSheet, fmt.Sprintf("%s%d", col, totalRow), formula); err != nil {
				return fmt.Errorf("write total: %w", err)
			}
		}
		if err := f.SetCellStyle(wastageSheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("%s%d", lastCol, totalRow), header); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(wastageSheet, "B", "C", 38); err != nil {
		return err
	}
	if err := f.SetPanes(wastageSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

var _ productionapp.WastageExporter = (*ExcelExporter)(nil)
