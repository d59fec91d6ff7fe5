package production

import (
	"context"
	"fmt"
	"io"
	"time"

	inventoryapp "github.com/erp/stockflow/internal/application/inventory"
	"github.com/erp/stockflow/internal/application/txn"
	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/production"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// exportPageSize is the page size used to walk all records for an export
const exportPageSize = 100

// WastageExporter renders wastage rows as a spreadsheet
type WastageExporter interface {
	WriteWastageReport(w io.Writer, rows []WastageResponse) error
}

// WastageService handles manual wastage reports and their approval
type WastageService struct {
	scope          txn.TransactionScope
	logger         *zap.Logger
	exporter       WastageExporter
	eventPublisher shared.EventPublisher
}

// NewWastageService creates a new WastageService
func NewWastageService(scope txn.TransactionScope, logger *zap.Logger) *WastageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WastageService{scope: scope, logger: logger}
}

// SetExporter sets the report exporter
func (s *WastageService) SetExporter(exporter WastageExporter) {
	s.exporter = exporter
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *WastageService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Report records wastage found outside production. The record starts pending
// and does not touch stock until approved.
func (s *WastageService) Report(ctx context.Context, req ReportWastageRequest) (*WastageResponse, error) {
	date := time.Now()
	if req.WastageDate != nil && !req.WastageDate.IsZero() {
		date = *req.WastageDate
	}
	record, err := production.NewManualWastage(req.ProductID, req.WarehouseID, req.Quantity, req.CostValue, req.Reason, req.Description, date)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		if _, err := repos.Products().FindByID(ctx, req.ProductID); err != nil {
			return err
		}
		if _, err := repos.Warehouses().FindByID(ctx, req.WarehouseID); err != nil {
			return err
		}
		return repos.Wastage().Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("wastage reported",
		zap.String("wastage_id", record.ID.String()),
		zap.String("product_id", record.ProductID.String()),
		zap.String("quantity", record.Quantity.String()),
		zap.String("reason", record.Reason),
	)
	resp := ToWastageResponse(record)
	return &resp, nil
}

// Approve approves a pending wastage record. Manual wastage is deducted from
// stock with an adjustment movement in the same transaction.
func (s *WastageService) Approve(ctx context.Context, id uuid.UUID) (*WastageResponse, error) {
	var record *production.WastageRecord
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		record, err = repos.Wastage().FindByID(ctx, id)
		if err != nil {
			return err
		}
		now := time.Now()
		if err := record.Approve(now); err != nil {
			return err
		}
		approved, err := repos.Wastage().Approve(ctx, id, now)
		if err != nil {
			return err
		}
		if !approved {
			return shared.NewAlreadyProcessedError("wastage record %s is already approved", id)
		}

		if !record.DeductsStockOnApproval() {
			return nil
		}
		recordID := record.ID
		_, err = inventoryapp.NewStockLedger(repos.Stock()).Adjust(ctx,
			record.ProductID, record.WarehouseID, record.Quantity.Neg(),
			inventory.ReferenceWastageRecord, &recordID,
			fmt.Sprintf("Wastage approved: %s", record.Reason))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("wastage approved",
		zap.String("wastage_id", record.ID.String()),
		zap.String("quantity", record.Quantity.String()),
		zap.String("source", string(record.Source)),
	)
	txn.PublishEvents(ctx, s.eventPublisher, s.logger, record)

	resp := ToWastageResponse(record)
	return &resp, nil
}

// List lists wastage records newest first
func (s *WastageService) List(ctx context.Context, filter WastageListFilter) ([]WastageResponse, int64, error) {
	records, total, err := s.scope.Repositories().Wastage().FindAll(ctx, toWastageFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	out := make([]WastageResponse, len(records))
	for i := range records {
		out[i] = ToWastageResponse(&records[i])
	}
	return out, total, nil
}

// Export writes every wastage record matching the filter as a spreadsheet
func (s *WastageService) Export(ctx context.Context, filter WastageListFilter, w io.Writer) error {
	if s.exporter == nil {
		return shared.NewValidationError("wastage export is not configured")
	}

	var rows []WastageResponse
	filter.PageSize = exportPageSize
	for page := 1; ; page++ {
		filter.Page = page
		batch, total, err := s.List(ctx, filter)
		if err != nil {
			return err
		}
		rows = append(rows, batch...)
		if len(batch) == 0 || int64(len(rows)) >= total {
			break
		}
	}
	return s.exporter.WriteWastageReport(w, rows)
}

func toWastageFilter(filter WastageListFilter) production.WastageFilter {
	return production.WastageFilter{
		Filter:      shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "wastage_date"}.Normalize(),
		Status:      production.WastageStatus(filter.Status),
		Source:      production.WastageSource(filter.Source),
		ProductID:   filter.ProductID,
		WarehouseID: filter.WarehouseID,
		From:        filter.From,
		To:          filter.To,
	}
}
