package inventory

import (
	"context"

	"github.com/erp/stockflow/internal/application/txn"
	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockService exposes stock reads and the manual stock operations, each in its own transaction
type StockService struct {
	scope           txn.TransactionScope
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewStockService creates a new StockService
func NewStockService(scope txn.TransactionScope, logger *zap.Logger) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{scope: scope, logger: logger}
}

// SetBusinessMetrics sets the business metrics collector
func (s *StockService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// GetPosition returns the on-hand quantity of a product in a warehouse
func (s *StockService) GetPosition(ctx context.Context, productID, warehouseID uuid.UUID) (*PositionResponse, error) {
	pos, err := s.scope.Repositories().Stock().FindPosition(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	resp := ToPositionResponse(pos)
	return &resp, nil
}

// ListPositions lists stock positions
func (s *StockService) ListPositions(ctx context.Context, filter PositionListFilter) ([]PositionResponse, int64, error) {
	pf := inventory.PositionFilter{
		Filter:      shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "updated_at", OrderDir: "desc"}.Normalize(),
		ProductID:   filter.ProductID,
		WarehouseID: filter.WarehouseID,
		NonZeroOnly: filter.NonZeroOnly,
	}
	positions, total, err := s.scope.Repositories().Stock().FindPositions(ctx, pf)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PositionResponse, len(positions))
	for i := range positions {
		out[i] = ToPositionResponse(&positions[i])
	}
	return out, total, nil
}

// Adjust applies a manual signed correction
func (s *StockService) Adjust(ctx context.Context, req AdjustStockRequest) (*MovementResponse, error) {
	var movement *inventory.StockMovement
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		if err := ensureProductAndWarehouse(ctx, repos, req.ProductID, req.WarehouseID); err != nil {
			return err
		}
		var err error
		movement, err = NewStockLedger(repos.Stock()).Adjust(ctx, req.ProductID, req.WarehouseID, req.Quantity, inventory.ReferenceManual, nil, req.Notes)
		return err
	})
	if err != nil {
		s.recordRejection(ctx, "adjust", err)
		return nil, err
	}

	s.logger.Info("stock adjusted",
		zap.String("product_id", req.ProductID.String()),
		zap.String("warehouse_id", req.WarehouseID.String()),
		zap.String("quantity", movement.Quantity.String()),
		zap.String("balance_after", movement.BalanceAfter.String()),
	)
	resp := ToMovementResponse(movement)
	return &resp, nil
}

// Transfer moves stock between two warehouses, all or nothing
func (s *StockService) Transfer(ctx context.Context, req TransferStockRequest) (*TransferResponse, error) {
	if !req.Quantity.IsPositive() {
		return nil, shared.NewValidationError("quantity must be greater than 0")
	}

	var out, in *inventory.StockMovement
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		if err := ensureProductAndWarehouse(ctx, repos, req.ProductID, req.FromWarehouseID); err != nil {
			return err
		}
		if _, err := repos.Warehouses().FindByID(ctx, req.ToWarehouseID); err != nil {
			return err
		}
		var err error
		out, in, err = NewStockLedger(repos.Stock()).Transfer(ctx, req.ProductID, req.FromWarehouseID, req.ToWarehouseID, req.Quantity, req.Notes)
		return err
	})
	if err != nil {
		s.recordRejection(ctx, "transfer", err)
		return nil, err
	}

	s.logger.Info("stock transferred",
		zap.String("product_id", req.ProductID.String()),
		zap.String("from_warehouse_id", req.FromWarehouseID.String()),
		zap.String("to_warehouse_id", req.ToWarehouseID.String()),
		zap.String("quantity", req.Quantity.String()),
	)
	return &TransferResponse{Out: ToMovementResponse(out), In: ToMovementResponse(in)}, nil
}

// History returns movements newest first
func (s *StockService) History(ctx context.Context, req HistoryRequest) ([]MovementResponse, error) {
	filter := inventory.HistoryFilter{
		ProductID:    req.ProductID,
		WarehouseID:  req.WarehouseID,
		MovementType: inventory.MovementType(req.MovementType),
		Limit:        req.Limit,
	}
	filter.Normalize()
	movements, err := s.scope.Repositories().Stock().FindMovements(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToMovementResponses(movements), nil
}

func (s *StockService) recordRejection(ctx context.Context, operation string, err error) {
	if s.businessMetrics != nil && shared.IsKind(err, shared.KindInsufficientStock) {
		s.businessMetrics.RecordStockRejection(ctx, operation)
	}
}

func ensureProductAndWarehouse(ctx context.Context, repos txn.Repositories, productID, warehouseID uuid.UUID) error {
	if _, err := repos.Products().FindByID(ctx, productID); err != nil {
		return err
	}
	if _, err := repos.Warehouses().FindByID(ctx, warehouseID); err != nil {
		return err
	}
	return nil
}
