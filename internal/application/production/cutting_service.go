package production

import (
	"context"
	"fmt"
	"time"

	inventoryapp "github.com/erp/stockflow/internal/application/inventory"
	"github.com/erp/stockflow/internal/application/txn"
	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/production"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CuttingService handles cutting operations: one input product cut into one or more outputs
type CuttingService struct {
	scope  txn.TransactionScope
	logger *zap.Logger
}

// NewCuttingService creates a new CuttingService
func NewCuttingService(scope txn.TransactionScope, logger *zap.Logger) *CuttingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CuttingService{scope: scope, logger: logger}
}

// Create records a pending cutting operation after checking the input is in stock
func (s *CuttingService) Create(ctx context.Context, req CreateCuttingRequest) (*CuttingResponse, error) {
	outputs := make([]production.OutputInput, len(req.Outputs))
	for i, o := range req.Outputs {
		outputs[i] = production.OutputInput{ProductID: o.ProductID, Quantity: o.Quantity, QualityGrade: o.QualityGrade}
	}

	op, err := production.NewCuttingOperation("", req.InputProductID, req.WarehouseID, req.InputQuantity, outputs, req.OperatorName, req.Notes)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		if _, err := repos.Warehouses().FindByID(ctx, req.WarehouseID); err != nil {
			return err
		}
		ids := []uuid.UUID{req.InputProductID}
		for _, o := range outputs {
			ids = append(ids, o.ProductID)
		}
		products, err := repos.Products().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if _, ok := products[id]; !ok {
				return shared.NewNotFoundError(fmt.Sprintf("product %s", id))
			}
		}

		pos, err := repos.Stock().FindPosition(ctx, req.InputProductID, req.WarehouseID)
		if err != nil {
			return err
		}
		if !pos.CanSupply(req.InputQuantity) {
			return shared.NewInsufficientStockError("insufficient stock for cutting: available %s, requested %s",
				pos.Quantity.StringFixed(3), req.InputQuantity.StringFixed(3))
		}

		seq, err := repos.Sequences().Next(ctx, trade.SequenceCutting)
		if err != nil {
			return err
		}
		op.OperationNumber = production.FormatCuttingNumber(time.Now(), seq)
		return repos.Cutting().Create(ctx, op)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cutting operation created",
		zap.String("operation_number", op.OperationNumber),
		zap.String("input_quantity", op.InputQuantity.String()),
		zap.Int("outputs", len(op.Outputs)),
	)
	resp := ToCuttingResponse(op)
	return &resp, nil
}

// Process completes a pending operation: the input leaves stock and every output enters it
func (s *CuttingService) Process(ctx context.Context, id uuid.UUID) (*CuttingResponse, error) {
	var op *production.CuttingOperation
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		op, err = repos.Cutting().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := op.Complete(); err != nil {
			return err
		}
		moved, err := repos.Cutting().TransitionStatus(ctx, id, production.CuttingStatusPending, production.CuttingStatusCompleted)
		if err != nil {
			return err
		}
		if !moved {
			return shared.NewAlreadyProcessedError("cutting operation %s already processed", op.OperationNumber)
		}

		stock := inventoryapp.NewStockLedger(repos.Stock())
		opID := op.ID
		if _, err := stock.Decrement(ctx, inventory.Entry{
			ProductID:     op.InputProductID,
			WarehouseID:   op.WarehouseID,
			Quantity:      op.InputQuantity,
			MovementType:  inventory.MovementCutting,
			ReferenceType: inventory.ReferenceCuttingOperation,
			ReferenceID:   &opID,
			Notes:         fmt.Sprintf("Cutting %s input", op.OperationNumber),
		}); err != nil {
			return err
		}
		for _, o := range op.Outputs {
			if _, err := stock.Increment(ctx, inventory.Entry{
				ProductID:     o.OutputProductID,
				WarehouseID:   op.WarehouseID,
				Quantity:      o.Quantity,
				MovementType:  inventory.MovementCutting,
				ReferenceType: inventory.ReferenceCuttingOperation,
				ReferenceID:   &opID,
				Notes:         fmt.Sprintf("Cutting %s output grade %s", op.OperationNumber, o.QualityGrade),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cutting operation processed",
		zap.String("operation_number", op.OperationNumber),
		zap.String("input_quantity", op.InputQuantity.String()),
		zap.String("total_output", op.TotalOutput().String()),
	)
	resp := ToCuttingResponse(op)
	return &resp, nil
}

// Cancel cancels a pending operation. Nothing was moved, so nothing is restored.
func (s *CuttingService) Cancel(ctx context.Context, id uuid.UUID) (*CuttingResponse, error) {
	var op *production.CuttingOperation
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		op, err = repos.Cutting().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := op.Cancel(); err != nil {
			return err
		}
		moved, err := repos.Cutting().TransitionStatus(ctx, id, production.CuttingStatusPending, production.CuttingStatusCancelled)
		if err != nil {
			return err
		}
		if !moved {
			return shared.NewValidationError("cutting operation %s is no longer pending", op.OperationNumber)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cutting operation cancelled", zap.String("operation_number", op.OperationNumber))
	resp := ToCuttingResponse(op)
	return &resp, nil
}

// GetByID retrieves a cutting operation by ID
func (s *CuttingService) GetByID(ctx context.Context, id uuid.UUID) (*CuttingResponse, error) {
	op, err := s.scope.Repositories().Cutting().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCuttingResponse(op)
	return &resp, nil
}

// List lists cutting operations newest first
func (s *CuttingService) List(ctx context.Context, filter CuttingListFilter) ([]CuttingResponse, int64, error) {
	cf := production.CuttingFilter{
		Filter:      shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "operation_date"}.Normalize(),
		Status:      production.CuttingStatus(filter.Status),
		WarehouseID: filter.WarehouseID,
	}
	ops, total, err := s.scope.Repositories().Cutting().FindAll(ctx, cf)
	if err != nil {
		return nil, 0, err
	}
	out := make([]CuttingResponse, len(ops))
	for i := range ops {
		out[i] = ToCuttingResponse(&ops[i])
	}
	return out, total, nil
}
