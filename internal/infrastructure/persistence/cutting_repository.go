package persistence

import (
	"context"
	"time"

	"github.com/erp/stockflow/internal/domain/production"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCuttingOperationRepository implements CuttingOperationRepository using GORM
type GormCuttingOperationRepository struct {
	db *gorm.DB
}

// NewGormCuttingOperationRepository creates a new GormCuttingOperationRepository
func NewGormCuttingOperationRepository(db *gorm.DB) *GormCuttingOperationRepository {
	return &GormCuttingOperationRepository{db: db}
}

// FindByID finds an operation with its outputs
func (r *GormCuttingOperationRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.CuttingOperation, error) {
	var op production.CuttingOperation
	if err := r.db.WithContext(ctx).Preload("Outputs").First(&op, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "cutting operation", "find cutting operation")
	}
	scaleCutting(&op)
	return &op, nil
}

// FindAll lists operations newest first, with outputs
func (r *GormCuttingOperationRepository) FindAll(ctx context.Context, filter production.CuttingFilter) ([]production.CuttingOperation, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&production.CuttingOperation{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrap("count cutting operations", err)
	}

	var ops []production.CuttingOperation
	err := query.Preload("Outputs").
		Order(orderClause(filter.Filter, CuttingSortFields, "operation_date")).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&ops).Error
	if err != nil {
		return nil, 0, wrap("list cutting operations", err)
	}
	for i := range ops {
		scaleCutting(&ops[i])
	}
	return ops, total, nil
}

// Create inserts an operation and its outputs
func (r *GormCuttingOperationRepository) Create(ctx context.Context, op *production.CuttingOperation) error {
	return wrap("create cutting operation", r.db.WithContext(ctx).Create(op).Error)
}

// TransitionStatus moves an operation between statuses only if it is still in from
func (r *GormCuttingOperationRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to production.CuttingStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&production.CuttingOperation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})
	if result.Error != nil {
		return false, wrap("update cutting operation status", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func scaleCutting(op *production.CuttingOperation) {
	op.InputQuantity = scaled(op.InputQuantity)
	for i := range op.Outputs {
		op.Outputs[i].Quantity = scaled(op.Outputs[i].Quantity)
	}
}

var _ production.CuttingOperationRepository = (*GormCuttingOperationRepository)(nil)
