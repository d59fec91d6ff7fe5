package persistence

import (
	"context"
	"time"

	"github.com/erp/stockflow/internal/domain/production"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWastageRecordRepository implements WastageRecordRepository using GORM
type GormWastageRecordRepository struct {
	db *gorm.DB
}

// NewGormWastageRecordRepository creates a new GormWastageRecordRepository
func NewGormWastageRecordRepository(db *gorm.DB) *GormWastageRecordRepository {
	return &GormWastageRecordRepository{db: db}
}

// FindByID finds a wastage record
func (r *GormWastageRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*production.WastageRecord, error) {
	var record production.WastageRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "wastage record", "find wastage record")
	}
	scaleWastage(&record)
	return &record, nil
}

// FindAll lists records newest first
func (r *GormWastageRecordRepository) FindAll(ctx context.Context, filter production.WastageFilter) ([]production.WastageRecord, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&production.WastageRecord{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	query = dayRange(query, "wastage_date", filter.From, filter.To)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrap("count wastage records", err)
	}

	var records []production.WastageRecord
	err := query.Order(orderClause(filter.Filter, WastageSortFields, "wastage_date")).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&records).Error
	if err != nil {
		return nil, 0, wrap("list wastage records", err)
	}
	for i := range records {
		scaleWastage(&records[i])
	}
	return records, total, nil
}

// Create inserts a record
func (r *GormWastageRecordRepository) Create(ctx context.Context, record *production.WastageRecord) error {
	return wrap("create wastage record", r.db.WithContext(ctx).Create(record).Error)
}

// Approve flips a pending record to approved
func (r *GormWastageRecordRepository) Approve(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&production.WastageRecord{}).
		Where("id = ? AND status = ?", id, production.WastageStatusPending).
		Updates(map[string]any{
			"status":      production.WastageStatusApproved,
			"approved_at": at,
			"updated_at":  at,
		})
	if result.Error != nil {
		return false, wrap("approve wastage record", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func scaleWastage(w *production.WastageRecord) {
	w.Quantity = scaled(w.Quantity)
	w.CostValue = scaled(w.CostValue)
}

var _ production.WastageRecordRepository = (*GormWastageRecordRepository)(nil)
