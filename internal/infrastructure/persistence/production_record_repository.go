package persistence

import (
	"context"

	"github.com/erp/stockflow/internal/domain/production"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductionRecordRepository implements ProductionRecordRepository using GORM
type GormProductionRecordRepository struct {
	db *gorm.DB
}

// NewGormProductionRecordRepository creates a new GormProductionRecordRepository
func NewGormProductionRecordRepository(db *gorm.DB) *GormProductionRecordRepository {
	return &GormProductionRecordRepository{db: db}
}

// Create inserts a record
func (r *GormProductionRecordRepository) Create(ctx context.Context, record *production.ProductionRecord) error {
	return wrap("create production record", r.db.WithContext(ctx).Create(record).Error)
}

// FindAll lists records newest first
func (r *GormProductionRecordRepository) FindAll(ctx context.Context, filter production.RecordFilter) ([]production.ProductionRecord, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&production.ProductionRecord{})

	if filter.PurchaseOrderID != nil {
		query = query.Where("purchase_order_id = ?", *filter.PurchaseOrderID)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	query = dayRange(query, "production_date", filter.From, filter.To)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrap("count production records", err)
	}

	var records []production.ProductionRecord
	err := query.Order(orderClause(filter.Filter, ProductionRecordSortFields, "production_date")).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&records).Error
	if err != nil {
		return nil, 0, wrap("list production records", err)
	}
	for i := range records {
		scaleRecord(&records[i])
	}
	return records, total, nil
}

// FindByPurchaseOrder lists the records of one order, oldest first
func (r *GormProductionRecordRepository) FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]production.ProductionRecord, error) {
	var records []production.ProductionRecord
	err := r.db.WithContext(ctx).
		Where("purchase_order_id = ?", purchaseOrderID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, wrap("list production records by order", err)
	}
	for i := range records {
		scaleRecord(&records[i])
	}
	return records, nil
}

func scaleRecord(rec *production.ProductionRecord) {
	rec.PurchasedKg = scaled(rec.PurchasedKg)
	rec.ProductionKg = scaled(rec.ProductionKg)
}

var _ production.ProductionRecordRepository = (*GormProductionRecordRepository)(nil)
