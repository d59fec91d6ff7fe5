package persistence

import (
	"context"

	"github.com/erp/stockflow/internal/domain/partner"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWarehouseRepository implements WarehouseRepository using GORM
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// FindByID finds a warehouse by its ID
func (r *GormWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Warehouse, error) {
	var warehouse partner.Warehouse
	if err := r.db.WithContext(ctx).First(&warehouse, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "warehouse", "find warehouse")
	}
	return &warehouse, nil
}

// FindAll finds all warehouses, ordered by the filter
func (r *GormWarehouseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Warehouse, error) {
	filter = filter.Normalize()
	if filter.OrderBy == "" {
		filter.OrderDir = "asc"
	}
	var warehouses []partner.Warehouse
	err := r.db.WithContext(ctx).
		Order(orderClause(filter, WarehouseSortFields, "code")).
		Find(&warehouses).Error
	if err != nil {
		return nil, wrap("list warehouses", err)
	}
	return warehouses, nil
}

// Save creates or updates a warehouse
func (r *GormWarehouseRepository) Save(ctx context.Context, warehouse *partner.Warehouse) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "name", "address", "updated_at"}),
	}).Create(warehouse).Error
	return wrap("save warehouse", err)
}

var _ partner.WarehouseRepository = (*GormWarehouseRepository)(nil)
