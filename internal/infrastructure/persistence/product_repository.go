package persistence

import (
	"context"

	"github.com/erp/stockflow/internal/domain/catalog"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "product", "find product")
	}
	return &product, nil
}

// FindByIDs finds products by ID in one query
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	out := make(map[uuid.UUID]*catalog.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []catalog.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, wrap("find products", err)
	}
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}

// FindAll finds products matching the filter. Supported filters: unit_type, search.
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&catalog.Product{})

	if v, ok := filter.Filters["unit_type"].(string); ok && v != "" {
		query = query.Where("unit_type = ?", v)
	}
	if v, ok := filter.Filters["search"].(string); ok && v != "" {
		like := "%" + v + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrap("count products", err)
	}

	var products []catalog.Product
	err := query.Order(orderClause(filter, ProductSortFields, "code")).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&products).Error
	if err != nil {
		return nil, 0, wrap("list products", err)
	}
	return products, total, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"code", "name", "unit_type", "base_price", "reorder_level", "min_stock", "max_stock", "updated_at",
		}),
	}).Create(product).Error
	return wrap("save product", err)
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
