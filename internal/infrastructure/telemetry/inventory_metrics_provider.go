package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormInventoryMetricsProvider implements InventoryMetricsProvider with GORM.
type GormInventoryMetricsProvider struct {
	db *gorm.DB
}

// NewGormInventoryMetricsProvider creates a new GormInventoryMetricsProvider.
func NewGormInventoryMetricsProvider(db *gorm.DB) *GormInventoryMetricsProvider {
	return &GormInventoryMetricsProvider{db: db}
}

// GetLowStockCount counts products with a reorder level whose stock across
// all warehouses is at or below it.
func (p *GormInventoryMetricsProvider) GetLowStockCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM products p
		WHERE p.reorder_level > 0
		AND COALESCE((SELECT SUM(s.quantity) FROM stock s WHERE s.product_id = p.id), 0) <= p.reorder_level`,
	).Scan(&count).Error
	return count, err
}
