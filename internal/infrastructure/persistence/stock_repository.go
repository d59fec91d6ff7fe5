package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Quantities are rounded to the column scale inside the statements. SQLite stores
// DECIMAL columns as REAL, and unrounded sums drift (0.7 + 0.1 - 0.8 < 0).
const (
	incrementStockSQL = `INSERT INTO stock (id, product_id, warehouse_id, quantity, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (product_id, warehouse_id)
DO UPDATE SET quantity = ROUND(stock.quantity + excluded.quantity, 4), updated_at = excluded.updated_at
RETURNING quantity`

	decrementStockSQL = `UPDATE stock SET quantity = ROUND(quantity + ?, 4), updated_at = ?
WHERE product_id = ? AND warehouse_id = ? AND ROUND(quantity + ?, 4) >= 0
RETURNING quantity`
)

// GormStockRepository implements StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindPosition returns the position, or an empty one if the product was never stocked there
func (r *GormStockRepository) FindPosition(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.StockPosition, error) {
	return r.findPosition(r.db.WithContext(ctx), productID, warehouseID)
}

// LockPosition reads the position with SELECT ... FOR UPDATE on postgres.
// SQLite has no row locks; its single writer connection serializes transactions instead.
func (r *GormStockRepository) LockPosition(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.StockPosition, error) {
	db := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == DriverPostgres {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.findPosition(db, productID, warehouseID)
}

func (r *GormStockRepository) findPosition(db *gorm.DB, productID, warehouseID uuid.UUID) (*inventory.StockPosition, error) {
	var pos inventory.StockPosition
	err := db.Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).First(&pos).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return inventory.EmptyPosition(productID, warehouseID), nil
	}
	if err != nil {
		return nil, wrap("find stock position", err)
	}
	pos.Quantity = scaled(pos.Quantity)
	return &pos, nil
}

// FindPositions lists positions matching the filter
func (r *GormStockRepository) FindPositions(ctx context.Context, filter inventory.PositionFilter) ([]inventory.StockPosition, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&inventory.StockPosition{})

	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.NonZeroOnly {
		query = query.Where("quantity <> 0")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrap("count stock positions", err)
	}

	var positions []inventory.StockPosition
	err := query.Order(orderClause(filter.Filter, StockSortFields, "updated_at")).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&positions).Error
	if err != nil {
		return nil, 0, wrap("list stock positions", err)
	}
	for i := range positions {
		positions[i].Quantity = scaled(positions[i].Quantity)
	}
	return positions, total, nil
}

// ApplyDelta adds delta to the position in one statement and returns the new quantity.
// Increments upsert the row; decrements only match a row that stays non-negative.
func (r *GormStockRepository) ApplyDelta(ctx context.Context, productID, warehouseID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	var (
		quantity decimal.Decimal
		row      *sql.Row
		now      = time.Now()
	)
	if delta.IsNegative() {
		row = r.db.WithContext(ctx).Raw(decrementStockSQL, delta, now, productID, warehouseID, delta).Row()
	} else {
		row = r.db.WithContext(ctx).Raw(incrementStockSQL, uuid.New(), productID, warehouseID, delta, now).Row()
	}

	err := row.Scan(&quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, shared.NewInsufficientStockError(
			"insufficient stock for product %s in warehouse %s: cannot remove %s",
			productID, warehouseID, delta.Neg().StringFixed(3))
	}
	if err != nil {
		return decimal.Zero, wrap("apply stock delta", err)
	}
	return scaled(quantity), nil
}

// CreateMovement appends a movement to the log
func (r *GormStockRepository) CreateMovement(ctx context.Context, movement *inventory.StockMovement) error {
	return wrap("create stock movement", r.db.WithContext(ctx).Create(movement).Error)
}

// FindMovements returns movements newest first, capped by the filter limit
func (r *GormStockRepository) FindMovements(ctx context.Context, filter inventory.HistoryFilter) ([]inventory.StockMovement, error) {
	filter.Normalize()
	query := r.db.WithContext(ctx).Model(&inventory.StockMovement{})

	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.MovementType != "" {
		query = query.Where("movement_type = ?", filter.MovementType)
	}
	if filter.ReferenceID != nil {
		query = query.Where("reference_id = ?", *filter.ReferenceID)
	}

	var movements []inventory.StockMovement
	if err := query.Order("created_at DESC").Limit(filter.Limit).Find(&movements).Error; err != nil {
		return nil, wrap("list stock movements", err)
	}
	for i := range movements {
		movements[i].Quantity = scaled(movements[i].Quantity)
		movements[i].BalanceAfter = scaled(movements[i].BalanceAfter)
	}
	return movements, nil
}

var _ inventory.StockRepository = (*GormStockRepository)(nil)
