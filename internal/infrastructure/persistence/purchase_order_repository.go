package persistence

import (
	"context"
	"time"

	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds an order with its items
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var order trade.PurchaseOrder
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "purchase order", "find purchase order")
	}
	scalePurchaseOrder(&order)
	return &order, nil
}

// FindByIDForUpdate locks the order row on postgres before loading it
func (r *GormPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	if r.db.Dialector.Name() == DriverPostgres {
		var locked trade.PurchaseOrder
		err := r.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&locked, "id = ?", id).Error
		if err != nil {
			return nil, notFoundOr(err, "purchase order", "lock purchase order")
		}
	}
	return r.FindByID(ctx, id)
}

// FindAll lists orders newest first, with items
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter trade.PurchaseOrderFilter) ([]trade.PurchaseOrder, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&trade.PurchaseOrder{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.IsProductionCompleted != nil {
		query = query.Where("is_production_completed = ?", *filter.IsProductionCompleted)
	}
	query = dayRange(query, "order_date", filter.From, filter.To)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrap("count purchase orders", err)
	}

	var orders []trade.PurchaseOrder
	err := query.Preload("Items").
		Order(orderClause(filter.Filter, PurchaseOrderSortFields, "order_date")).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, wrap("list purchase orders", err)
	}
	for i := range orders {
		scalePurchaseOrder(&orders[i])
	}
	return orders, total, nil
}

// FindPendingProduction lists non-cancelled orders whose production is not complete, oldest first
func (r *GormPurchaseOrderRepository) FindPendingProduction(ctx context.Context) ([]trade.PurchaseOrder, error) {
	var orders []trade.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status <> ? AND is_production_completed = ?", trade.PurchaseOrderStatusCancelled, false).
		Order("order_date ASC, created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, wrap("list pending production", err)
	}
	for i := range orders {
		scalePurchaseOrder(&orders[i])
	}
	return orders, nil
}

// Create inserts an order and its items
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, order *trade.PurchaseOrder) error {
	return wrap("create purchase order", r.db.WithContext(ctx).Create(order).Error)
}

// SaveHeader updates the order row only; items change through ClaimItemProduction
func (r *GormPurchaseOrderRepository) SaveHeader(ctx context.Context, order *trade.PurchaseOrder) error {
	result := r.db.WithContext(ctx).
		Model(&trade.PurchaseOrder{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":                  order.Status,
			"is_production_completed": order.IsProductionCompleted,
			"production_kg":           order.ProductionKg,
			"wastage_kg":              order.WastageKg,
			"wastage_percentage":      order.WastagePercentage,
			"production_date":         order.ProductionDate,
			"paid_immediately":        order.PaidImmediately,
			"notes":                   order.Notes,
			"updated_at":              order.UpdatedAt,
		})
	if result.Error != nil {
		return wrap("save purchase order", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFoundOr(gorm.ErrRecordNotFound, "purchase order", "save purchase order")
	}
	return nil
}

// ClaimItemProduction completes an item only if it is still pending. Exactly one
// concurrent caller sees true.
func (r *GormPurchaseOrderRepository) ClaimItemProduction(ctx context.Context, itemID uuid.UUID, productionKg decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&trade.PurchaseOrderItem{}).
		Where("id = ? AND is_production_completed = ?", itemID, false).
		Updates(map[string]any{
			"is_production_completed": true,
			"production_kg":           productionKg,
			"updated_at":              time.Now(),
		})
	if result.Error != nil {
		return false, wrap("claim item production", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func scalePurchaseOrder(o *trade.PurchaseOrder) {
	scaleTotals(&o.OrderTotals)
	o.ProductionKg = scaled(o.ProductionKg)
	o.WastageKg = scaled(o.WastageKg)
	o.WastagePercentage = scaled(o.WastagePercentage)
	for i := range o.Items {
		scaleLine(&o.Items[i].OrderLine)
		if o.Items[i].ProductionKg != nil {
			kg := scaled(*o.Items[i].ProductionKg)
			o.Items[i].ProductionKg = &kg
		}
	}
}

func scaleTotals(t *trade.OrderTotals) {
	t.Subtotal = scaled(t.Subtotal)
	t.DiscountAmount = scaled(t.DiscountAmount)
	t.TaxAmount = scaled(t.TaxAmount)
	t.TotalAmount = scaled(t.TotalAmount)
	t.TotalKg = scaled(t.TotalKg)
}

func scaleLine(l *trade.OrderLine) {
	l.Quantity = scaled(l.Quantity)
	l.UnitPrice = scaled(l.UnitPrice)
	l.TaxRate = scaled(l.TaxRate)
	l.DiscountRate = scaled(l.DiscountRate)
	l.TotalKg = scaled(l.TotalKg)
	l.Subtotal = scaled(l.Subtotal)
	l.DiscountAmount = scaled(l.DiscountAmount)
	l.TaxAmount = scaled(l.TaxAmount)
	l.LineTotal = scaled(l.LineTotal)
	if l.BagWeight != nil {
		w := scaled(*l.BagWeight)
		l.BagWeight = &w
	}
}

var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
