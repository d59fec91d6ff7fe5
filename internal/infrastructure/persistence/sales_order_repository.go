package persistence

import (
	"context"

	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSalesOrderRepository implements SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByID finds an order with its items
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	var order trade.SalesOrder
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "sales order", "find sales order")
	}
	scaleSalesOrder(&order)
	return &order, nil
}

// FindByIDForUpdate locks the order row on postgres before loading it, so a
// concurrent confirm and cancel cannot both act on the same order
func (r *GormSalesOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	if r.db.Dialector.Name() == DriverPostgres {
		var locked trade.SalesOrder
		err := r.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&locked, "id = ?", id).Error
		if err != nil {
			return nil, notFoundOr(err, "sales order", "lock sales order")
		}
	}
	return r.FindByID(ctx, id)
}

// FindAll lists orders newest first, with items
func (r *GormSalesOrderRepository) FindAll(ctx context.Context, filter trade.SalesOrderFilter) ([]trade.SalesOrder, int64, error) {
	filter.Filter = filter.Filter.Normalize()
	query := r.db.WithContext(ctx).Model(&trade.SalesOrder{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	query = dayRange(query, "order_date", filter.From, filter.To)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrap("count sales orders", err)
	}

	var orders []trade.SalesOrder
	err := query.Preload("Items").
		Order(orderClause(filter.Filter, SalesOrderSortFields, "order_date")).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, wrap("list sales orders", err)
	}
	for i := range orders {
		scaleSalesOrder(&orders[i])
	}
	return orders, total, nil
}

// Create inserts an order and its items
func (r *GormSalesOrderRepository) Create(ctx context.Context, order *trade.SalesOrder) error {
	return wrap("create sales order", r.db.WithContext(ctx).Create(order).Error)
}

// SaveHeader updates the order row only
func (r *GormSalesOrderRepository) SaveHeader(ctx context.Context, order *trade.SalesOrder) error {
	result := r.db.WithContext(ctx).
		Model(&trade.SalesOrder{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":           order.Status,
			"stock_deducted":   order.StockDeducted,
			"paid_immediately": order.PaidImmediately,
			"notes":            order.Notes,
			"updated_at":       order.UpdatedAt,
		})
	if result.Error != nil {
		return wrap("save sales order", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFoundOr(gorm.ErrRecordNotFound, "sales order", "save sales order")
	}
	return nil
}

func scaleSalesOrder(o *trade.SalesOrder) {
	scaleTotals(&o.OrderTotals)
	o.ShippingCharges = scaled(o.ShippingCharges)
	for i := range o.Items {
		scaleLine(&o.Items[i].OrderLine)
	}
}

var _ trade.SalesOrderRepository = (*GormSalesOrderRepository)(nil)
