package trade

import (
	"time"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesOrderStatus represents the status of a sales order
type SalesOrderStatus string

const (
	SalesOrderStatusDraft     SalesOrderStatus = "draft"
	SalesOrderStatusConfirmed SalesOrderStatus = "confirmed"
	SalesOrderStatusCancelled SalesOrderStatus = "cancelled"
)

// IsValid checks if the status is a valid SalesOrderStatus
func (s SalesOrderStatus) IsValid() bool {
	switch s {
	case SalesOrderStatusDraft, SalesOrderStatusConfirmed, SalesOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of SalesOrderStatus
func (s SalesOrderStatus) String() string {
	return string(s)
}

// SalesOrderItem is one sold line
type SalesOrderItem struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	SalesOrderID uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderLine    `gorm:"embedded"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalesOrderItem) TableName() string {
	return "sales_order_items"
}

// SalesOrder is the aggregate root for a customer sale
type SalesOrder struct {
	shared.BaseAggregateRoot
	OrderNumber     string    `gorm:"type:varchar(30);not null;uniqueIndex"`
	CustomerID      uuid.UUID `gorm:"type:uuid;not null;index"`
	WarehouseID     uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderDate       time.Time `gorm:"type:date;not null;index"`
	OrderTotals     `gorm:"embedded"`
	ShippingCharges decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Status          SalesOrderStatus `gorm:"type:varchar(20);not null;default:'confirmed';index"`
	StockDeducted   bool             `gorm:"not null;default:false"`
	PaidImmediately bool             `gorm:"not null;default:false"`
	Notes           string           `gorm:"type:text"`
	Items           []SalesOrderItem `gorm:"foreignKey:SalesOrderID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// NewSalesOrder creates a draft sales order from priced lines.
// Confirmation is a separate step so stock and ledger effects stay with the service.
func NewSalesOrder(number string, customerID, warehouseID uuid.UUID, orderDate time.Time, priced PricedOrder) (*SalesOrder, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer_id is required")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewValidationError("warehouse_id is required")
	}
	if orderDate.IsZero() {
		return nil, shared.NewValidationError("order_date is required")
	}
	if len(priced.Lines) == 0 {
		return nil, shared.NewValidationError("at least one item is required")
	}

	order := &SalesOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       number,
		CustomerID:        customerID,
		WarehouseID:       warehouseID,
		OrderDate:         orderDate,
		OrderTotals:       newOrderTotals(priced),
		ShippingCharges:   priced.ShippingCharges.Round(moneyPlaces),
		Status:            SalesOrderStatusDraft,
	}

	order.Items = make([]SalesOrderItem, 0, len(priced.Lines))
	for _, pl := range priced.Lines {
		order.Items = append(order.Items, SalesOrderItem{
			ID:           uuid.New(),
			SalesOrderID: order.ID,
			OrderLine:    newOrderLine(pl),
			CreatedAt:    order.CreatedAt,
			UpdatedAt:    order.CreatedAt,
		})
	}

	order.AddDomainEvent(NewSalesOrderCreatedEvent(order))
	return order, nil
}

// Confirm moves a draft order to confirmed after its stock has been deducted
func (o *SalesOrder) Confirm() error {
	if o.Status != SalesOrderStatusDraft {
		return shared.NewValidationError("only draft sales orders can be confirmed, current status is %s", o.Status)
	}
	o.Status = SalesOrderStatusConfirmed
	o.StockDeducted = true
	o.Touch()
	o.AddDomainEvent(NewSalesOrderConfirmedEvent(o))
	return nil
}

// MarkPaidImmediately flags the order as paid at confirmation
func (o *SalesOrder) MarkPaidImmediately() {
	o.PaidImmediately = true
}

// Cancel cancels a draft or confirmed order. It reports whether stock must be restored.
func (o *SalesOrder) Cancel() (restoreStock bool, err error) {
	switch o.Status {
	case SalesOrderStatusDraft:
	case SalesOrderStatusConfirmed:
		restoreStock = o.StockDeducted
	default:
		return false, shared.NewValidationError("sales order %s is already cancelled", o.OrderNumber)
	}
	o.Status = SalesOrderStatusCancelled
	o.StockDeducted = false
	o.Touch()
	o.AddDomainEvent(NewSalesOrderCancelledEvent(o))
	return restoreStock, nil
}
