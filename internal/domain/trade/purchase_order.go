package trade

import (
	"time"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending   PurchaseOrderStatus = "pending"
	PurchaseOrderStatusConfirmed PurchaseOrderStatus = "confirmed"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "received"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusPending, PurchaseOrderStatusConfirmed,
		PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// PurchaseOrderItem is one purchased line. Production is tracked per item.
type PurchaseOrderItem struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	PurchaseOrderID uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderLine       `gorm:"embedded"`

	IsProductionCompleted bool             `gorm:"not null;default:false"`
	ProductionKg          *decimal.Decimal `gorm:"type:decimal(18,4)"`
	CreatedAt             time.Time        `gorm:"not null"`
	UpdatedAt             time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// PurchasedKg is the item's canonical purchased weight
func (i *PurchaseOrderItem) PurchasedKg() decimal.Decimal {
	return i.TotalKg
}

// ValidateProduction checks a produced quantity against the item
func (i *PurchaseOrderItem) ValidateProduction(productionKg decimal.Decimal) error {
	if i.IsProductionCompleted {
		return shared.NewAlreadyProcessedError("production already completed for item %s", i.ID)
	}
	if !productionKg.IsPositive() {
		return shared.NewValidationError("production_kg must be greater than 0")
	}
	if productionKg.GreaterThan(i.TotalKg) {
		return shared.NewValidationError("production_kg (%s) cannot exceed purchased quantity (%s)",
			productionKg.StringFixed(3), i.TotalKg.StringFixed(3))
	}
	return nil
}

// MarkProduced records the produced quantity on the item
func (i *PurchaseOrderItem) MarkProduced(productionKg decimal.Decimal) {
	kg := productionKg
	i.IsProductionCompleted = true
	i.ProductionKg = &kg
	i.UpdatedAt = time.Now()
}

// PurchaseOrder is the aggregate root for a supplier purchase
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	PONumber             string     `gorm:"column:po_number;type:varchar(30);not null;uniqueIndex"`
	SupplierID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	WarehouseID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	OrderDate            time.Time  `gorm:"type:date;not null;index"`
	ExpectedDeliveryDate *time.Time `gorm:"type:date"`
	OrderTotals          `gorm:"embedded"`
	Status               PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'pending';index"`

	IsProductionCompleted bool            `gorm:"not null;default:false;index"`
	ProductionKg          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WastageKg             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WastagePercentage     decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
	ProductionDate        *time.Time      `gorm:"type:date"`

	PaidImmediately bool                `gorm:"not null;default:false"`
	Notes           string              `gorm:"type:text"`
	Items           []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a pending purchase order from priced lines
func NewPurchaseOrder(number string, supplierID, warehouseID uuid.UUID, orderDate time.Time, priced PricedOrder) (*PurchaseOrder, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewValidationError("supplier_id is required")
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

	order := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PONumber:          number,
		SupplierID:        supplierID,
		WarehouseID:       warehouseID,
		OrderDate:         orderDate,
		OrderTotals:       newOrderTotals(priced),
		Status:            PurchaseOrderStatusPending,
		ProductionKg:      decimal.Zero,
		WastageKg:         decimal.Zero,
		WastagePercentage: decimal.Zero,
	}

	order.Items = make([]PurchaseOrderItem, 0, len(priced.Lines))
	for _, pl := range priced.Lines {
		order.Items = append(order.Items, PurchaseOrderItem{
			ID:              uuid.New(),
			PurchaseOrderID: order.ID,
			OrderLine:       newOrderLine(pl),
			CreatedAt:       order.CreatedAt,
			UpdatedAt:       order.CreatedAt,
		})
	}

	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))
	return order, nil
}

// MarkPaidImmediately flags the order as paid at creation
func (o *PurchaseOrder) MarkPaidImmediately() {
	o.PaidImmediately = true
}

// FindItem returns the item with the given ID, or nil
func (o *PurchaseOrder) FindItem(itemID uuid.UUID) *PurchaseOrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

// PendingItems returns the items not yet produced
func (o *PurchaseOrder) PendingItems() []*PurchaseOrderItem {
	var pending []*PurchaseOrderItem
	for i := range o.Items {
		if !o.Items[i].IsProductionCompleted {
			pending = append(pending, &o.Items[i])
		}
	}
	return pending
}

// ProducedItemCount returns how many items have been produced
func (o *PurchaseOrder) ProducedItemCount() int {
	return len(o.Items) - len(o.PendingItems())
}

// CheckProducible verifies the order can accept production
func (o *PurchaseOrder) CheckProducible() error {
	if o.Status == PurchaseOrderStatusCancelled {
		return shared.NewValidationError("purchase order %s is cancelled", o.PONumber)
	}
	if o.IsProductionCompleted {
		return shared.NewAlreadyProcessedError("production already completed for purchase order %s", o.PONumber)
	}
	return nil
}

// RollUp recomputes the aggregate production figures from the items and
// marks the order completed once no item is pending. It reports whether the
// order is now complete.
func (o *PurchaseOrder) RollUp(productionDate time.Time) bool {
	produced := decimal.Zero
	purchased := decimal.Zero
	for _, item := range o.Items {
		if !item.IsProductionCompleted || item.ProductionKg == nil {
			continue
		}
		produced = produced.Add(*item.ProductionKg)
		purchased = purchased.Add(item.TotalKg)
	}

	o.ProductionKg = produced
	o.WastageKg = purchased.Sub(produced)
	if purchased.IsPositive() {
		o.WastagePercentage = o.WastageKg.Div(purchased).Mul(decimal.NewFromInt(100)).Round(moneyPlaces)
	} else {
		o.WastagePercentage = decimal.Zero
	}
	o.Touch()

	if len(o.PendingItems()) > 0 || o.IsProductionCompleted {
		return o.IsProductionCompleted
	}
	o.IsProductionCompleted = true
	d := productionDate
	o.ProductionDate = &d
	o.AddDomainEvent(NewPurchaseOrderProductionCompletedEvent(o))
	return true
}

// Cancel cancels a pending order that has no produced items
func (o *PurchaseOrder) Cancel() error {
	if o.Status != PurchaseOrderStatusPending {
		return shared.NewValidationError("only pending purchase orders can be cancelled, current status is %s", o.Status)
	}
	if o.ProducedItemCount() > 0 {
		return shared.NewValidationError("purchase order %s has produced items and cannot be cancelled", o.PONumber)
	}
	o.Status = PurchaseOrderStatusCancelled
	o.Touch()
	o.AddDomainEvent(NewPurchaseOrderCancelledEvent(o))
	return nil
}
