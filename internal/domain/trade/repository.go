package trade

import (
	"context"
	"time"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderFilter narrows a purchase order listing
type PurchaseOrderFilter struct {
	shared.Filter
	Status                PurchaseOrderStatus
	SupplierID            *uuid.UUID
	IsProductionCompleted *bool
	From                  *time.Time
	To                    *time.Time
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID finds an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByIDForUpdate finds an order with its items, locking the order row where supported
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindAll lists orders newest first, with items
	FindAll(ctx context.Context, filter PurchaseOrderFilter) ([]PurchaseOrder, int64, error)

	// FindPendingProduction lists non-cancelled orders whose production is not complete
	FindPendingProduction(ctx context.Context) ([]PurchaseOrder, error)

	// Create inserts an order and its items
	Create(ctx context.Context, order *PurchaseOrder) error

	// SaveHeader updates the order row only
	SaveHeader(ctx context.Context, order *PurchaseOrder) error

	// ClaimItemProduction sets is_production_completed and production_kg on an item only if it is
	// still pending. It returns false when another writer already completed the item.
	ClaimItemProduction(ctx context.Context, itemID uuid.UUID, productionKg decimal.Decimal) (bool, error)
}

// SalesOrderFilter narrows a sales order listing
type SalesOrderFilter struct {
	shared.Filter
	Status     SalesOrderStatus
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
}

// SalesOrderRepository defines the interface for sales order persistence
type SalesOrderRepository interface {
	// FindByID finds an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrder, error)

	// FindByIDForUpdate finds an order with its items, locking the order row where supported
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*SalesOrder, error)

	// FindAll lists orders newest first, with items
	FindAll(ctx context.Context, filter SalesOrderFilter) ([]SalesOrder, int64, error)

	// Create inserts an order and its items
	Create(ctx context.Context, order *SalesOrder) error

	// SaveHeader updates the order row only
	SaveHeader(ctx context.Context, order *SalesOrder) error
}

// SequenceRepository hands out document numbers from an atomic counter
type SequenceRepository interface {
	// Next increments the named counter and returns the new value
	Next(ctx context.Context, name string) (int64, error)
}

// Sequence names
const (
	SequencePurchaseOrder = "purchase_order"
	SequenceSalesOrder    = "sales_order"
	SequenceProduction    = "production"
	SequencePettyCash     = "petty_cash"
	SequenceCutting       = "cutting"
)
