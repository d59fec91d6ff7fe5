package inventory

import (
	"context"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// DefaultHistoryLimit is the number of movements returned when no limit is given
	DefaultHistoryLimit = 50
	// MaxHistoryLimit caps a history request
	MaxHistoryLimit = 500
)

// HistoryFilter narrows a movement history query
type HistoryFilter struct {
	ProductID    *uuid.UUID
	WarehouseID  *uuid.UUID
	MovementType MovementType
	ReferenceID  *uuid.UUID
	Limit        int
}

// Normalize applies the default and maximum limit
func (f *HistoryFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultHistoryLimit
	}
	if f.Limit > MaxHistoryLimit {
		f.Limit = MaxHistoryLimit
	}
}

// PositionFilter narrows a stock position listing
type PositionFilter struct {
	shared.Filter
	ProductID   *uuid.UUID
	WarehouseID *uuid.UUID
	NonZeroOnly bool
}

// StockRepository defines the interface for stock persistence.
// All writes must run inside the caller's transaction.
type StockRepository interface {
	// FindPosition returns the position, or an empty position if the product was never stocked there
	FindPosition(ctx context.Context, productID, warehouseID uuid.UUID) (*StockPosition, error)

	// LockPosition is FindPosition holding a row lock until the transaction ends where the dialect supports it
	LockPosition(ctx context.Context, productID, warehouseID uuid.UUID) (*StockPosition, error)

	// FindPositions lists positions matching the filter
	FindPositions(ctx context.Context, filter PositionFilter) ([]StockPosition, int64, error)

	// ApplyDelta adds delta to the position in one atomic upsert and returns the new quantity.
	// A negative delta that would take the position below zero affects no row and fails with InsufficientStock.
	ApplyDelta(ctx context.Context, productID, warehouseID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)

	// CreateMovement appends a movement to the log
	CreateMovement(ctx context.Context, movement *StockMovement) error

	// FindMovements returns movements newest first
	FindMovements(ctx context.Context, filter HistoryFilter) ([]StockMovement, error)
}
