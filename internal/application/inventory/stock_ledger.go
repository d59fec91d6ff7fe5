package inventory

import (
	"context"

	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLedger applies stock changes inside the caller's transaction. Every change
// is one atomic upsert of the position plus one movement row, so a position always
// equals the sum of its movements. It is the only writer of stock.quantity.
type StockLedger struct {
	repo inventory.StockRepository
}

// NewStockLedger creates a StockLedger over a transaction-bound stock repository
func NewStockLedger(repo inventory.StockRepository) *StockLedger {
	return &StockLedger{repo: repo}
}

// Increment adds e.Quantity to the position
func (l *StockLedger) Increment(ctx context.Context, e inventory.Entry) (*inventory.StockMovement, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	balance, err := l.repo.ApplyDelta(ctx, e.ProductID, e.WarehouseID, e.Quantity)
	if err != nil {
		return nil, err
	}
	return l.record(ctx, e, e.Quantity, balance)
}

// Decrement removes e.Quantity from the position. Availability is checked under a
// row lock first and the upsert itself refuses to go negative.
func (l *StockLedger) Decrement(ctx context.Context, e inventory.Entry) (*inventory.StockMovement, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	pos, err := l.repo.LockPosition(ctx, e.ProductID, e.WarehouseID)
	if err != nil {
		return nil, err
	}
	if !pos.CanSupply(e.Quantity) {
		return nil, insufficient(e.ProductID, e.WarehouseID, pos.Quantity, e.Quantity)
	}
	balance, err := l.repo.ApplyDelta(ctx, e.ProductID, e.WarehouseID, e.Quantity.Neg())
	if err != nil {
		return nil, err
	}
	return l.record(ctx, e, e.Quantity.Neg(), balance)
}

// Transfer moves qty between warehouses. Both legs commit or neither does; each
// movement names the other warehouse as its counterpart.
func (l *StockLedger) Transfer(ctx context.Context, productID, from, to uuid.UUID, qty decimal.Decimal, notes string) (out, in *inventory.StockMovement, err error) {
	if from == to {
		return nil, nil, shared.NewValidationError("source and destination warehouse must differ")
	}
	fromID, toID := from, to
	out, err = l.Decrement(ctx, inventory.Entry{
		ProductID:              productID,
		WarehouseID:            from,
		Quantity:               qty,
		MovementType:           inventory.MovementTransferOut,
		ReferenceType:          inventory.ReferenceTransfer,
		CounterpartWarehouseID: &toID,
		Notes:                  notes,
	})
	if err != nil {
		return nil, nil, err
	}
	in, err = l.Increment(ctx, inventory.Entry{
		ProductID:              productID,
		WarehouseID:            to,
		Quantity:               qty,
		MovementType:           inventory.MovementTransferIn,
		ReferenceType:          inventory.ReferenceTransfer,
		CounterpartWarehouseID: &fromID,
		Notes:                  notes,
	})
	if err != nil {
		return nil, nil, err
	}
	return out, in, nil
}

// Adjust applies a signed manual correction as an adjustment movement
func (l *StockLedger) Adjust(ctx context.Context, productID, warehouseID uuid.UUID, signedQty decimal.Decimal, refType string, refID *uuid.UUID, notes string) (*inventory.StockMovement, error) {
	if signedQty.IsZero() {
		return nil, shared.NewValidationError("adjustment quantity cannot be zero")
	}
	if refType == "" {
		refType = inventory.ReferenceManual
	}
	e := inventory.Entry{
		ProductID:     productID,
		WarehouseID:   warehouseID,
		Quantity:      signedQty.Abs(),
		MovementType:  inventory.MovementAdjustment,
		ReferenceType: refType,
		ReferenceID:   refID,
		Notes:         notes,
	}
	if signedQty.IsNegative() {
		return l.Decrement(ctx, e)
	}
	return l.Increment(ctx, e)
}

func (l *StockLedger) record(ctx context.Context, e inventory.Entry, signed, balance decimal.Decimal) (*inventory.StockMovement, error) {
	m := inventory.NewMovement(e, signed, balance)
	if err := l.repo.CreateMovement(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func insufficient(productID, warehouseID uuid.UUID, available, requested decimal.Decimal) error {
	return shared.NewInsufficientStockError("insufficient stock for product %s in warehouse %s: available %s, requested %s",
		productID, warehouseID, available.StringFixed(3), requested.StringFixed(3))
}
