package partner

import (
	"context"
	"time"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	// FindByID finds a client by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindAll finds clients matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Client, int64, error)

	// Save creates or updates a client. Balance is never written by Save.
	Save(ctx context.Context, client *Client) error

	// AdjustBalance applies balance = balance + delta atomically and returns the new balance
	AdjustBalance(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
}

// PostingFilter narrows a ledger posting listing
type PostingFilter struct {
	shared.Filter
	ClientID        *uuid.UUID
	TransactionType TransactionType
	ReferenceType   ReferenceType
	From            *time.Time
	To              *time.Time
	IncludeVoided   bool
}

// PostingTotals summarises cash movement over a posting listing
type PostingTotals struct {
	TotalCashIn  decimal.Decimal
	TotalCashOut decimal.Decimal
	CashInCount  int64
	CashOutCount int64
}

// NetCash returns cash in minus cash out
func (t PostingTotals) NetCash() decimal.Decimal {
	return t.TotalCashIn.Sub(t.TotalCashOut)
}

// LedgerPostingRepository defines the interface for ledger posting persistence
type LedgerPostingRepository interface {
	// FindByID finds a posting by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerPosting, error)

	// FindByReference finds the non-voided postings raised by a document, oldest first
	FindByReference(ctx context.Context, refType ReferenceType, refID uuid.UUID) ([]LedgerPosting, error)

	// FindAll lists postings newest first
	FindAll(ctx context.Context, filter PostingFilter) ([]LedgerPosting, int64, error)

	// Totals sums cash_in and cash_out over the filter
	Totals(ctx context.Context, filter PostingFilter) (PostingTotals, error)

	// SumDeltas returns the sum of balance_delta over the client's non-voided postings
	SumDeltas(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, error)

	// Create appends a posting
	Create(ctx context.Context, posting *LedgerPosting) error

	// Update rewrites a manual posting after a reverse-then-reapply correction
	Update(ctx context.Context, posting *LedgerPosting) error

	// Void marks a posting voided
	Void(ctx context.Context, id uuid.UUID) error
}

// WarehouseRepository defines the interface for warehouse persistence
type WarehouseRepository interface {
	// FindByID finds a warehouse by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)

	// FindAll finds all warehouses
	FindAll(ctx context.Context, filter shared.Filter) ([]Warehouse, error)

	// Save creates or updates a warehouse
	Save(ctx context.Context, warehouse *Warehouse) error
}
