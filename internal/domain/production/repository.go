package production

import (
	"context"
	"time"

	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/google/uuid"
)

// RecordFilter narrows a production history query
type RecordFilter struct {
	shared.Filter
	PurchaseOrderID *uuid.UUID
	ProductID       *uuid.UUID
	From            *time.Time
	To              *time.Time
}

// ProductionRecordRepository defines the interface for production record persistence
type ProductionRecordRepository interface {
	// Create inserts a record
	Create(ctx context.Context, record *ProductionRecord) error

	// FindAll lists records newest first
	FindAll(ctx context.Context, filter RecordFilter) ([]ProductionRecord, int64, error)

	// FindByPurchaseOrder lists the records of one order, oldest first
	FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]ProductionRecord, error)
}

// WastageFilter narrows a wastage listing
type WastageFilter struct {
	shared.Filter
	Status      WastageStatus
	Source      WastageSource
	ProductID   *uuid.UUID
	WarehouseID *uuid.UUID
	From        *time.Time
	To          *time.Time
}

// WastageRecordRepository defines the interface for wastage record persistence
type WastageRecordRepository interface {
	// FindByID finds a wastage record
	FindByID(ctx context.Context, id uuid.UUID) (*WastageRecord, error)

	// FindAll lists records newest first
	FindAll(ctx context.Context, filter WastageFilter) ([]WastageRecord, int64, error)

	// Create inserts a record
	Create(ctx context.Context, record *WastageRecord) error

	// Approve flips a pending record to approved. It returns false if the record was not pending.
	Approve(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

// CuttingFilter narrows a cutting operation listing
type CuttingFilter struct {
	shared.Filter
	Status      CuttingStatus
	WarehouseID *uuid.UUID
}

// CuttingOperationRepository defines the interface for cutting operation persistence
type CuttingOperationRepository interface {
	// FindByID finds an operation with its outputs
	FindByID(ctx context.Context, id uuid.UUID) (*CuttingOperation, error)

	// FindAll lists operations newest first, with outputs
	FindAll(ctx context.Context, filter CuttingFilter) ([]CuttingOperation, int64, error)

	// Create inserts an operation and its outputs
	Create(ctx context.Context, op *CuttingOperation) error

	// TransitionStatus moves an operation from one status to another. It returns false if the
	// operation was no longer in the expected status.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to CuttingStatus) (bool, error)
}
