// Package txn defines the transaction boundary every workflow runs in.
package txn

import (
	"context"

	"github.com/erp/stockflow/internal/domain/catalog"
	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/partner"
	"github.com/erp/stockflow/internal/domain/production"
	"github.com/erp/stockflow/internal/domain/trade"
)

// TransactionScope runs a unit of work atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos Repositories) error) error

	// Repositories returns repositories bound to the plain connection, for reads
	Repositories() Repositories
}

// Repositories provides access to all repositories within one transaction.
// All repositories returned share the same underlying database transaction.
type Repositories interface {
	Clients() partner.ClientRepository
	Postings() partner.LedgerPostingRepository
	Warehouses() partner.WarehouseRepository
	Products() catalog.ProductRepository
	Stock() inventory.StockRepository
	PurchaseOrders() trade.PurchaseOrderRepository
	SalesOrders() trade.SalesOrderRepository
	Sequences() trade.SequenceRepository
	ProductionRecords() production.ProductionRecordRepository
	Wastage() production.WastageRecordRepository
	Cutting() production.CuttingOperationRepository
}
