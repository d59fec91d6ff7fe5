package persistence

import (
	"context"

	"github.com/erp/stockflow/internal/application/txn"
	"github.com/erp/stockflow/internal/domain/catalog"
	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/partner"
	"github.com/erp/stockflow/internal/domain/production"
	"github.com/erp/stockflow/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements txn.TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the function inside one transaction. Every repository handed to
// fn shares the transaction; a returned error rolls all of it back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos txn.Repositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{db: tx})
	})
	return wrap("transaction", err)
}

// Repositories returns repositories bound to the plain connection
func (s *GormTransactionScope) Repositories() txn.Repositories {
	return &gormRepositories{db: s.db}
}

// gormRepositories binds every repository to one *gorm.DB, a transaction or the pool
type gormRepositories struct {
	db *gorm.DB
}

func (r *gormRepositories) Clients() partner.ClientRepository {
	return NewGormClientRepository(r.db)
}

func (r *gormRepositories) Postings() partner.LedgerPostingRepository {
	return NewGormLedgerPostingRepository(r.db)
}

func (r *gormRepositories) Warehouses() partner.WarehouseRepository {
	return NewGormWarehouseRepository(r.db)
}

func (r *gormRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.db)
}

func (r *gormRepositories) Stock() inventory.StockRepository {
	return NewGormStockRepository(r.db)
}

func (r *gormRepositories) PurchaseOrders() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.db)
}

func (r *gormRepositories) SalesOrders() trade.SalesOrderRepository {
	return NewGormSalesOrderRepository(r.db)
}

func (r *gormRepositories) Sequences() trade.SequenceRepository {
	return NewGormSequenceRepository(r.db)
}

func (r *gormRepositories) ProductionRecords() production.ProductionRecordRepository {
	return NewGormProductionRecordRepository(r.db)
}

func (r *gormRepositories) Wastage() production.WastageRecordRepository {
	return NewGormWastageRecordRepository(r.db)
}

func (r *gormRepositories) Cutting() production.CuttingOperationRepository {
	return NewGormCuttingOperationRepository(r.db)
}

var (
	_ txn.TransactionScope = (*GormTransactionScope)(nil)
	_ txn.Repositories     = (*gormRepositories)(nil)
)
