package production

import (
	"context"
	"sort"
	"time"

	inventoryapp "github.com/erp/stockflow/internal/application/inventory"
	"github.com/erp/stockflow/internal/application/txn"
	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/production"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/erp/stockflow/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ItemLocker serialises production of one purchase order item across processes.
// The database claim stays authoritative; the lock only keeps competing
// requests from doing work that would be rolled back.
type ItemLocker interface {
	// Lock blocks until the key is held or ctx ends. The returned func releases it.
	Lock(ctx context.Context, key string) (release func(context.Context) error, err error)
}

// ProductionService converts purchased material into produced stock
type ProductionService struct {
	scope           txn.TransactionScope
	logger          *zap.Logger
	locker          ItemLocker
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewProductionService creates a new ProductionService
func NewProductionService(scope txn.TransactionScope, logger *zap.Logger) *ProductionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductionService{scope: scope, logger: logger}
}

// SetItemLocker sets the distributed item lock
func (s *ProductionService) SetItemLocker(locker ItemLocker) {
	s.locker = locker
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProductionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *ProductionService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// ProcessItem records production of one purchase order item.
// Claiming the item, the production record, the stock credit, the wastage
// record and the order roll-up commit together or not at all.
func (s *ProductionService) ProcessItem(ctx context.Context, req ProcessItemRequest) (_ *ProductionResultResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "production", "process_item",
		attribute.String("purchase_order_id", req.PurchaseOrderID.String()),
		attribute.String("item_id", req.ItemID.String()),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	release, err := s.lockItems(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	defer release()

	productionDate := dateOrToday(req.ProductionDate)
	var order *trade.PurchaseOrder
	var record *production.ProductionRecord
	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		order, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, req.PurchaseOrderID)
		if err != nil {
			return err
		}
		if err := order.CheckProducible(); err != nil {
			return err
		}
		item := order.FindItem(req.ItemID)
		if item == nil {
			return shared.NewNotFoundError("purchase order item")
		}

		record, err = s.produce(ctx, repos, order, item, req.ProductionKg, productionDate, req.Notes)
		if err != nil {
			return err
		}
		order.RollUp(productionDate)
		return repos.PurchaseOrders().SaveHeader(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, order, record)
	return toProductionResult(order, []*production.ProductionRecord{record}), nil
}

// ProcessOrder records production of every pending item of an order in one
// transaction. The batch must name each pending item exactly once.
func (s *ProductionService) ProcessOrder(ctx context.Context, req ProcessOrderRequest) (_ *ProductionResultResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "production", "process_order",
		attribute.String("purchase_order_id", req.PurchaseOrderID.String()),
		attribute.Int("items", len(req.Items)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	entries := make([]production.ItemProduction, len(req.Items))
	itemIDs := make([]uuid.UUID, len(req.Items))
	for i, item := range req.Items {
		entries[i] = production.ItemProduction{ItemID: item.ItemID, ProductionKg: item.ProductionKg}
		itemIDs[i] = item.ItemID
	}

	release, err := s.lockItems(ctx, itemIDs...)
	if err != nil {
		return nil, err
	}
	defer release()

	productionDate := dateOrToday(req.ProductionDate)
	var order *trade.PurchaseOrder
	var records []*production.ProductionRecord
	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		order, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, req.PurchaseOrderID)
		if err != nil {
			return err
		}
		if err := order.CheckProducible(); err != nil {
			return err
		}
		items, err := production.MatchBatch(order, entries)
		if err != nil {
			return err
		}

		records = make([]*production.ProductionRecord, 0, len(items))
		for i, item := range items {
			rec, err := s.produce(ctx, repos, order, item, entries[i].ProductionKg, productionDate, req.Notes)
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		order.RollUp(productionDate)
		return repos.PurchaseOrders().SaveHeader(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, order, records...)
	return toProductionResult(order, records), nil
}

// produce runs one production event inside the caller's transaction
func (s *ProductionService) produce(
	ctx context.Context,
	repos txn.Repositories,
	order *trade.PurchaseOrder,
	item *trade.PurchaseOrderItem,
	productionKg decimal.Decimal,
	productionDate time.Time,
	notes string,
) (*production.ProductionRecord, error) {
	if err := item.ValidateProduction(productionKg); err != nil {
		return nil, err
	}

	claimed, err := repos.PurchaseOrders().ClaimItemProduction(ctx, item.ID, productionKg)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, shared.NewAlreadyProcessedError("production already completed for item %s", item.ID)
	}

	seq, err := repos.Sequences().Next(ctx, trade.SequenceProduction)
	if err != nil {
		return nil, err
	}
	record, err := production.NewProductionRecord(
		production.FormatProductionNumber(time.Now(), seq), order, item, productionKg, productionDate, notes)
	if err != nil {
		return nil, err
	}
	item.MarkProduced(productionKg)

	if err := repos.ProductionRecords().Create(ctx, record); err != nil {
		return nil, err
	}

	recordID := record.ID
	if _, err := inventoryapp.NewStockLedger(repos.Stock()).Increment(ctx, inventory.Entry{
		ProductID:     record.ProductID,
		WarehouseID:   record.WarehouseID,
		Quantity:      productionKg,
		MovementType:  inventory.MovementProduction,
		ReferenceType: inventory.ReferenceProductionRecord,
		ReferenceID:   &recordID,
		Notes:         record.MovementNote(order.PONumber),
	}); err != nil {
		return nil, err
	}

	if wastage := production.NewProductionWastage(record, order.PONumber); wastage != nil {
		if err := repos.Wastage().Create(ctx, wastage); err != nil {
			return nil, err
		}
	}
	return record, nil
}

func (s *ProductionService) afterCommit(ctx context.Context, order *trade.PurchaseOrder, records ...*production.ProductionRecord) {
	events := make([]shared.DomainEvent, 0, len(records))
	for _, r := range records {
		s.logger.Info("purchase order item produced",
			zap.String("production_number", r.ProductionNumber),
			zap.String("po_number", order.PONumber),
			zap.String("purchased_kg", r.PurchasedKg.String()),
			zap.String("production_kg", r.ProductionKg.String()),
			zap.String("wastage_kg", r.WastageKg().String()),
		)
		if s.businessMetrics != nil {
			s.businessMetrics.RecordProduction(ctx, r.ProductionKg, r.WastageKg())
		}
		events = append(events, production.NewItemProducedEvent(r))
	}
	if order.IsProductionCompleted {
		s.logger.Info("purchase order production completed",
			zap.String("po_number", order.PONumber),
			zap.String("production_kg", order.ProductionKg.String()),
			zap.String("wastage_percentage", order.WastagePercentage.String()),
		)
	}

	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish production events", zap.Error(err))
		}
	}
	txn.PublishEvents(ctx, s.eventPublisher, s.logger, order)
}

// lockItems takes the item locks in a fixed order. Without a locker it is a no-op.
func (s *ProductionService) lockItems(ctx context.Context, itemIDs ...uuid.UUID) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}

	keys := make([]string, 0, len(itemIDs))
	seen := make(map[uuid.UUID]bool, len(itemIDs))
	for _, id := range itemIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		keys = append(keys, "production:item:"+id.String())
	}
	sort.Strings(keys)

	releases := make([]func(context.Context) error, 0, len(keys))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			if err := releases[i](context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("failed to release production lock", zap.Error(err))
			}
		}
	}
	for _, key := range keys {
		release, err := s.locker.Lock(ctx, key)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, release)
	}
	return releaseAll, nil
}

// GetProductionContext returns an order with its items, purchased and pending
// weights, and the production recorded so far
func (s *ProductionService) GetProductionContext(ctx context.Context, purchaseOrderID uuid.UUID) (*ProductionContextResponse, error) {
	repos := s.scope.Repositories()
	order, err := repos.PurchaseOrders().FindByID(ctx, purchaseOrderID)
	if err != nil {
		return nil, err
	}
	records, err := repos.ProductionRecords().FindByPurchaseOrder(ctx, purchaseOrderID)
	if err != nil {
		return nil, err
	}
	return toProductionContext(order, records), nil
}

// History lists production records newest first
func (s *ProductionService) History(ctx context.Context, filter HistoryFilter) ([]ProductionRecordResponse, int64, error) {
	rf := production.RecordFilter{
		Filter:          shared.Filter{Page: filter.Page, PageSize: filter.PageSize, OrderBy: "production_date"}.Normalize(),
		PurchaseOrderID: filter.PurchaseOrderID,
		ProductID:       filter.ProductID,
		From:            filter.From,
		To:              filter.To,
	}
	records, total, err := s.scope.Repositories().ProductionRecords().FindAll(ctx, rf)
	if err != nil {
		return nil, 0, err
	}
	return ToProductionRecordResponses(records), total, nil
}

// HistoryByOrder lists the production records of one purchase order
func (s *ProductionService) HistoryByOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]ProductionRecordResponse, error) {
	repos := s.scope.Repositories()
	if _, err := repos.PurchaseOrders().FindByID(ctx, purchaseOrderID); err != nil {
		return nil, err
	}
	records, err := repos.ProductionRecords().FindByPurchaseOrder(ctx, purchaseOrderID)
	if err != nil {
		return nil, err
	}
	return ToProductionRecordResponses(records), nil
}

// PendingItems lists every item still waiting for production across open orders
func (s *ProductionService) PendingItems(ctx context.Context) ([]PendingItemResponse, error) {
	orders, err := s.scope.Repositories().PurchaseOrders().FindPendingProduction(ctx)
	if err != nil {
		return nil, err
	}
	var out []PendingItemResponse
	for i := range orders {
		order := &orders[i]
		for _, item := range order.PendingItems() {
			out = append(out, PendingItemResponse{
				PurchaseOrderID: order.ID,
				PONumber:        order.PONumber,
				SupplierID:      order.SupplierID,
				WarehouseID:     order.WarehouseID,
				OrderDate:       order.OrderDate,
				ItemID:          item.ID,
				ProductID:       item.ProductID,
				UnitType:        item.UnitType.String(),
				Quantity:        item.Quantity,
				PurchasedKg:     item.PurchasedKg(),
			})
		}
	}
	return out, nil
}

func dateOrToday(d *time.Time) time.Time {
	if d == nil || d.IsZero() {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
	return *d
}
