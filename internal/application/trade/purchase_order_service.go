package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/stockflow/internal/application/ledger"
	"github.com/erp/stockflow/internal/application/txn"
	"github.com/erp/stockflow/internal/domain/partner"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/erp/stockflow/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PurchaseOrderService handles purchase order business operations
type PurchaseOrderService struct {
	scope           txn.TransactionScope
	logger          *zap.Logger
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(scope txn.TransactionScope, logger *zap.Logger) *PurchaseOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderService{scope: scope, logger: logger}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *PurchaseOrderService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create prices and stores a purchase order and posts its payable, plus the
// immediate payment when requested. Nothing is stored if any step fails.
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	orderDate := dateOrToday(req.OrderDate)
	lines := ToLineInputs(req.Items)
	priced, err := trade.PriceLines(lines, decimal.Zero)
	if err != nil {
		return nil, err
	}

	var order *trade.PurchaseOrder
	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		supplier, err := repos.Clients().FindByID(ctx, req.SupplierID)
		if err != nil {
			return err
		}
		if !supplier.CanActAs(partner.RoleSupplier) {
			return shared.NewValidationError("client %s is not a supplier", supplier.Code)
		}
		if _, err := repos.Warehouses().FindByID(ctx, req.WarehouseID); err != nil {
			return err
		}
		if err := ensureProducts(ctx, repos, lines); err != nil {
			return err
		}

		seq, err := repos.Sequences().Next(ctx, trade.SequencePurchaseOrder)
		if err != nil {
			return err
		}
		order, err = trade.NewPurchaseOrder(trade.FormatNumber("PO", seq), req.SupplierID, req.WarehouseID, orderDate, priced)
		if err != nil {
			return err
		}
		order.ExpectedDeliveryDate = req.ExpectedDeliveryDate
		order.Notes = req.Notes
		if req.MakePayment {
			order.MarkPaidImmediately()
		}
		if err := repos.PurchaseOrders().Create(ctx, order); err != nil {
			return err
		}

		poster := ledger.NewPoster(repos)
		if _, err := poster.Post(ctx, ledger.PostingInput{
			ClientID:      order.SupplierID,
			Role:          partner.RoleSupplier,
			Type:          partner.TransactionTypePayable,
			Amount:        order.TotalAmount,
			Date:          orderDate,
			ReferenceType: partner.ReferencePurchaseOrder,
			ReferenceID:   &order.ID,
			Description:   fmt.Sprintf("Purchase order %s", order.PONumber),
		}); err != nil {
			return err
		}
		if req.MakePayment {
			if _, err := poster.Post(ctx, ledger.PostingInput{
				ClientID:      order.SupplierID,
				Role:          partner.RoleSupplier,
				Type:          partner.TransactionTypeCashOut,
				Amount:        order.TotalAmount,
				Date:          orderDate,
				PaymentMethod: req.PaymentMethod,
				ReferenceType: partner.ReferencePurchaseOrder,
				ReferenceID:   &order.ID,
				Description:   fmt.Sprintf("Payment for purchase order %s", order.PONumber),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase order created",
		zap.String("po_number", order.PONumber),
		zap.String("supplier_id", order.SupplierID.String()),
		zap.String("total_amount", order.TotalAmount.String()),
		zap.String("total_kg", order.TotalKg.String()),
		zap.Bool("paid_immediately", order.PaidImmediately),
	)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordOrderWithAmount(ctx, telemetry.OrderTypePurchase, order.TotalAmount)
	}
	txn.PublishEvents(ctx, s.eventPublisher, s.logger, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.scope.Repositories().PurchaseOrders().FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List retrieves a paginated list of purchase orders
func (s *PurchaseOrderService) List(ctx context.Context, filter PurchaseOrderListFilter) ([]PurchaseOrderResponse, int64, error) {
	pf := trade.PurchaseOrderFilter{
		Filter:                toSharedFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir),
		Status:                trade.PurchaseOrderStatus(filter.Status),
		SupplierID:            filter.SupplierID,
		IsProductionCompleted: filter.IsProductionCompleted,
		From:                  filter.From,
		To:                    filter.To,
	}
	orders, total, err := s.scope.Repositories().PurchaseOrders().FindAll(ctx, pf)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		out[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return out, total, nil
}

// Cancel cancels a pending purchase order with no produced items and reverses
// every ledger posting it raised.
func (s *PurchaseOrderService) Cancel(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	var order *trade.PurchaseOrder
	var reversals int
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		order, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.Cancel(); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().SaveHeader(ctx, order); err != nil {
			return err
		}
		reversed, err := ledger.NewPoster(repos).ReverseReference(ctx, partner.ReferencePurchaseOrder, order.ID,
			fmt.Sprintf("Cancellation of purchase order %s", order.PONumber))
		if err != nil {
			return err
		}
		reversals = len(reversed)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase order cancelled",
		zap.String("po_number", order.PONumber),
		zap.Int("reversed_postings", reversals),
	)
	txn.PublishEvents(ctx, s.eventPublisher, s.logger, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// PendingProduction lists open orders that still have items to produce
func (s *PurchaseOrderService) PendingProduction(ctx context.Context) ([]PendingProductionResponse, error) {
	orders, err := s.scope.Repositories().PurchaseOrders().FindPendingProduction(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PendingProductionResponse, len(orders))
	for i := range orders {
		out[i] = ToPendingProductionResponse(&orders[i])
	}
	return out, nil
}

// ensureProducts checks every line names an existing product
func ensureProducts(ctx context.Context, repos txn.Repositories, lines []trade.LineInput) error {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := repos.Products().FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i, l := range lines {
		if _, ok := products[l.ProductID]; !ok {
			return shared.NewNotFoundError(fmt.Sprintf("item %d: product %s", i+1, l.ProductID))
		}
	}
	return nil
}

func dateOrToday(d *time.Time) time.Time {
	if d == nil || d.IsZero() {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
	return *d
}

func toSharedFilter(page, pageSize int, orderBy, orderDir string) shared.Filter {
	f := shared.Filter{Page: page, PageSize: pageSize, OrderBy: orderBy, OrderDir: orderDir}
	if f.OrderBy == "" {
		f.OrderBy = "created_at"
	}
	return f.Normalize()
}
