package trade

import (
	"context"
	"fmt"

	inventoryapp "github.com/erp/stockflow/internal/application/inventory"
	"github.com/erp/stockflow/internal/application/ledger"
	"github.com/erp/stockflow/internal/application/txn"
	"github.com/erp/stockflow/internal/domain/inventory"
	"github.com/erp/stockflow/internal/domain/partner"
	"github.com/erp/stockflow/internal/domain/shared"
	"github.com/erp/stockflow/internal/domain/trade"
	"github.com/erp/stockflow/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SalesOrderService handles sales order business operations
type SalesOrderService struct {
	scope           txn.TransactionScope
	logger          *zap.Logger
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewSalesOrderService creates a new SalesOrderService
func NewSalesOrderService(scope txn.TransactionScope, logger *zap.Logger) *SalesOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesOrderService{scope: scope, logger: logger}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SalesOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *SalesOrderService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create prices and stores a sales order. Unless a draft is requested the order
// is confirmed in the same transaction: stock is deducted per item and the
// receivable (and optional payment) is posted.
func (s *SalesOrderService) Create(ctx context.Context, req CreateSalesOrderRequest) (*SalesOrderResponse, error) {
	orderDate := dateOrToday(req.OrderDate)
	lines := ToLineInputs(req.Items)
	priced, err := trade.PriceLines(lines, req.ShippingCharges)
	if err != nil {
		return nil, err
	}
	confirm := req.Status != string(trade.SalesOrderStatusDraft)

	var order *trade.SalesOrder
	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		customer, err := repos.Clients().FindByID(ctx, req.CustomerID)
		if err != nil {
			return err
		}
		if !customer.CanActAs(partner.RoleCustomer) {
			return shared.NewValidationError("client %s is not a customer", customer.Code)
		}
		if _, err := repos.Warehouses().FindByID(ctx, req.WarehouseID); err != nil {
			return err
		}
		if err := ensureProducts(ctx, repos, lines); err != nil {
			return err
		}

		seq, err := repos.Sequences().Next(ctx, trade.SequenceSalesOrder)
		if err != nil {
			return err
		}
		order, err = trade.NewSalesOrder(trade.FormatNumber("INV", seq), req.CustomerID, req.WarehouseID, orderDate, priced)
		if err != nil {
			return err
		}
		order.Notes = req.Notes
		if err := repos.SalesOrders().Create(ctx, order); err != nil {
			return err
		}
		if !confirm {
			return nil
		}
		return s.confirm(ctx, repos, order, req.MakePayment, req.PaymentMethod)
	})
	if err != nil {
		s.recordRejection(ctx, err)
		return nil, err
	}

	s.logger.Info("sales order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("customer_id", order.CustomerID.String()),
		zap.String("status", order.Status.String()),
		zap.String("total_amount", order.TotalAmount.String()),
	)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordOrderWithAmount(ctx, telemetry.OrderTypeSales, order.TotalAmount)
	}
	txn.PublishEvents(ctx, s.eventPublisher, s.logger, order)

	response := ToSalesOrderResponse(order)
	return &response, nil
}

// Confirm confirms a draft sales order, deducting stock and posting the receivable
func (s *SalesOrderService) Confirm(ctx context.Context, orderID uuid.UUID, req ConfirmSalesOrderRequest) (*SalesOrderResponse, error) {
	var order *trade.SalesOrder
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		order, err = repos.SalesOrders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		return s.confirm(ctx, repos, order, req.MakePayment, req.PaymentMethod)
	})
	if err != nil {
		s.recordRejection(ctx, err)
		return nil, err
	}

	s.logger.Info("sales order confirmed",
		zap.String("order_number", order.OrderNumber),
		zap.String("total_kg", order.TotalKg.String()),
	)
	txn.PublishEvents(ctx, s.eventPublisher, s.logger, order)

	response := ToSalesOrderResponse(order)
	return &response, nil
}

// confirm applies the stock and ledger effects of a confirmed sale inside the caller's transaction
func (s *SalesOrderService) confirm(ctx context.Context, repos txn.Repositories, order *trade.SalesOrder, makePayment bool, paymentMethod string) error {
	if err := order.Confirm(); err != nil {
		return err
	}

	stock := inventoryapp.NewStockLedger(repos.Stock())
	for i := range order.Items {
		item := &order.Items[i]
		orderID := order.ID
		if _, err := stock.Decrement(ctx, inventory.Entry{
			ProductID:     item.ProductID,
			WarehouseID:   order.WarehouseID,
			Quantity:      item.TotalKg,
			MovementType:  inventory.MovementSale,
			ReferenceType: inventory.ReferenceSalesOrder,
			ReferenceID:   &orderID,
			Notes:         fmt.Sprintf("Sale %s item %d", order.OrderNumber, i+1),
		}); err != nil {
			return err
		}
	}

	if makePayment {
		order.MarkPaidImmediately()
	}
	if err := repos.SalesOrders().SaveHeader(ctx, order); err != nil {
		return err
	}

	poster := ledger.NewPoster(repos)
	if _, err := poster.Post(ctx, ledger.PostingInput{
		ClientID:      order.CustomerID,
		Role:          partner.RoleCustomer,
		Type:          partner.TransactionTypeReceivable,
		Amount:        order.TotalAmount,
		Date:          order.OrderDate,
		ReferenceType: partner.ReferenceSalesOrder,
		ReferenceID:   &order.ID,
		Description:   fmt.Sprintf("Sales order %s", order.OrderNumber),
	}); err != nil {
		return err
	}
	if makePayment {
		if _, err := poster.Post(ctx, ledger.PostingInput{
			ClientID:      order.CustomerID,
			Role:          partner.RoleCustomer,
			Type:          partner.TransactionTypeCashIn,
			Amount:        order.TotalAmount,
			Date:          order.OrderDate,
			PaymentMethod: paymentMethod,
			ReferenceType: partner.ReferenceSalesOrder,
			ReferenceID:   &order.ID,
			Description:   fmt.Sprintf("Payment for sales order %s", order.OrderNumber),
		}); err != nil {
			return err
		}
	}
	return nil
}

// Cancel cancels a sales order. A confirmed order gets its deducted stock back
// and every ledger posting it raised reversed.
func (s *SalesOrderService) Cancel(ctx context.Context, orderID uuid.UUID) (*SalesOrderResponse, error) {
	var order *trade.SalesOrder
	var restored bool
	err := s.scope.Execute(ctx, func(repos txn.Repositories) error {
		var err error
		order, err = repos.SalesOrders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		wasConfirmed := order.Status == trade.SalesOrderStatusConfirmed
		restored, err = order.Cancel()
		if err != nil {
			return err
		}

		if restored {
			stock := inventoryapp.NewStockLedger(repos.Stock())
			for i := range order.Items {
				item := &order.Items[i]
				orderID := order.ID
				if _, err := stock.Increment(ctx, inventory.Entry{
					ProductID:     item.ProductID,
					WarehouseID:   order.WarehouseID,
					Quantity:      item.TotalKg,
					MovementType:  inventory.MovementSale,
					ReferenceType: inventory.ReferenceSalesCancel,
					ReferenceID:   &orderID,
					Notes:         fmt.Sprintf("Cancellation of sale %s item %d", order.OrderNumber, i+1),
				}); err != nil {
					return err
				}
			}
		}
		if err := repos.SalesOrders().SaveHeader(ctx, order); err != nil {
			return err
		}
		if wasConfirmed {
			if _, err := ledger.NewPoster(repos).ReverseReference(ctx, partner.ReferenceSalesOrder, order.ID,
				fmt.Sprintf("Cancellation of sales order %s", order.OrderNumber)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sales order cancelled",
		zap.String("order_number", order.OrderNumber),
		zap.Bool("stock_restored", restored),
	)
	txn.PublishEvents(ctx, s.eventPublisher, s.logger, order)

	response := ToSalesOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a sales order by ID
func (s *SalesOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*SalesOrderResponse, error) {
	order, err := s.scope.Repositories().SalesOrders().FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(order)
	return &response, nil
}

// List retrieves a paginated list of sales orders
func (s *SalesOrderService) List(ctx context.Context, filter SalesOrderListFilter) ([]SalesOrderResponse, int64, error) {
	sf := trade.SalesOrderFilter{
		Filter:     toSharedFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir),
		Status:     trade.SalesOrderStatus(filter.Status),
		CustomerID: filter.CustomerID,
		From:       filter.From,
		To:         filter.To,
	}
	orders, total, err := s.scope.Repositories().SalesOrders().FindAll(ctx, sf)
	if err != nil {
		return nil, 0, err
	}
	out := make([]SalesOrderResponse, len(orders))
	for i := range orders {
		out[i] = ToSalesOrderResponse(&orders[i])
	}
	return out, total, nil
}

func (s *SalesOrderService) recordRejection(ctx context.Context, err error) {
	if s.businessMetrics != nil && shared.IsKind(err, shared.KindInsufficientStock) {
		s.businessMetrics.RecordStockRejection(ctx, "sale")
	}
}
