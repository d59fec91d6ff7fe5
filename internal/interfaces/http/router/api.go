package router

import (
	"github.com/erp/stockflow/internal/infrastructure/logger"
	"github.com/erp/stockflow/internal/interfaces/http/handler"
	"github.com/erp/stockflow/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted under /api/v1
type Handlers struct {
	PurchaseOrder *handler.PurchaseOrderHandler
	Production    *handler.ProductionHandler
	SalesOrder    *handler.SalesOrderHandler
	Stock         *handler.StockHandler
	PettyCash     *handler.PettyCashHandler
	Wastage       *handler.WastageHandler
	Cutting       *handler.CuttingHandler
	System        *handler.SystemHandler
}

// EngineConfig configures the middleware stack of the engine
type EngineConfig struct {
	ServiceName    string
	TrustedProxies []string
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	Tracing        bool
	Profiling      bool
	// Meter enables HTTP metrics when set
	Meter metric.Meter
	// Idempotency guards POST routes when set
	Idempotency gin.HandlerFunc
}

// NewEngine builds the gin engine with the middleware stack and every API route
func NewEngine(cfg EngineConfig, h Handlers, log *zap.Logger) *gin.Engine {
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: the request id must exist before the logger and span attributes read it.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.Tracing,
	}))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Tracing {
		engine.Use(middleware.SpanAttributes(), middleware.SpanErrorMarker())
	}
	if cfg.Meter != nil {
		engine.Use(middleware.HTTPMetrics(cfg.Meter, log))
	}
	if cfg.Profiling {
		engine.Use(middleware.Profiling("/health", "/ready"))
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	if h.System != nil {
		engine.GET("/health", h.System.Health)
		engine.GET("/ready", h.System.Ready)
	}

	NewRouter(engine).Register(apiGroups(h, cfg.Idempotency)...).Setup()
	return engine
}

func apiGroups(h Handlers, idempotency gin.HandlerFunc) []RouteRegistrar {
	purchaseOrders := NewDomainGroup("purchase-orders", "/purchase-orders").
		UseOnWrite(idempotency).
		POST("", h.PurchaseOrder.Create).
		GET("", h.PurchaseOrder.List).
		GET("/pending-production", h.PurchaseOrder.PendingProduction).
		GET("/:id", h.PurchaseOrder.GetByID).
		POST("/:id/cancel", h.PurchaseOrder.Cancel)

	production := NewDomainGroup("production", "/production").
		UseOnWrite(idempotency).
		POST("/items", h.Production.ProcessItem).
		POST("/orders", h.Production.ProcessOrder).
		GET("/orders/:id", h.Production.GetContext).
		GET("/orders/:id/history", h.Production.HistoryByOrder).
		GET("/history", h.Production.History).
		GET("/pending-items", h.Production.PendingItems)

	salesOrders := NewDomainGroup("sales-orders", "/sales-orders").
		UseOnWrite(idempotency).
		POST("", h.SalesOrder.Create).
		GET("", h.SalesOrder.List).
		GET("/:id", h.SalesOrder.GetByID).
		POST("/:id/confirm", h.SalesOrder.Confirm).
		POST("/:id/cancel", h.SalesOrder.Cancel)

	stock := NewDomainGroup("stock", "/stock").
		UseOnWrite(idempotency).
		GET("", h.Stock.GetPosition).
		GET("/positions", h.Stock.ListPositions).
		GET("/history", h.Stock.History).
		POST("/adjust", h.Stock.Adjust).
		POST("/transfer", h.Stock.Transfer)

	pettyCash := NewDomainGroup("petty-cash", "/petty-cash").
		UseOnWrite(idempotency).
		POST("", h.PettyCash.Create).
		GET("", h.PettyCash.List).
		GET("/daily-summary", h.PettyCash.DailySummary).
		PUT("/:id", h.PettyCash.Update).
		DELETE("/:id", h.PettyCash.Delete)

	clients := NewDomainGroup("clients", "/clients").
		GET("/:id/statement", h.PettyCash.ClientStatement).
		GET("/:id/balance-check", h.PettyCash.BalanceCheck)

	wastage := NewDomainGroup("wastage", "/wastage").
		UseOnWrite(idempotency).
		POST("", h.Wastage.Report).
		GET("", h.Wastage.List).
		GET("/export", h.Wastage.Export).
		POST("/:id/approve", h.Wastage.Approve)

	cutting := NewDomainGroup("cutting", "/cutting").
		UseOnWrite(idempotency).
		POST("", h.Cutting.Create).
		GET("", h.Cutting.List).
		GET("/:id", h.Cutting.GetByID).
		POST("/:id/process", h.Cutting.Process).
		POST("/:id/cancel", h.Cutting.Cancel)

	return []RouteRegistrar{purchaseOrders, production, salesOrders, stock, pettyCash, clients, wastage, cutting}
}
