package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	inventoryapp "github.com/erp/stockflow/internal/application/inventory"
	ledgerapp "github.com/erp/stockflow/internal/application/ledger"
	productionapp "github.com/erp/stockflow/internal/application/production"
	tradeapp "github.com/erp/stockflow/internal/application/trade"
	"github.com/erp/stockflow/internal/infrastructure/cache"
	"github.com/erp/stockflow/internal/infrastructure/config"
	"github.com/erp/stockflow/internal/infrastructure/event"
	"github.com/erp/stockflow/internal/infrastructure/export"
	"github.com/erp/stockflow/internal/infrastructure/lock"
	"github.com/erp/stockflow/internal/infrastructure/logger"
	"github.com/erp/stockflow/internal/infrastructure/migration"
	"github.com/erp/stockflow/internal/infrastructure/persistence"
	"github.com/erp/stockflow/internal/infrastructure/telemetry"
	"github.com/erp/stockflow/internal/interfaces/http/handler"
	"github.com/erp/stockflow/internal/interfaces/http/middleware"
	"github.com/erp/stockflow/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const metricsCollectionInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// OTLP log export has to exist before the logger so its core can be attached.
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		MinLevel:          cfg.Log.Level,
	})
	if err != nil {
		panic("Failed to initialize log exporter: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
		Env:        cfg.App.Env,
	}, logProvider.Cores()...)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting stockflow",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeServer,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL),
	)
	dbOpts := []persistence.Option{persistence.WithLogger(gormLog)}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbSystem := "postgresql"
		if cfg.Database.Driver == persistence.DriverSQLite {
			dbSystem = "sqlite"
		}
		dbOpts = append(dbOpts, persistence.WithTracing(telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        dbSystem,
		}, log)))
	}

	db, err := persistence.NewDatabase(&cfg.Database, dbOpts...)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", db.Driver))

	if cfg.Database.AutoMigrate {
		if err := migration.Prepare(db, &cfg.Database, log); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.Production.LockEnabled || (cfg.Idempotency.Enabled && cfg.Idempotency.Backend == "redis") {
		redisClient, err = cache.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable", zap.String("addr", cfg.Redis.RedisAddr()), zap.Error(err))
		}
	}

	scope := persistence.NewGormTransactionScope(db.DB)

	bus := event.NewInMemoryEventBus(log)
	lowStock := inventoryapp.NewLowStockHandler(scope, log).
		WithNotifier(inventoryapp.NewLoggingStockAlertNotifier(log))
	bus.Subscribe(lowStock)
	bus.Subscribe(event.NewLogHandler(log))
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	log.Info("Event handlers registered", zap.Strings("low_stock_events", lowStock.EventTypes()))

	var businessMetrics *telemetry.BusinessMetrics
	if cfg.Telemetry.Enabled {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:             meterProvider.Meter("stockflow/business"),
			Logger:            log,
			InventoryProvider: telemetry.NewGormInventoryMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Business metrics disabled", zap.Error(err))
		} else {
			businessMetrics.StartPeriodicCollection(ctx, metricsCollectionInterval)
		}
	}

	stockService := inventoryapp.NewStockService(scope, log)
	ledgerService := ledgerapp.NewLedgerService(scope, log)
	purchaseOrderService := tradeapp.NewPurchaseOrderService(scope, log)
	salesOrderService := tradeapp.NewSalesOrderService(scope, log)
	productionService := productionapp.NewProductionService(scope, log)
	wastageService := productionapp.NewWastageService(scope, log)
	cuttingService := productionapp.NewCuttingService(scope, log)

	purchaseOrderService.SetEventPublisher(bus)
	salesOrderService.SetEventPublisher(bus)
	productionService.SetEventPublisher(bus)
	wastageService.SetEventPublisher(bus)
	wastageService.SetExporter(export.NewExcelExporter())

	if businessMetrics != nil {
		stockService.SetBusinessMetrics(businessMetrics)
		ledgerService.SetBusinessMetrics(businessMetrics)
		purchaseOrderService.SetBusinessMetrics(businessMetrics)
		salesOrderService.SetBusinessMetrics(businessMetrics)
		productionService.SetBusinessMetrics(businessMetrics)
	}

	if cfg.Production.LockEnabled && redisClient != nil {
		productionService.SetItemLocker(lock.NewRedisLocker(redisClient, cfg.Production.LockTTL, cfg.Production.LockRetries, log))
		log.Info("Production item locks use redis", zap.Duration("ttl", cfg.Production.LockTTL))
	} else {
		productionService.SetItemLocker(lock.NewLocalLocker())
	}

	var idempotency gin.HandlerFunc
	if cfg.Idempotency.Enabled {
		store, err := cache.NewIdempotencyStoreFactory(cfg.Idempotency,
			cache.WithLogger(log),
			cache.WithRedisClient(redisClient),
			cache.WithInMemoryFallback(cfg.App.Env != "production"),
		).CreateStore(ctx)
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error("Error closing idempotency store", zap.Error(err))
			}
		}()
		idempotency = middleware.Idempotency(store, cfg.Idempotency.TTL, log)
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		CORS: middleware.CORSConfig{
			AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
			AllowMethods:  cfg.HTTP.CORSAllowMethods,
			AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders: middleware.DefaultCORSConfig().ExposeHeaders,
			MaxAge:        12 * time.Hour,
		},
		MaxBodySize: cfg.HTTP.MaxBodySize,
		Tracing:     cfg.Telemetry.Enabled,
		Profiling:   profiler.IsEnabled(),
		Meter:       meterIfEnabled(cfg.Telemetry.Enabled, meterProvider),
		Idempotency: idempotency,
	}, router.Handlers{
		PurchaseOrder: handler.NewPurchaseOrderHandler(purchaseOrderService),
		Production:    handler.NewProductionHandler(productionService),
		SalesOrder:    handler.NewSalesOrderHandler(salesOrderService),
		Stock:         handler.NewStockHandler(stockService),
		PettyCash:     handler.NewPettyCashHandler(ledgerService),
		Wastage:       handler.NewWastageHandler(wastageService),
		Cutting:       handler.NewCuttingHandler(cuttingService),
		System:        handler.NewSystemHandler(db, version),
	}, log)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if businessMetrics != nil {
		businessMetrics.Stop()
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down log provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func meterIfEnabled(enabled bool, mp *telemetry.MeterProvider) metric.Meter {
	if !enabled {
		return nil
	}
	return mp.Meter("stockflow/http")
}
