package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	inventoryapp "github.com/tbeauty/backend/internal/application/inventory"
	invoiceapp "github.com/tbeauty/backend/internal/application/invoice"
	orderapp "github.com/tbeauty/backend/internal/application/order"
	paymentapp "github.com/tbeauty/backend/internal/application/payment"
	"github.com/tbeauty/backend/internal/domain/invoice"
	"github.com/tbeauty/backend/internal/infrastructure/auth"
	"github.com/tbeauty/backend/internal/infrastructure/cache"
	"github.com/tbeauty/backend/internal/infrastructure/config"
	"github.com/tbeauty/backend/internal/infrastructure/event"
	"github.com/tbeauty/backend/internal/infrastructure/lock"
	"github.com/tbeauty/backend/internal/infrastructure/logger"
	"github.com/tbeauty/backend/internal/infrastructure/persistence"
	"github.com/tbeauty/backend/internal/infrastructure/storage"
	"github.com/tbeauty/backend/internal/infrastructure/telemetry"
	"github.com/tbeauty/backend/internal/interfaces/http/handler"
	"github.com/tbeauty/backend/internal/interfaces/http/middleware"
	"github.com/tbeauty/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// Bridge logs to OTLP when enabled
	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, cfg.App.Env)
	if err != nil {
		log.Warn("OTLP log export disabled", zap.Error(err))
	} else {
		log = telemetry.AttachOTLP(log, logProvider, log.Level())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting tbeauty backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, cfg.App.Env, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, cfg.App.Env, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, cfg.App.Env, log)
	if err != nil {
		log.Warn("Continuous profiling disabled", zap.Error(err))
	} else if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	gormLog := logger.NewGormLogger(log, logger.GormConfig{
		Level:         logger.GormLevel(cfg.Log.Level),
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
		FullSQL:       cfg.Telemetry.DBLogFullSQL,
	})

	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}
	log.Info("Database connected successfully")

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		log.Info("Redis connected successfully")
	}

	locker, err := lock.New(cfg.Lock, redisClient, log)
	if err != nil {
		log.Fatal("Failed to initialize locker", zap.Error(err))
	}
	idempotencyStore := cache.NewIdempotencyStore(redisClient, log)

	var archive invoiceapp.Archiver
	if cfg.Storage.Enabled {
		a, err := storage.NewInvoiceArchive(ctx, cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize invoice archive", zap.Error(err))
		}
		archive = a
	}

	// Repositories
	catalogRepo := persistence.NewGormCatalogRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	inventoryRepo := persistence.NewGormInventoryRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)

	// Application services
	inventoryService := inventoryapp.NewInventoryService(inventoryRepo, catalogRepo, locker, log,
		inventoryapp.WithDefaultMinimumStock(cfg.Inventory.DefaultMinimumStock))
	orderService := orderapp.NewOrderService(orderRepo, catalogRepo, catalogRepo, inventoryService, locker, log)
	paymentService := paymentapp.NewPaymentService(paymentRepo, orderRepo, locker, log)
	invoiceService := invoiceapp.NewInvoiceService(invoiceRepo, catalogRepo, orderRepo, paymentRepo, locker, log,
		invoiceapp.WithDefaults(invoice.Defaults{
			DueDays:            cfg.Invoice.DueDays,
			PaymentTerms:       cfg.Invoice.PaymentTerms,
			TermsAndConditions: cfg.Invoice.TermsAndConditions,
		}),
		invoiceapp.WithArchive(archive),
	)

	// Event bus and cross-context subscriptions
	bus := event.NewInMemoryEventBus(log)

	businessMetrics, err := telemetry.NewBusinessMetrics(meterProvider.Meter("tbeauty/business"))
	if err != nil {
		log.Warn("Business metrics disabled", zap.Error(err))
	} else {
		bus.Subscribe(businessMetrics, businessMetrics.EventTypes()...)
	}

	paymentVerified := event.NewIdempotentHandler("order-payment-verified",
		orderapp.NewPaymentVerifiedHandler(orderService, log), idempotencyStore, log)
	bus.Subscribe(paymentVerified, paymentVerified.EventTypes()...)

	if cfg.Inventory.DecrementOnConfirm {
		orderConfirmed := event.NewIdempotentHandler("inventory-order-confirmed",
			inventoryapp.NewOrderConfirmedHandler(inventoryService, log), idempotencyStore, log)
		bus.Subscribe(orderConfirmed, orderConfirmed.EventTypes()...)
	}

	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	orderService.SetEventPublisher(bus)
	inventoryService.SetEventPublisher(bus)
	paymentService.SetEventPublisher(bus)
	invoiceService.SetEventPublisher(bus)

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	operationalPaths := []string{"/health", "/metrics"}
	httpMetrics := telemetry.NewHTTPMetrics()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, tracerProvider.IsEnabled()))
	engine.Use(middleware.Session(middleware.SessionConfig{
		Tokens:       auth.NewSessionTokens(cfg.Session),
		RequireToken: cfg.Session.RequireToken,
		SkipPaths:    operationalPaths,
		Logger:       log,
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.Profiling(operationalPaths...))
	engine.Use(httpMetrics.Middleware())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		var limiter middleware.Limiter
		if redisClient != nil {
			limiter = cache.NewRedisRateLimiter(redisClient, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		} else {
			limiter = middleware.NewMemoryLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		}
		engine.Use(middleware.RateLimit(limiter, log))
	}

	systemHandler := handler.NewSystemHandler(db, version, handler.WithPoolStats(func() any { return db.PoolStats() }))
	r := router.NewRouter(engine)
	r.Register(router.APIGroups(router.Handlers{
		Order:     handler.NewOrderHandler(orderService),
		Inventory: handler.NewInventoryHandler(inventoryService),
		Payment:   handler.NewPaymentHandler(paymentService, invoiceService),
		Invoice:   handler.NewInvoiceHandler(invoiceService),
		System:    systemHandler,
	})...)
	r.Setup()
	router.MountOperational(engine, systemHandler, httpMetrics.Handler())

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.Int("routes", len(r.Routes())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	timeout := cfg.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err))
	}
	if profiler != nil {
		if err := profiler.Stop(); err != nil {
			log.Warn("Failed to stop profiler", zap.Error(err))
		}
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush traces", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush metrics", zap.Error(err))
	}
	if logProvider != nil {
		_ = logProvider.Shutdown(shutdownCtx)
	}

	log.Info("Server exited gracefully")
}
