package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	accountapp "github.com/erp/analytics/internal/application/account"
	analyticsapp "github.com/erp/analytics/internal/application/analytics"
	"github.com/erp/analytics/internal/infrastructure/cache"
	"github.com/erp/analytics/internal/infrastructure/config"
	"github.com/erp/analytics/internal/infrastructure/event"
	"github.com/erp/analytics/internal/infrastructure/logger"
	"github.com/erp/analytics/internal/infrastructure/persistence"
	"github.com/erp/analytics/internal/infrastructure/scheduler"
	"github.com/erp/analytics/internal/infrastructure/telemetry"
	"github.com/erp/analytics/internal/interfaces/http/handler"
	"github.com/erp/analytics/internal/interfaces/http/middleware"
	"github.com/erp/analytics/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//	@title			ERP Sales Analytics API
//	@version		1.0
//	@description	Sales analytics aggregation and account health scoring

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ERP Sales Analytics",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	tracer := tracerProvider.Tracer(telemetry.TracerName)
	meter := meterProvider.Meter(telemetry.TracerName)

	// Database
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	saleRepo := persistence.NewGormSaleRecordRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	serviceRecordRepo := persistence.NewGormServiceRecordRepository(db.DB)

	// Analytics snapshot cache
	snapshotCache, err := cache.NewAnalyticsCacheFactory(cfg.Redis, cache.WithLogger(log)).Create()
	if err != nil {
		log.Fatal("Failed to initialize analytics cache", zap.Error(err))
	}

	analyticsMetrics, err := telemetry.NewAnalyticsMetrics(meter, log)
	if err != nil {
		log.Fatal("Failed to initialize analytics metrics", zap.Error(err))
	}

	// Event bus
	eventBus := event.NewInMemoryEventBus(event.WithLogger(log), event.WithAsyncDispatch())
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	salesAnalyticsService := analyticsapp.NewSalesAnalyticsService(saleRepo, snapshotCache,
		analyticsapp.WithLogger(log),
		analyticsapp.WithCacheTTL(cfg.Analytics.CacheTTL),
		analyticsapp.WithNamespace(cfg.Analytics.CacheNamespace),
		analyticsapp.WithMetrics(analyticsMetrics),
		analyticsapp.WithTracer(tracer),
		analyticsapp.WithAverageOrderTarget(cfg.Analytics.AverageOrderTarget),
		analyticsapp.WithEventPublisher(eventBus),
	)
	healthService := accountapp.NewHealthService(accountRepo, serviceRecordRepo,
		accountapp.WithLogger(log),
		accountapp.WithRenewalWindow(cfg.Analytics.RenewalWindowDays),
		accountapp.WithServiceHistoryLimit(cfg.Analytics.ServiceHistoryLimit),
		accountapp.WithTracer(tracer),
	)

	eventBus.Subscribe(analyticsapp.NewSaleRecordedHandler(salesAnalyticsService, log))

	// Nightly cache sweep so date-window keys roll over
	sweeper, err := scheduler.NewCacheSweepScheduler(salesAnalyticsService, scheduler.CacheSweepConfig{
		Enabled:  cfg.Analytics.SweepEnabled,
		Schedule: cfg.Analytics.SweepSchedule,
	}, log)
	if err != nil {
		log.Fatal("Failed to create cache sweep scheduler", zap.Error(err))
	}
	if err := sweeper.Start(ctx); err != nil {
		log.Fatal("Failed to start cache sweep scheduler", zap.Error(err))
	}

	// Handlers
	analyticsHandler := handler.NewAnalyticsHandler(salesAnalyticsService)
	accountHandler := handler.NewAccountHandler(healthService)

	checks := map[string]handler.HealthChecker{"database": db}
	if pinger, ok := snapshotCache.(handler.HealthChecker); ok {
		checks["cache"] = pinger
	}
	systemHandler := handler.NewSystemHandler(checks)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Tracing - Server span per request
	// 3. Logger - Log requests
	// 4. Recovery - Catch panics
	// 5. CORS - Handle cross-origin requests
	// 6. Metrics - Request counters and latency
	// API routes additionally resolve the tenant scope
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(tracer))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.HTTPMetrics(meter, log))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", systemHandler.Health)

	scopeConfig := middleware.DefaultScopeConfig()
	if !cfg.IsDevelopment() {
		scopeConfig.DefaultTenantID = uuid.Nil
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.TenantScope(scopeConfig))
	r.Register(router.AnalyticsRoutes(analyticsHandler)).
		Register(router.AccountRoutes(accountHandler))
	r.Setup()

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	sweeper.Stop()
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := snapshotCache.Close(); err != nil {
		log.Error("Error closing analytics cache", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
