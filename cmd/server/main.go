package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/as-ga/saleor/internal/application/catalog"
	paymentapp "github.com/as-ga/saleor/internal/application/payment"
	"github.com/as-ga/saleor/internal/domain/payment"
	"github.com/as-ga/saleor/internal/infrastructure/auth"
	"github.com/as-ga/saleor/internal/infrastructure/config"
	"github.com/as-ga/saleor/internal/infrastructure/event"
	"github.com/as-ga/saleor/internal/infrastructure/logger"
	"github.com/as-ga/saleor/internal/infrastructure/persistence"
	"github.com/as-ga/saleor/internal/infrastructure/scheduler"
	"github.com/as-ga/saleor/internal/interfaces/http/handler"
	"github.com/as-ga/saleor/internal/interfaces/http/middleware"
	"github.com/as-ga/saleor/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Saleor Core",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	promotionRepo := persistence.NewGormPromotionRepository(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log, event.WithHandlerTimeout(cfg.Event.HandlerTimeout))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()
	eventBus.Subscribe(
		paymentapp.NewTransactionAuditHandler(log),
		payment.TransactionEventRecordedEventType,
	)

	// Initialize application services
	// The transaction scope runs the entire update (ledger, event log,
	// order totals, order notes) in a single database transaction; the
	// bus only sees events after commit.
	transactionScope := persistence.NewGormPaymentTransactionScope(db.DB)
	transactionUpdateService := paymentapp.NewTransactionUpdateService(transactionScope, log)
	transactionUpdateService.SetEventPublisher(eventBus)

	pricingTaskService := catalogapp.NewPricingTaskService(productRepo, promotionRepo, log)
	searchTaskService := catalogapp.NewSearchTaskService(productRepo, log)

	// Initialize catalog task scheduler (if enabled)
	if cfg.Scheduler.Enabled {
		schedulerConfig := scheduler.DefaultConfig()
		if cfg.Scheduler.TaskTimeout > 0 {
			schedulerConfig.TaskTimeout = cfg.Scheduler.TaskTimeout
		}
		if cfg.Scheduler.PricingRetryAttempts > 0 {
			schedulerConfig.RetryAttempts = cfg.Scheduler.PricingRetryAttempts
		}
		if cfg.Scheduler.PricingRetryDelay > 0 {
			schedulerConfig.RetryDelay = cfg.Scheduler.PricingRetryDelay
		}

		executor := scheduler.NewCatalogTaskExecutor(pricingTaskService, searchTaskService)
		catalogScheduler := scheduler.NewScheduler(schedulerConfig, executor, log)
		if err := catalogScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start catalog scheduler", zap.Error(err))
		}
		defer func() {
			if err := catalogScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping catalog scheduler", zap.Error(err))
			}
		}()

		trigger := scheduler.NewIntervalTrigger(scheduler.IntervalTriggerConfig{
			SearchIndexInterval: cfg.Scheduler.SearchIndexInterval,
		}, catalogScheduler, log)
		if err := trigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start interval trigger", zap.Error(err))
		}
		defer func() {
			if err := trigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping interval trigger", zap.Error(err))
			}
		}()
		log.Info("Catalog scheduler started",
			zap.Int("workers", schedulerConfig.Workers),
			zap.Duration("task_timeout", schedulerConfig.TaskTimeout),
			zap.Duration("search_index_interval", cfg.Scheduler.SearchIndexInterval),
		)
	}

	// Token service for staff and app credentials
	tokenService := auth.NewTokenService(cfg.JWT)

	// Initialize HTTP handlers
	transactionHandler := handler.NewTransactionHandler(transactionUpdateService, transactionRepo, log)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Authentication: staff JWTs via Authorization header, app tokens
	// via the Saleor-App-Token header. System endpoints stay public.
	authConfig := middleware.AuthConfig{
		Tokens: tokenService,
		SkipPaths: []string{
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.AuthWithConfig(authConfig))

	// Payment domain routes
	transactionRoutes := router.NewDomainGroup("payments", "/transactions")
	transactionRoutes.Use(middleware.RequirePermission(auth.PermissionManagePayments))
	transactionRoutes.POST("/:id/update", transactionHandler.Update)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(transactionRoutes).
		Register(systemRoutes)

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		body := gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		}
		if stats, err := db.Stats(); err == nil {
			body["pool"] = stats
		}
		c.JSON(http.StatusOK, body)
	}
}
