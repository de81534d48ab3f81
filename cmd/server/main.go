package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appshipping "github.com/shopcore/backend/internal/application/shipping"
	"github.com/shopcore/backend/internal/domain/shared"
	"github.com/shopcore/backend/internal/infrastructure/cache"
	"github.com/shopcore/backend/internal/infrastructure/carrier"
	"github.com/shopcore/backend/internal/infrastructure/config"
	"github.com/shopcore/backend/internal/infrastructure/httpclient"
	"github.com/shopcore/backend/internal/infrastructure/logger"
	"github.com/shopcore/backend/internal/infrastructure/persistence"
	"github.com/shopcore/backend/internal/infrastructure/storage"
	"github.com/shopcore/backend/internal/interfaces/http/handler"
	"github.com/shopcore/backend/internal/interfaces/http/middleware"
	"github.com/shopcore/backend/internal/interfaces/http/router"
)

//	@title			ShopCore Shipping API
//	@version		1.0
//	@description	Shipping aggregation and rate-selection service for Indian carrier aggregators

//	@contact.name	API Support
//	@contact.url	https://github.com/shopcore/backend
//	@contact.email	support@shopcore.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

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

	log.Info("Starting ShopCore Shipping",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
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
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)

	// Webhook idempotency store: Redis when reachable, in-memory otherwise
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Label archive is optional; without a bucket, label lookups fall back
	// to the vendor-hosted URL
	var labelArchive appshipping.LabelArchive
	if cfg.Storage.Enabled() {
		s3Archive, err := storage.NewS3LabelArchive(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize label archive", zap.Error(err))
		}
		if err := s3Archive.EnsureBucket(context.Background()); err != nil {
			log.Fatal("Failed to ensure label bucket", zap.Error(err))
		}
		labelArchive = s3Archive
		log.Info("Label archive enabled", zap.String("bucket", s3Archive.GetBucket()))
	}

	// Outbound HTTP client shared by all carrier adapters
	carrierClient := httpclient.New(httpclient.WithLogger(log))

	// Build the provider registry from configuration
	registry := carrier.NewRegistry(carrierClient, log)
	if err := registry.Reload(cfg.Shipping.ProviderConfigs(), cfg.Shipping.Settings()); err != nil {
		log.Fatal("Failed to configure carrier providers", zap.Error(err))
	}
	log.Info("Carrier providers configured", zap.Int("enabled", len(registry.Enabled())))

	// Initialize application services
	rateService := appshipping.NewRateService(registry, log)
	selectionEngine := appshipping.NewSelectionEngine(cfg.Shipping.Settings(), log)
	shipmentService := appshipping.NewShipmentService(registry, shipmentRepo, labelArchive, log)
	webhookService := appshipping.NewWebhookService(registry, shipmentRepo, idempotencyStore, shared.IdempotencyConfig{
		TTL:     cfg.Shipping.WebhookIdempotencyTTL,
		Enabled: true,
	}, log)

	// Initialize HTTP handlers
	shippingHandler := handler.NewShippingHandler(rateService, selectionEngine, shipmentService, registry)
	webhookHandler := handler.NewShippingWebhookHandler(webhookService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
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
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Carrier webhook endpoints (no authentication required)
	// These endpoints are called directly by the external carrier aggregators
	webhookGroup := engine.Group("/api/v1/webhooks/shipping")
	webhookGroup.POST("/:provider", webhookHandler.HandleCarrierWebhook)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Shipping domain (quotes, shipments, tracking, provider management)
	shippingRoutes := router.NewDomainGroup("shipping", "/shipping")
	shippingRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "shipping service ready"})
	})

	// Rate quoting
	shippingRoutes.POST("/rates", shippingHandler.GetRates)
	shippingRoutes.POST("/rates/:provider", shippingHandler.GetProviderRates)
	shippingRoutes.GET("/serviceability", shippingHandler.CheckServiceability)

	// Shipment lifecycle
	shippingRoutes.POST("/shipments", shippingHandler.CreateShipment)
	shippingRoutes.GET("/shipments/:provider/:awb/track", shippingHandler.TrackShipment)
	shippingRoutes.POST("/shipments/:provider/:awb/cancel", shippingHandler.CancelShipment)
	shippingRoutes.POST("/shipments/:provider/:awb/return", shippingHandler.CreateReturnShipment)
	shippingRoutes.GET("/labels/:awb", shippingHandler.GetLabel)

	// Pickup locations
	shippingRoutes.GET("/pickup-locations/:provider", shippingHandler.GetPickupLocations)
	shippingRoutes.POST("/pickup-locations/:provider", shippingHandler.CreatePickupLocation)

	// Provider management
	shippingRoutes.PUT("/providers", shippingHandler.ReloadProviders)

	// Register system routes with swagger-documented handlers
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(shippingRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

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
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
