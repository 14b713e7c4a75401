package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/govindji/backoffice/internal/application/catalog"
	eventapp "github.com/govindji/backoffice/internal/application/event"
	identityapp "github.com/govindji/backoffice/internal/application/identity"
	ledgerapp "github.com/govindji/backoffice/internal/application/ledger"
	orderapp "github.com/govindji/backoffice/internal/application/order"
	partyapp "github.com/govindji/backoffice/internal/application/party"
	paymentapp "github.com/govindji/backoffice/internal/application/payment"
	printingapp "github.com/govindji/backoffice/internal/application/printing"
	"github.com/govindji/backoffice/internal/domain/identity"
	"github.com/govindji/backoffice/internal/domain/shared"
	"github.com/govindji/backoffice/internal/infrastructure/auth"
	"github.com/govindji/backoffice/internal/infrastructure/cache"
	"github.com/govindji/backoffice/internal/infrastructure/config"
	"github.com/govindji/backoffice/internal/infrastructure/event"
	"github.com/govindji/backoffice/internal/infrastructure/logger"
	"github.com/govindji/backoffice/internal/infrastructure/persistence"
	infraprinting "github.com/govindji/backoffice/internal/infrastructure/printing"
	"github.com/govindji/backoffice/internal/infrastructure/scheduler"
	"github.com/govindji/backoffice/internal/infrastructure/storage"
	"github.com/govindji/backoffice/internal/infrastructure/telemetry"
	"github.com/govindji/backoffice/internal/interfaces/http/handler"
	"github.com/govindji/backoffice/internal/interfaces/http/middleware"
	"github.com/govindji/backoffice/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/govindji/backoffice/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Back Office API
//	@version		1.0
//	@description	Retail and wholesale back office API - vendor ledger, purchasing and payments

//	@contact.name	API Support

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

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

	log.Info("Starting back office server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Telemetry providers (no-ops when disabled)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Continuous profiling (no-op when disabled)
	if cfg.Telemetry.ProfilingEnabled {
		profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
			Enabled:             true,
			ServerAddress:       cfg.Telemetry.ProfilingServerAddr,
			ApplicationName:     cfg.Telemetry.ServiceName,
			ProfileCPU:          true,
			ProfileAllocObjects: true,
			ProfileAllocSpace:   true,
			ProfileInuseObjects: true,
			ProfileInuseSpace:   true,
			ProfileGoroutines:   true,
		}, log)
		if err != nil {
			log.Fatal("Failed to start profiler", zap.Error(err))
		}
		defer func() {
			if err := profiler.Stop(); err != nil {
				log.Error("Error stopping profiler", zap.Error(err))
			}
		}()

		// Link traces to profiles so a slow span can be opened in Pyroscope
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

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

	// Database query tracing
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}

	// Database query and connection pool metrics
	if cfg.Telemetry.Enabled {
		dbMetricsCfg := telemetry.DefaultDBMetricsConfig()
		dbMetricsCfg.SlowQueryThreshold = cfg.Telemetry.DBSlowQueryThresh
		dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, dbMetricsCfg, log)
		if err != nil {
			log.Warn("Failed to register database metrics", zap.Error(err))
		} else if dbMetrics != nil {
			dbMetrics.StartPoolStatsCollection(context.Background())
			defer dbMetrics.Stop()
		}
	}

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	productImageRepo := persistence.NewGormProductImageRepository(db.DB)
	partyRepo := persistence.NewGormPartyRepository(db.DB)
	purchaseOrderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	partyPaymentRepo := persistence.NewGormPartyPaymentRepository(db.DB)
	printTemplateRepo := persistence.NewGormPrintTemplateRepository(db.DB)
	printJobRepo := persistence.NewGormPrintJobRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize the versioned event serializer and register all event types
	eventSerializer := event.NewVersionedSerializer(log)
	if err := event.RegisterAllEvents(eventSerializer); err != nil {
		log.Fatal("Failed to register domain events", zap.Error(err))
	}

	// Create outbox publisher for transactional event saving
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)

	// Inject outbox publisher into repositories that persist domain events
	partyRepo.SetOutboxEventSaver(outboxPublisher)
	purchaseOrderRepo.SetOutboxEventSaver(outboxPublisher)
	partyPaymentRepo.SetOutboxEventSaver(outboxPublisher)
	productRepo.SetOutboxEventSaver(outboxPublisher)
	userRepo.SetOutboxEventSaver(outboxPublisher)

	// Balance cache (Redis-backed tiered cache, in-memory fallback)
	balanceCacheFactory := cache.NewBalanceCacheFactory(cfg.Redis, cfg.Ledger.BalanceCacheTTL)
	balanceCache, err := balanceCacheFactory.CreateCache()
	if err != nil {
		log.Warn("Falling back to in-memory balance cache", zap.Error(err))
		balanceCache = balanceCacheFactory.CreateInMemoryCache()
	}

	// Idempotency store for duplicate payment submissions
	idempotencyFactory := cache.NewIdempotencyStoreFactory(cfg.Redis)
	idempotencyStore, err := idempotencyFactory.CreateStore()
	if err != nil {
		log.Warn("Falling back to in-memory idempotency store", zap.Error(err))
		idempotencyStore = idempotencyFactory.CreateInMemoryStore()
	}

	// Token blacklist for logout and forced logout
	var blacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
	if err != nil {
		log.Warn("Falling back to in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = redisBlacklist
	}

	// Object storage for product images
	var objectStorage catalogapp.ObjectStorageService
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(context.Background()); err != nil {
			log.Fatal("Failed to ensure storage bucket", zap.Error(err))
		}
		objectStorage = s3Storage
	} else {
		log.Warn("No storage bucket configured, product image URLs will be stubs")
		objectStorage = storage.NewStubObjectStorage()
	}

	// Identity services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, identityapp.DefaultAuthServiceConfig(), log)
	userService := identityapp.NewUserService(userRepo, log)

	// Catalog services
	productService := catalogapp.NewProductService(productRepo)
	imageService := catalogapp.NewImageService(productImageRepo, productRepo, objectStorage)
	imageService.SetLogger(log)

	// Ledger statement service: orders and payments fetched in parallel,
	// merged chronologically, balance cached per party
	orderSource := ledgerapp.NewOrderSource(purchaseOrderRepo)
	paymentSource := ledgerapp.NewPaymentSource(partyPaymentRepo)
	statementService := ledgerapp.NewStatementService(partyRepo, orderSource, paymentSource)
	statementService.SetBalanceCache(balanceCache)

	// Party, order and payment services
	partyService := partyapp.NewPartyService(partyRepo, purchaseOrderRepo)
	partyService.SetBalanceProvider(statementService)
	orderService := orderapp.NewOrderService(purchaseOrderRepo, partyRepo)
	paymentService := paymentapp.NewPaymentService(partyPaymentRepo, partyRepo)
	paymentService.SetLogger(log)
	if cfg.Idempotency.Enabled {
		paymentService.SetIdempotencyStore(idempotencyStore, shared.IdempotencyConfig{
			Enabled: true,
			TTL:     cfg.Idempotency.TTL,
		})
	}

	// Outbox administration service, with in-place schema migration sharing
	// the processor's version registry
	outboxService := eventapp.NewOutboxService(outboxRepo, log)
	outboxService.SetSchemaMigrator(event.NewEventMigrator(eventSerializer, log))

	// Printing: data providers, template engine, PDF renderer and storage
	providers := printingapp.NewDataProviderRegistry()
	providers.Register(printingapp.NewStatementDataProvider(partyRepo, statementService))
	providers.Register(printingapp.NewPurchaseOrderDataProvider(purchaseOrderRepo, partyRepo))
	providers.Register(printingapp.NewPaymentReceiptDataProvider(partyPaymentRepo, partyRepo))

	templateEngine := infraprinting.NewTemplateEngine()
	pdfRenderer, err := infraprinting.NewChromedpRenderer(&infraprinting.ChromedpConfig{
		DefaultTimeout: cfg.Printing.RenderTimeout,
		ExecPath:       cfg.Printing.ChromePath,
		RemoteURL:      cfg.Printing.RemoteURL,
		NoSandbox:      cfg.Printing.NoSandbox,
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer func() {
		if err := pdfRenderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()

	var pdfStorage infraprinting.PDFStorage
	if cfg.Printing.PDFDir != "" {
		pdfStorage, err = infraprinting.NewFileSystemPDFStorage(cfg.Printing.PDFDir, log)
	} else {
		pdfStorage, err = infraprinting.NewS3PDFStorage(&cfg.Storage)
	}
	if err != nil {
		log.Fatal("Failed to initialize PDF storage", zap.Error(err))
	}

	printService := printingapp.NewPrintService(
		printTemplateRepo,
		printJobRepo,
		providers,
		templateEngine,
		pdfRenderer,
		pdfStorage,
		printingapp.BusinessInfo{
			Name:    cfg.Business.Name,
			Address: cfg.Business.Address,
			Phone:   cfg.Business.Phone,
			Email:   cfg.Business.Email,
			GSTIN:   cfg.Business.GSTIN,
		},
		log,
	)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Any order or payment change drops the party's cached balance. The
	// outbox processor delivers at-least-once, so the handler is wrapped
	// with dedup on event ID.
	balanceInvalidator := ledgerapp.NewBalanceCacheInvalidator(balanceCache, log)
	eventBus.Subscribe(event.NewIdempotentHandler(balanceInvalidator, idempotencyStore, log))

	log.Info("Event handlers registered",
		zap.Strings("balance_invalidation_events", balanceInvalidator.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Outbox processor for guaranteed event delivery
	if cfg.Event.ProcessorEnabled {
		outboxProcessorConfig := event.DefaultOutboxProcessorConfig()
		if cfg.Event.BatchSize > 0 {
			outboxProcessorConfig.BatchSize = cfg.Event.BatchSize
		}
		if cfg.Event.PollInterval > 0 {
			outboxProcessorConfig.PollInterval = cfg.Event.PollInterval
		}
		outboxProcessorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		if cfg.Event.CleanupRetention > 0 {
			outboxProcessorConfig.CleanupRetention = cfg.Event.CleanupRetention
		}
		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, outboxProcessorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", outboxProcessorConfig.BatchSize),
			zap.Duration("poll_interval", outboxProcessorConfig.PollInterval),
		)
	}

	// Inject event bus into services that publish events
	orderService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)

	// Background jobs: abandoned upload cleanup and print job retention
	if cfg.Scheduler.Enabled {
		janitorConfig := scheduler.DefaultImageJanitorConfig()
		janitorConfig.Enabled = true
		if cfg.Scheduler.ImageCleanupInterval > 0 {
			janitorConfig.Interval = cfg.Scheduler.ImageCleanupInterval
		}
		if cfg.Scheduler.ImageCleanupAge > 0 {
			janitorConfig.Age = cfg.Scheduler.ImageCleanupAge
		}
		if cfg.Scheduler.ImageCleanupBatch > 0 {
			janitorConfig.Batch = cfg.Scheduler.ImageCleanupBatch
		}
		imageJanitor, err := scheduler.NewImageJanitor(janitorConfig, imageService, log)
		if err != nil {
			log.Fatal("Failed to create image janitor", zap.Error(err))
		}
		if err := imageJanitor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start image janitor", zap.Error(err))
		}
		defer func() {
			if err := imageJanitor.Stop(context.Background()); err != nil {
				log.Error("Error stopping image janitor", zap.Error(err))
			}
		}()

		retentionConfig := scheduler.DefaultPrintRetentionConfig()
		retentionConfig.Enabled = true
		if cfg.Scheduler.PrintSweepInterval > 0 {
			retentionConfig.Interval = cfg.Scheduler.PrintSweepInterval
		}
		if cfg.Printing.JobRetention > 0 {
			retentionConfig.Retention = cfg.Printing.JobRetention
		}
		printSweeper, err := scheduler.NewPrintRetentionSweeper(retentionConfig, printService, log)
		if err != nil {
			log.Fatal("Failed to create print retention sweeper", zap.Error(err))
		}
		if err := printSweeper.Start(context.Background()); err != nil {
			log.Fatal("Failed to start print retention sweeper", zap.Error(err))
		}
		defer func() {
			if err := printSweeper.Stop(context.Background()); err != nil {
				log.Error("Error stopping print retention sweeper", zap.Error(err))
			}
		}()
	}

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(productService)
	productImageHandler := handler.NewProductImageHandler(imageService)
	partyHandler := handler.NewPartyHandler(partyService)
	purchaseOrderHandler := handler.NewPurchaseOrderHandler(orderService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	ledgerHandler := handler.NewLedgerHandler(statementService)
	ledgerWatchHandler := handler.NewLedgerWatchHandler(statementService,
		ledgerapp.ViewerConfig{
			Debounce:     cfg.Ledger.StatementDebounce,
			FetchTimeout: cfg.Ledger.SourceTimeout,
		},
		handler.WithWatchLogger(log),
	)
	printHandler := handler.NewPrintHandler(printService)
	outboxHandler := handler.NewOutboxHandler(outboxService)
	systemHandler := handler.NewSystemHandler()

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

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing())
		engine.Use(middleware.SpanErrorMarker())
		engine.Use(middleware.HTTPMetricsWithMeter(meterProvider.Meter("http"), true))
	}
	if cfg.Telemetry.ProfilingEnabled {
		engine.Use(middleware.Profiling())
	}

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

	// JWT authentication for API routes; the swagger guard reuses it when
	// swagger access requires auth
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	jwtAuth := middleware.JWTAuthMiddlewareWithConfig(jwtConfig)

	// Swagger documentation endpoint
	if cfg.Swagger.Enabled {
		swaggerGuard := middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, jwtAuth)
		engine.GET("/swagger/*any", swaggerGuard, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(jwtAuth)

	// Tenant resolution runs after JWT so claims win over the header.
	// Handlers fall back to the development tenant when nothing resolves.
	tenantCfg := middleware.DefaultTenantConfig()
	tenantCfg.Required = false
	tenantCfg.SkipPaths = append(tenantCfg.SkipPaths, jwtConfig.SkipPaths...)
	tenantCfg.Logger = log
	r.Use(middleware.TenantWithConfig(tenantCfg))

	// Auth domain (login and refresh are JWT-skip paths)
	authRoutes := router.NewDomainGroup("auth", "/auth")
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authRoutes.Use(middleware.AuthRateLimit(authLimiter))
	}
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.GetCurrentUser)
	authRoutes.PUT("/password", authHandler.ChangePassword)
	authRoutes.POST("/force-logout", middleware.RequireRole(identity.RoleAdmin), authHandler.ForceLogout)

	// Identity domain (user management, admin only)
	identityRoutes := router.NewDomainGroup("identity", "/identity")
	identityRoutes.Use(middleware.RequireRole(identity.RoleAdmin))
	identityRoutes.POST("/users", userHandler.Create)
	identityRoutes.GET("/users", userHandler.List)
	identityRoutes.GET("/users/stats/count", userHandler.Count)
	identityRoutes.GET("/users/:id", userHandler.GetByID)
	identityRoutes.PUT("/users/:id", userHandler.Update)
	identityRoutes.PUT("/users/:id/role", userHandler.SetRole)
	identityRoutes.DELETE("/users/:id", userHandler.Delete)
	identityRoutes.POST("/users/:id/activate", userHandler.Activate)
	identityRoutes.POST("/users/:id/deactivate", userHandler.Deactivate)
	identityRoutes.POST("/users/:id/lock", userHandler.Lock)
	identityRoutes.POST("/users/:id/unlock", userHandler.Unlock)
	identityRoutes.POST("/users/:id/reset-password", userHandler.ResetPassword)

	// Catalog domain (products and product images)
	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.POST("/products", productHandler.Create)
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/stats/count", productHandler.CountByStatus)
	catalogRoutes.GET("/products/sku/:sku", productHandler.GetBySKU)
	catalogRoutes.GET("/products/:id", productHandler.GetByID)
	catalogRoutes.PUT("/products/:id", productHandler.Update)
	catalogRoutes.PUT("/products/:id/sku", productHandler.UpdateSKU)
	catalogRoutes.DELETE("/products/:id", productHandler.Delete)
	catalogRoutes.POST("/products/:id/activate", productHandler.Activate)
	catalogRoutes.POST("/products/:id/deactivate", productHandler.Deactivate)
	catalogRoutes.POST("/products/:id/discontinue", productHandler.Discontinue)
	catalogRoutes.GET("/products/:id/images", productImageHandler.ListByProduct)
	catalogRoutes.POST("/images/upload", productImageHandler.InitiateUpload)
	catalogRoutes.POST("/images/:id/confirm", productImageHandler.ConfirmUpload)
	catalogRoutes.GET("/images/:id", productImageHandler.GetByID)
	catalogRoutes.GET("/images/:id/url", productImageHandler.GetDownloadURL)
	catalogRoutes.POST("/images/:id/main", productImageHandler.SetAsMain)
	catalogRoutes.DELETE("/images/:id", productImageHandler.Delete)

	// Party domain (vendor master data, per-party ledger views)
	partyRoutes := router.NewDomainGroup("party", "/parties")
	partyRoutes.POST("", partyHandler.Create)
	partyRoutes.GET("", partyHandler.List)
	partyRoutes.GET("/count-by-status", partyHandler.CountByStatus)
	partyRoutes.GET("/code/:code", partyHandler.GetByCode)
	partyRoutes.GET("/:id", partyHandler.GetByID)
	partyRoutes.PUT("/:id", partyHandler.Update)
	partyRoutes.PUT("/:id/code", partyHandler.UpdateCode)
	partyRoutes.DELETE("/:id", middleware.RequireRole(identity.RoleManager), partyHandler.Delete)
	partyRoutes.POST("/:id/archive", partyHandler.Archive)
	partyRoutes.POST("/:id/unarchive", partyHandler.Unarchive)

	// Ledger views hang off the party resource. Gin requires one wildcard
	// name per segment, so these reuse :id for the party ID.
	partyRoutes.GET("/:id/statement", ledgerHandler.GetStatement)
	partyRoutes.GET("/:id/statement/watch", ledgerWatchHandler.Watch)
	partyRoutes.GET("/:id/balance", ledgerHandler.GetBalance)
	partyRoutes.GET("/:id/orders", purchaseOrderHandler.ListByParty)
	partyRoutes.GET("/:id/payments", paymentHandler.ListByParty)

	// Purchase order domain
	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.POST("", purchaseOrderHandler.Create)
	orderRoutes.GET("", purchaseOrderHandler.List)
	orderRoutes.GET("/status-summary", purchaseOrderHandler.StatusSummary)
	orderRoutes.GET("/number/:po_number", purchaseOrderHandler.GetByPONumber)
	orderRoutes.GET("/:id", purchaseOrderHandler.GetByID)
	orderRoutes.PUT("/:id", purchaseOrderHandler.Update)
	orderRoutes.POST("/:id/receive", purchaseOrderHandler.MarkReceived)
	orderRoutes.POST("/:id/cancel", middleware.RequireRole(identity.RoleManager), purchaseOrderHandler.Cancel)

	// Payment domain
	paymentRoutes := router.NewDomainGroup("payments", "/payments")
	paymentRoutes.POST("", paymentHandler.Record)
	paymentRoutes.GET("", paymentHandler.List)
	paymentRoutes.GET("/number/:payment_number", paymentHandler.GetByPaymentNumber)
	paymentRoutes.GET("/:id", paymentHandler.GetByID)
	paymentRoutes.PUT("/:id", paymentHandler.UpdateDetails)
	paymentRoutes.POST("/:id/void", middleware.RequireRole(identity.RoleManager), paymentHandler.Void)

	// Print domain (templates, previews, PDF jobs)
	printRoutes := handler.PrintRoutes(printHandler, middleware.RequireRole(identity.RoleClerk))

	// System domain: info/ping are public, outbox administration is admin only
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/outbox/dead", middleware.RequireRole(identity.RoleAdmin), outboxHandler.GetDeadLetterEntries)
	systemRoutes.GET("/outbox/stats", middleware.RequireRole(identity.RoleAdmin), outboxHandler.GetStats)
	systemRoutes.GET("/outbox/:id", middleware.RequireRole(identity.RoleAdmin), outboxHandler.GetEntry)
	systemRoutes.POST("/outbox/:id/retry", middleware.RequireRole(identity.RoleAdmin), outboxHandler.RetryDeadEntry)
	systemRoutes.POST("/outbox/dead/retry-all", middleware.RequireRole(identity.RoleAdmin), outboxHandler.RetryAllDeadEntries)
	systemRoutes.GET("/outbox/schema/:event_type", middleware.RequireRole(identity.RoleAdmin), outboxHandler.AnalyzeEventSchema)
	systemRoutes.POST("/outbox/schema/:event_type/migrate", middleware.RequireRole(identity.RoleAdmin), outboxHandler.MigrateEventSchema)

	// Register all domain groups
	r.Register(authRoutes).
		Register(identityRoutes).
		Register(catalogRoutes).
		Register(partyRoutes).
		Register(orderRoutes).
		Register(paymentRoutes).
		Register(printRoutes).
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
