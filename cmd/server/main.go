package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	analyticsapp "github.com/swas/backend/internal/application/analytics"
	branchapp "github.com/swas/backend/internal/application/branch"
	catalogapp "github.com/swas/backend/internal/application/catalog"
	customerapp "github.com/swas/backend/internal/application/customer"
	identityapp "github.com/swas/backend/internal/application/identity"
	marketingapp "github.com/swas/backend/internal/application/marketing"
	orderapp "github.com/swas/backend/internal/application/order"
	schedulingapp "github.com/swas/backend/internal/application/scheduling"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/infrastructure/auth"
	"github.com/swas/backend/internal/infrastructure/cache"
	"github.com/swas/backend/internal/infrastructure/config"
	"github.com/swas/backend/internal/infrastructure/event"
	"github.com/swas/backend/internal/infrastructure/logger"
	"github.com/swas/backend/internal/infrastructure/persistence"
	"github.com/swas/backend/internal/infrastructure/printing"
	"github.com/swas/backend/internal/infrastructure/realtime"
	"github.com/swas/backend/internal/infrastructure/scheduler"
	"github.com/swas/backend/internal/infrastructure/storage"
	"github.com/swas/backend/internal/infrastructure/telemetry"
	"github.com/swas/backend/internal/interfaces/http/handler"
	"github.com/swas/backend/internal/interfaces/http/middleware"
	"github.com/swas/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "github.com/swas/backend/docs"
)

//	@title			SWAS Backend API
//	@version		1.0
//	@description	Shoe washing and repair shop backend: intake, payments, line item pipeline, scheduling and analytics.

//	@contact.name	API Support
//	@contact.url	https://github.com/swas/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "swas:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}()
	log = providers.TeeLogger(log, zapcore.InfoLevel)

	log.Info("Starting SWAS backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("timezone", cfg.App.Timezone),
	)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeServer,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		return fmt.Errorf("start profiler: %w", err)
	}
	defer func() { _ = profiler.Stop() }()
	if profiler.Enabled() {
		providers.EnableSpanProfiles()
	}
	meter := providers.Meter(cfg.Telemetry.ServiceName)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver()))

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		log.Info("Schema auto-migrated")
	}
	if cfg.Telemetry.DBTraceEnabled {
		dbSystem := "postgresql"
		if cfg.Database.IsSQLite() {
			dbSystem = "sqlite"
		}
		if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
			DBSystem:        dbSystem,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log); err != nil {
			return fmt.Errorf("register database tracing: %w", err)
		}
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("unwrap sql.DB: %w", err)
	}
	if reg, err := telemetry.RegisterDBPoolMetrics(meter, sqlDB); err != nil {
		log.Warn("Database pool metrics unavailable", zap.Error(err))
	} else {
		defer func() { _ = reg.Unregister() }()
	}

	// Redis backs token revocation and payment idempotency when enabled
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, using in-memory stores", zap.Error(err))
			redisClient = nil
		} else {
			defer func() { _ = redisClient.Close() }()
			log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		}
	}

	var blacklist auth.TokenBlacklist
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	var idempotency shared.IdempotencyStore
	if cfg.Idempotency.Enabled {
		factory := cache.NewIdempotencyStoreFactory(cfg.Redis,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(true),
		)
		idempotency, err = factory.CreateStore(ctx, redisClient)
		if err != nil {
			return fmt.Errorf("create idempotency store: %w", err)
		}
		defer func() { _ = idempotency.Close() }()
	}

	// Optional adapters stay nil interfaces when disabled
	var images orderapp.ImageStorage
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3ImageStorage(ctx, &cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			return fmt.Errorf("initialize image storage: %w", err)
		}
		images = s3
	}

	var renderer orderapp.PDFRenderer
	if cfg.Printing.Enabled {
		chrome := printing.NewChromedpRenderer(printing.ChromedpConfig{
			ExecPath:      cfg.Printing.ChromePath,
			Timeout:       cfg.Printing.Timeout,
			MaxConcurrent: int64(cfg.Printing.MaxConcurrent),
			NoSandbox:     os.Geteuid() == 0,
			Logger:        log,
		})
		defer func() { _ = chrome.Close() }()
		renderer = chrome
	}

	orderMetrics, err := telemetry.NewOrderMetrics(meter)
	if err != nil {
		return fmt.Errorf("register order metrics: %w", err)
	}

	bus := event.NewInMemoryEventBus(log)
	var (
		hub      *realtime.Hub
		notifier handler.NotificationHub
	)
	if cfg.Realtime.Enabled {
		hub = realtime.NewHub(realtime.Config{
			SendBuffer:     cfg.Realtime.SendBuffer,
			PongWait:       cfg.Realtime.PongWait,
			WriteTimeout:   cfg.Realtime.WriteTimeout,
			AllowedOrigins: cfg.Realtime.AllowedOrigins,
		}, log)
		bus.Subscribe(hub, hub.EventTypes()...)
		notifier = hub
	}
	if err := bus.Start(ctx); err != nil {
		return fmt.Errorf("start event bus: %w", err)
	}
	defer func() { _ = bus.Stop(context.Background()) }()

	// Repositories
	branchRepo := persistence.NewGormBranchRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	serviceRepo := persistence.NewGormServiceRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	lineItemRepo := persistence.NewGormLineItemRepository(db.DB)
	appointmentRepo := persistence.NewGormAppointmentRepository(db.DB)
	unavailabilityRepo := persistence.NewGormUnavailabilityRepository(db.DB)
	announcementRepo := persistence.NewGormAnnouncementRepository(db.DB)
	promoRepo := persistence.NewGormPromoRepository(db.DB)
	analyticsRepo := persistence.NewGormAnalyticsRepository(db.DB)
	sequences := persistence.NewGormSequenceGenerator(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	loc := cfg.App.Location()

	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, identityapp.AuthServiceConfig{
		MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
		LockDuration:     cfg.Auth.LockDuration,
	}, log)
	userService := identityapp.NewUserService(userRepo, branchRepo, blacklist, jwtService, bus, log)
	branchService := branchapp.NewBranchService(branchRepo, bus, log)
	catalogService := catalogapp.NewCatalogService(serviceRepo, log)
	customerService := customerapp.NewCustomerService(customerRepo, transactionRepo, bus, log)
	orderService := orderapp.NewOrderService(orderapp.Dependencies{
		Scope:           persistence.NewGormTransactionScope(db.DB),
		TransactionRepo: transactionRepo,
		LineItemRepo:    lineItemRepo,
		CustomerRepo:    customerRepo,
		BranchRepo:      branchRepo,
		ServiceRepo:     serviceRepo,
		Publisher:       bus,
		Idempotency:     idempotency,
		IdempotencyTTL:  cfg.Idempotency.TTL,
		Storage:         images,
		Renderer:        renderer,
		Metrics:         orderMetrics,
		ShopName:        cfg.Printing.ShopName,
		Location:        loc,
		Logger:          log,
	})
	schedulingService := schedulingapp.NewSchedulingService(appointmentRepo, unavailabilityRepo, customerRepo, sequences, bus, log)
	marketingService := marketingapp.NewMarketingService(announcementRepo, promoRepo, sequences, loc, log)
	analyticsService := analyticsapp.NewAnalyticsService(analyticsRepo, serviceRepo, analyticsapp.Config{
		ForecastWindow:  cfg.Scheduler.ForecastWindow,
		ForecastHorizon: cfg.Scheduler.ForecastHorizon,
		Location:        loc,
	}, log)

	// Nightly analytics rollup
	if cfg.Scheduler.Enabled {
		schedCfg := scheduler.DefaultConfig()
		schedCfg.JobTimeout = cfg.Scheduler.JobTimeout
		schedCfg.RetryAttempts = cfg.Scheduler.RetryAttempts
		schedCfg.RetryDelay = cfg.Scheduler.RetryDelay
		jobs := scheduler.NewScheduler(schedCfg, scheduler.NewRollupExecutor(analyticsService, log), log)
		trigger, err := scheduler.NewDailyTrigger(scheduler.DailyTriggerConfig{
			JobName:    "analytics-rollup",
			At:         cfg.Scheduler.RollupTime,
			Location:   loc,
			RunOnStart: cfg.Scheduler.RunOnStart,
		}, jobs, log)
		if err != nil {
			return fmt.Errorf("configure rollup trigger: %w", err)
		}
		if err := jobs.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer func() { _ = jobs.Stop(context.Background()) }()
		if err := trigger.Start(ctx); err != nil {
			return fmt.Errorf("start rollup trigger: %w", err)
		}
		defer func() { _ = trigger.Stop(context.Background()) }()
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return fmt.Errorf("configure trusted proxies: %w", err)
	}

	metricsMW, err := middleware.Metrics(meter)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}
	engine.Use(
		middleware.RequestID(log),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     providers.Enabled(),
		}),
		middleware.SpanErrorMarker(),
		metricsMW,
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
			AllowMethods:     cfg.HTTP.CORSAllowMethods,
			AllowHeaders:     append(cfg.HTTP.CORSAllowHeaders, handler.IdempotencyKeyHeader),
			ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.Secure(cfg.App.Env == "production"),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	authenticate := middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	})
	guards := router.Guards{
		Authenticate: authenticate,
		AuthenticateSocket: middleware.JWTAuth(middleware.JWTMiddlewareConfig{
			JWTService:      jwtService,
			TokenBlacklist:  blacklist,
			AllowQueryToken: true,
			Logger:          log,
		}),
		AfterAuth: []gin.HandlerFunc{
			middleware.TracingAttributeInjector(),
			middleware.Profiling(profiler),
		},
		Superadmin: middleware.RequireSuperadmin(),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer authLimiter.Stop()
		guards.LoginLimit = middleware.RateLimit(authLimiter)
	}

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, authenticate),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	var redisCheck handler.HealthCheck
	if redisClient != nil {
		redisCheck = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		User:        handler.NewUserHandler(userService),
		Branch:      handler.NewBranchHandler(branchService),
		Catalog:     handler.NewCatalogHandler(catalogService),
		Customer:    handler.NewCustomerHandler(customerService),
		Transaction: handler.NewTransactionHandler(orderService),
		LineItem:    handler.NewLineItemHandler(orderService),
		Scheduling:  handler.NewSchedulingHandler(schedulingService),
		Marketing:   handler.NewMarketingHandler(marketingService),
		Analytics:   handler.NewAnalyticsHandler(analyticsService),
		System:      handler.NewSystemHandler(sqlDB.PingContext, redisCheck, notifier),
		Realtime:    handler.NewRealtimeHandler(notifier),
	}
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.SetupAPI(r, handlers, guards)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.String("api", r.BasePath()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if hub != nil {
		g.Go(func() error { return hub.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		return err
	}
	log.Info("Server exited gracefully")
	return nil
}
