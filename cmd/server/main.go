package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	docsapp "github.com/dms/backend/internal/application/documents"
	identityapp "github.com/dms/backend/internal/application/identity"
	systemapp "github.com/dms/backend/internal/application/system"
	tasksapp "github.com/dms/backend/internal/application/tasks"
	taxonomyapp "github.com/dms/backend/internal/application/taxonomy"
	viewsapp "github.com/dms/backend/internal/application/views"
	"github.com/dms/backend/internal/infrastructure/auth"
	"github.com/dms/backend/internal/infrastructure/config"
	"github.com/dms/backend/internal/infrastructure/consumer"
	"github.com/dms/backend/internal/infrastructure/logger"
	"github.com/dms/backend/internal/infrastructure/persistence"
	"github.com/dms/backend/internal/infrastructure/search"
	"github.com/dms/backend/internal/infrastructure/storage"
	"github.com/dms/backend/internal/infrastructure/telemetry"
	"github.com/dms/backend/internal/interfaces/http/handler"
	"github.com/dms/backend/internal/interfaces/http/middleware"
	"github.com/dms/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/dms/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			DMS Backend API
//	@version		1.0
//	@description	Document management system backend API

//	@contact.name	API Support
//	@contact.url	https://github.com/dms/backend

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

	log.Info("Starting DMS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
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

	// Initialize tracing (if enabled)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracingCfg := telemetry.DefaultDBTracingConfig()
		dbTracingCfg.Enabled = true
		dbTracingPlugin := telemetry.NewDBTracingPlugin(dbTracingCfg, log)
		if err := dbTracingPlugin.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Initialize document file storage
	var store storage.FileStorage
	switch cfg.Storage.Backend {
	case "s3":
		store, err = storage.NewS3FileStorage(context.Background(), storage.S3Config{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			Bucket:          cfg.Storage.Bucket,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			UsePathStyle:    cfg.Storage.UsePathStyle,
		}, storage.WithS3Logger(log))
	default:
		store, err = storage.NewFilesystemStorage(cfg.Storage.LocalDir, storage.WithFilesystemLogger(log))
	}
	if err != nil {
		log.Fatal("Failed to initialize file storage", zap.Error(err))
	}
	if err := store.EnsureReady(context.Background()); err != nil {
		log.Fatal("File storage not ready", zap.Error(err))
	}
	log.Info("File storage ready", zap.String("backend", cfg.Storage.Backend))

	// Initialize full text index
	index, err := search.NewBleveIndex(cfg.Search.IndexDir, search.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to open search index", zap.Error(err))
	}
	defer func() {
		if err := index.Close(); err != nil {
			log.Error("Error closing search index", zap.Error(err))
		}
	}()

	// Initialize repositories
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	noteRepo := persistence.NewGormNoteRepository(db.DB)
	metadataRepo := persistence.NewGormCustomMetadataRepository(db.DB)
	tagRepo := persistence.NewGormTagRepository(db.DB)
	correspondentRepo := persistence.NewGormCorrespondentRepository(db.DB)
	documentTypeRepo := persistence.NewGormDocumentTypeRepository(db.DB)
	storagePathRepo := persistence.NewGormStoragePathRepository(db.DB)
	savedViewRepo := persistence.NewGormSavedViewRepository(db.DB)
	uiSettingsRepo := persistence.NewGormUISettingsRepository(db.DB)
	taskRepo := persistence.NewGormTaskRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Token blacklist backed by Redis, with an in-process fallback so the
	// server still comes up without one
	var blacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = redisBlacklist
		defer func() {
			if err := redisBlacklist.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}()
	}

	// Identity services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)

	// Document services
	reindexer := docsapp.NewReindexer(docsapp.ReindexerDeps{
		Documents:      documentRepo,
		Notes:          noteRepo,
		Tags:           tagRepo,
		Correspondents: correspondentRepo,
		DocumentTypes:  documentTypeRepo,
		StoragePaths:   storagePathRepo,
		Index:          index,
	}, log)
	documentService := docsapp.NewDocumentService(docsapp.DocumentServiceDeps{
		Documents:      documentRepo,
		Notes:          noteRepo,
		Tags:           tagRepo,
		Correspondents: correspondentRepo,
		DocumentTypes:  documentTypeRepo,
		StoragePaths:   storagePathRepo,
		Storage:        store,
		Reindexer:      reindexer,
	}, docsapp.WithDocumentServiceLogger(log))
	searchService := docsapp.NewSearchService(index, documentRepo, noteRepo)
	noteService := docsapp.NewNoteService(noteRepo, documentRepo, reindexer)
	metadataService := docsapp.NewCustomMetadataService(metadataRepo, documentRepo)
	bulkService := docsapp.NewBulkService(docsapp.BulkServiceDeps{
		Documents:      documentRepo,
		Correspondents: correspondentRepo,
		DocumentTypes:  documentTypeRepo,
		StoragePaths:   storagePathRepo,
		Tags:           tagRepo,
		Storage:        store,
		Reindexer:      reindexer,
	}, docsapp.WithBulkServiceLogger(log))
	uploadService := docsapp.NewUploadService(taskRepo, documentRepo, store)
	browseService := docsapp.NewBrowseService(storagePathRepo, documentRepo)

	// Taxonomy services
	tagService := taxonomyapp.NewTagService(tagRepo)
	correspondentService := taxonomyapp.NewCorrespondentService(correspondentRepo)
	documentTypeService := taxonomyapp.NewDocumentTypeService(documentTypeRepo)
	storagePathService := taxonomyapp.NewStoragePathService(storagePathRepo)

	// Views, tasks and system services
	savedViewService := viewsapp.NewSavedViewService(savedViewRepo)
	uiSettingsService := viewsapp.NewUISettingsService(uiSettingsRepo, userRepo)
	taskService := tasksapp.NewTaskService(taskRepo)
	logService := systemapp.NewLogService(cfg.Log.Dir)
	remoteVersionService := systemapp.NewRemoteVersionService(cfg.App.Version,
		systemapp.WithRemoteVersionLogger(log))

	// Start the consume workers that turn uploaded files into documents
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	fileConsumer := consumer.NewConsumer(consumer.Deps{
		Tasks:          taskRepo,
		Documents:      documentRepo,
		Tags:           tagRepo,
		Correspondents: correspondentRepo,
		DocumentTypes:  documentTypeRepo,
		StoragePaths:   storagePathRepo,
		Storage:        store,
		Index:          index,
	},
		consumer.WithLogger(log),
		consumer.WithWorkers(cfg.Consumer.Workers),
		consumer.WithPollInterval(cfg.Consumer.PollInterval),
		consumer.WithTaskTimeout(cfg.Consumer.TaskTimeout),
	)
	go fileConsumer.Run(consumerCtx)
	log.Info("Consumer started",
		zap.Int("workers", cfg.Consumer.Workers),
		zap.Duration("poll_interval", cfg.Consumer.PollInterval),
	)

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	documentHandler := handler.NewDocumentHandler(documentService, searchService, noteService, metadataService)
	bulkHandler := handler.NewBulkHandler(bulkService)
	uploadHandler := handler.NewUploadHandler(uploadService)
	searchHandler := handler.NewSearchHandler(searchService)
	browseHandler := handler.NewBrowseHandler(browseService)
	tagHandler := handler.NewTagHandler(tagService)
	correspondentHandler := handler.NewCorrespondentHandler(correspondentService)
	documentTypeHandler := handler.NewDocumentTypeHandler(documentTypeService)
	storagePathHandler := handler.NewStoragePathHandler(storagePathService)
	savedViewHandler := handler.NewSavedViewHandler(savedViewService)
	uiSettingsHandler := handler.NewUISettingsHandler(uiSettingsService)
	taskHandler := handler.NewTaskHandler(taskService)
	systemHandler := handler.NewSystemHandler(logService, remoteVersionService, documentService)
	healthHandler := handler.NewHealthHandler(db.DB)

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
	// 4. Tracing - Propagate OTEL spans (if enabled)
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing())
	}
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit. Uploads get a larger cap so scanned documents pass
	// while the JSON endpoints stay tight.
	bodyLimit := middleware.BodyLimit(cfg.HTTP.MaxBodySize)
	engine.Use(func(c *gin.Context) {
		if c.Request.Method == http.MethodPost && strings.HasSuffix(c.Request.URL.Path, "/documents/post_document") {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cfg.HTTP.MaxUploadSize)
			c.Next()
			return
		}
		bodyLimit(c)
	})

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Tighter rate limit for credential endpoints
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		limit := middleware.RateLimit(authLimiter)
		engine.Use(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/v1/auth/") {
				limit(c)
				return
			}
			c.Next()
		})
	}

	// Health probes (outside API versioning)
	engine.GET("/health", healthHandler.Live)
	engine.GET("/ready", healthHandler.Ready)

	// Swagger documentation endpoint
	if cfg.Swagger.Enabled {
		swaggerProtection := middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, middleware.JWTAuthMiddleware(jwtService))
		engine.GET("/swagger/*any", swaggerProtection, ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		Logger: log,
	}))

	r.Register(authHandler).
		Register(documentHandler).
		Register(bulkHandler).
		Register(uploadHandler).
		Register(searchHandler).
		Register(browseHandler).
		Register(tagHandler).
		Register(correspondentHandler).
		Register(documentTypeHandler).
		Register(storagePathHandler).
		Register(savedViewHandler).
		Register(uiSettingsHandler).
		Register(taskHandler).
		Register(systemHandler)

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

	stopConsumer()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
