package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"produce-lookup-api/internal/cache"
	"produce-lookup-api/internal/config"
	"produce-lookup-api/internal/handler"
	"produce-lookup-api/internal/middleware"
	"produce-lookup-api/internal/repository"
	"produce-lookup-api/internal/router"
	"produce-lookup-api/internal/service"
	"produce-lookup-api/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	logger := newLogger(cfg)
	defer logger.Sync()

	logger.Infow("starting produce lookup API",
		"environment", cfg.App.Environment,
		"version", cfg.App.Version,
	)

	// Initialize produce repository based on config
	var produceRepo repository.ProduceRepository
	switch cfg.ProduceDB.Type {
	case "postgres", "postgresql":
		pgRepo, err := repository.NewPostgresProduceRepository(cfg.ProduceDB.PostgresDSN())
		if err != nil {
			logger.Fatalw("failed to initialize PostgreSQL", "error", err)
		}
		produceRepo = pgRepo
		logger.Infow("PostgreSQL produce repository initialized")
	case "mysql":
		myRepo, err := repository.NewMySQLProduceRepository(cfg.ProduceDB.MySQLDSN())
		if err != nil {
			logger.Fatalw("failed to initialize MySQL", "error", err)
		}
		produceRepo = myRepo
		logger.Infow("MySQL produce repository initialized")
	default: // sqlite
		sqliteRepo, err := repository.NewSQLiteProduceRepository(cfg.ProduceDB.Path)
		if err != nil {
			logger.Fatalw("failed to initialize SQLite", "error", err)
		}
		produceRepo = sqliteRepo
		logger.Infow("SQLite produce repository initialized", "path", cfg.ProduceDB.Path)
	}
	defer produceRepo.Close()

	// Initialize cache based on config
	var appCache cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisCacheConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			logger.Fatalw("failed to initialize Redis cache", "error", err)
		}
		defer redisCache.Close()
		appCache = redisCache
		logger.Infow("Redis cache initialized", "addr", cfg.Cache.RedisAddress())
	default: // memory
		appCache = cache.NewMemoryCache()
		logger.Infow("in-memory cache initialized")
	}

	// Initialize photo storage based on config
	var photoDir string
	var photos storage.PhotoStorage
	switch cfg.Storage.Type {
	case "s3":
		s3Store, err := storage.NewS3PhotoStorage(&cfg.Storage)
		if err != nil {
			logger.Fatalw("failed to initialize S3 storage", "error", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s3Store.EnsureBucket(ctx); err != nil {
			cancel()
			logger.Fatalw("failed to ensure photo bucket", "error", err, "bucket", cfg.Storage.Bucket)
		}
		cancel()
		photos = s3Store
		logger.Infow("S3 photo storage initialized", "bucket", cfg.Storage.Bucket)
	default: // local
		localStore, err := storage.NewLocalPhotoStorage(cfg.Storage.LocalDir, cfg.Storage.PublicBaseURL)
		if err != nil {
			logger.Fatalw("failed to initialize local photo storage", "error", err)
		}
		photos = localStore
		photoDir = localStore.BaseDir()
		logger.Infow("local photo storage initialized", "dir", photoDir)
	}

	// Initialize services
	sessionService := service.NewSessionService(appCache, cfg.Admin.Passcode, cfg.Admin.SessionTTL, logger)
	produceService := service.NewProduceService(produceRepo, photos, appCache, cfg.Cache.TTL, logger)

	// Initialize handlers
	healthHandler := handler.New(cfg.App.Version)
	produceHandler := handler.NewProduceHandler(produceService, logger)
	adminHandler := handler.NewAdminHandler(sessionService, produceService, cfg.ProduceDB.Type, cfg.Cache.Type, logger)
	adminProduceHandler := handler.NewAdminProduceHandler(produceService, logger)

	// Create router
	r := router.New(router.Config{
		Handler:             healthHandler,
		ProduceHandler:      produceHandler,
		AdminHandler:        adminHandler,
		AdminProduceHandler: adminProduceHandler,
		RouteTokenGate:      middleware.RouteToken(cfg.Admin.RouteToken),
		SessionAuth:         middleware.SessionAuth(sessionService),
		PhotoDir:            photoDir,
		Logger:              logger,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Infow("server listening", "addr", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("server error", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infow("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorw("server shutdown error", "error", err)
	}

	logger.Infow("server stopped")
}

func newLogger(cfg *config.Config) *zap.SugaredLogger {
	var base *zap.Logger
	var err error
	if cfg.App.IsProduction() {
		base, err = zap.NewProduction()
	} else {
		base, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return base.Sugar()
}
