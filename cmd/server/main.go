package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/glucoscholar-server/internal/api"
	"github.com/glucoscholar-server/internal/config"
	"github.com/glucoscholar-server/internal/database"
	"github.com/glucoscholar-server/internal/domain"
	"github.com/glucoscholar-server/internal/model"
	"github.com/glucoscholar-server/internal/ocr"
	"github.com/glucoscholar-server/internal/search"
	"github.com/glucoscholar-server/internal/service"
	"github.com/glucoscholar-server/internal/store"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		logrus.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := newLogger(cfg.Logging)

	// Load the trained model artifact
	artifact, err := model.LoadArtifact(cfg.Model.Path)
	if err != nil {
		logger.Fatalf("Failed to load model artifact: %v", err)
	}
	encoders, err := model.NewEncoders(artifact)
	if err != nil {
		logger.Fatalf("Failed to build encoders: %v", err)
	}
	forest, err := model.NewForest(artifact, logger)
	if err != nil {
		logger.Fatalf("Failed to build classifier: %v", err)
	}

	// Open the record store
	recordStore, err := openStore(configManager, logger)
	if err != nil {
		logger.Fatalf("Failed to open record store: %v", err)
	}
	defer recordStore.Close()

	// OCR extractor
	extractor, err := ocr.NewExtractor(logger, cfg.OCR.Languages, cfg.OCR.CacheSize)
	if err != nil {
		logger.Fatalf("Failed to create OCR extractor: %v", err)
	}

	// Web search client with optional Redis cache tier
	var redisCache *search.RedisCache
	if cfg.Search.RedisURL != "" {
		redisCache, err = search.NewRedisCache(cfg.Search.RedisURL, cfg.Search.CacheTTL)
		if err != nil {
			logger.WithError(err).Warn("Redis cache unavailable, continuing with in-process cache only")
		} else {
			defer redisCache.Close()
		}
	}
	searcher := search.NewClient(logger, search.Config{
		BaseURL:    cfg.Search.BaseURL,
		APIKey:     cfg.Search.APIKey,
		Timeout:    cfg.Search.Timeout,
		RateLimit:  cfg.Search.RateLimit,
		MaxResults: cfg.Search.MaxResults,
		CacheSize:  cfg.Search.CacheSize,
		CacheTTL:   cfg.Search.CacheTTL,
	}, redisCache)

	logger.WithFields(logrus.Fields{
		"host":    cfg.Server.Host,
		"port":    cfg.Server.Port,
		"backend": cfg.Database.Backend,
		"model":   artifact.Version,
	}).Info("Starting GlucoScholar server")

	server := api.NewServer(cfg, logger, api.Dependencies{
		Predictions: service.NewPredictionService(logger, encoders, forest, recordStore),
		Datasets:    service.NewDatasetService(logger, encoders, forest),
		Encoders:    encoders,
		Store:       recordStore,
		Extractor:   extractor,
		Searcher:    searcher,
	})

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}

	logger.Info("Server stopped")
}

// newLogger builds the application logger from the logging config.
func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

// openStore selects the record store backend. Postgres runs its pending
// migrations before the store is handed out.
func openStore(configManager *config.Manager, logger *logrus.Logger) (domain.RecordStore, error) {
	cfg := configManager.GetDatabaseConfig()

	switch cfg.Backend {
	case "postgres":
		runner, err := database.NewMigrationRunner(
			configManager.GetDatabaseURL(), cfg.MigrationsPath, logger)
		if err != nil {
			return nil, err
		}
		defer runner.Close()
		if err := runner.Up(); err != nil {
			return nil, err
		}

		db, err := database.NewConnection(context.Background(), database.Config{
			Host:        cfg.Host,
			Port:        cfg.Port,
			Database:    cfg.Database,
			Username:    cfg.Username,
			Password:    cfg.Password,
			MaxConns:    cfg.MaxOpenConns,
			MaxIdle:     cfg.MaxIdleConns,
			MaxConnLife: cfg.ConnMaxLifetime,
			SSLMode:     cfg.SSLMode,
		}, logger)
		if err != nil {
			return nil, err
		}

		return store.NewPostgresStore(db.Pool)

	default:
		logger.WithField("path", cfg.SQLitePath).Info("Using SQLite record store")
		return store.NewSQLiteStore(cfg.SQLitePath)
	}
}
