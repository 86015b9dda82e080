package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/propstack/property-media/internal/config"
	"github.com/propstack/property-media/internal/handlers"
	"github.com/propstack/property-media/internal/repository"
	"github.com/propstack/property-media/internal/routes"
	"github.com/propstack/property-media/internal/services/optimizer"
	"github.com/propstack/property-media/internal/services/queue"
	"github.com/propstack/property-media/internal/services/storage"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize services
	opt := optimizer.New(cfg.Optimizer.Enabled)
	if !opt.Enabled() {
		logger.Warn("Optimizer disabled, uploads pass through unoptimized")
	}

	store := storage.NewSupabase(cfg, logger)
	if !store.Configured() {
		logger.Warn("Storage backend not configured, uploads return the placeholder URL")
	}

	var publisher queue.Publisher = queue.NoopPublisher{}
	var queueService *queue.Service
	if cfg.RabbitMQ.URL != "" {
		queueService, err = queue.NewService(cfg.RabbitMQ.URL, store, logger)
		if err != nil {
			logger.Warn("Failed to initialize cleanup queue", zap.Error(err))
			// Continue without the retry queue; synchronous cleanup still runs
		} else {
			publisher = queueService
			defer queueService.Close()
		}
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	if queueService != nil {
		if err := queueService.StartWorker(workerCtx, 1); err != nil {
			logger.Warn("Failed to start cleanup worker", zap.Error(err))
		}
	}

	// Initialize handlers
	imageHandler := handlers.NewImageHandler(opt, store, publisher, logger, cfg)

	var listingHandler *handlers.ListingHandler
	if cfg.Postgres.URL != "" {
		pool, err := repository.NewPgxPool(context.Background(), cfg.Postgres.URL)
		if err != nil {
			logger.Fatal("Failed to initialize database pool", zap.Error(err))
		}
		defer pool.Close()
		listingHandler = handlers.NewListingHandler(
			repository.NewListingRepo(pool), store, publisher, logger)
	} else {
		logger.Warn("DATABASE_URL not set, listing routes disabled")
	}

	router := routes.NewRouter(imageHandler, listingHandler, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
