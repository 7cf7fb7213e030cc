package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tryonme/outfit-server/internal/config"
	"github.com/tryonme/outfit-server/internal/http/handlers"
	"github.com/tryonme/outfit-server/internal/http/middleware"
	"github.com/tryonme/outfit-server/internal/http/routes"
	"github.com/tryonme/outfit-server/internal/services/bgremoval"
	"github.com/tryonme/outfit-server/internal/services/generator"
	"github.com/tryonme/outfit-server/internal/services/queue"
	"github.com/tryonme/outfit-server/internal/services/stats"
	"github.com/tryonme/outfit-server/internal/services/storage"
	"github.com/tryonme/outfit-server/internal/store"
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
	removal := bgremoval.NewService(cfg.Removal, logger)
	gen := generator.NewService(cfg.Gemini, removal, logger)

	generations, err := store.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open generation store", zap.Error(err))
	}
	defer generations.Close()

	storageSvc, err := storage.NewService(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage service", zap.Error(err))
	}

	var statsSink stats.Sink
	if storageSvc.RedisClient() != nil {
		statsSink = stats.NewRedisSink(storageSvc.RedisClient())
	} else {
		logger.Warn("Redis not configured, using in-memory stats")
		statsSink = stats.NewMemorySink()
	}

	queueSvc, err := queue.NewService(cfg.RabbitMQ.URL, logger)
	if err != nil {
		logger.Warn("Failed to initialize queue service", zap.Error(err))
		// Continue without queue service for basic functionality
		queueSvc = nil
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if queueSvc != nil {
		go func() {
			if err := queueSvc.StartWorker(workerCtx, 1, generations); err != nil {
				logger.Error("Generation worker stopped", zap.Error(err))
			}
		}()
		defer queueSvc.Close()
	}

	auth := middleware.NewRedisAuthProvider(storageSvc.RedisClient())

	// Initialize handlers
	outfitHandler := handlers.NewOutfitHandler(gen, storageSvc, queueSvc, statsSink, generations, logger, cfg)
	generationHandler := handlers.NewGenerationHandler(generations, logger)
	statsHandler := handlers.NewStatsHandler(statsSink, logger)

	router := routes.NewRouter(outfitHandler, generationHandler, statsHandler, auth, logger)

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
