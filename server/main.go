package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-converter/internal/config"
	"github.com/phambaophuc/image-converter/internal/http/handlers"
	"github.com/phambaophuc/image-converter/internal/http/routes"
	"github.com/phambaophuc/image-converter/internal/services"
	"github.com/phambaophuc/image-converter/internal/services/batch"
	"github.com/phambaophuc/image-converter/internal/services/processor"
	"github.com/phambaophuc/image-converter/internal/services/queue"
	"github.com/phambaophuc/image-converter/internal/services/stats"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	newLogger := zap.NewProduction
	if os.Getenv("APP_ENV") == "development" {
		newLogger = zap.NewDevelopment
	}
	logger, err := newLogger()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	gin.SetMode(cfg.Server.Mode)

	// Optional collaborators; conversion works without either.
	var (
		statsRecorder services.StatsRecorder
		eventPublisher services.EventPublisher
		statsProvider handlers.StatsProvider
		queueProvider handlers.QueueProvider
	)

	if cfg.Redis.Addr != "" {
		statsService := stats.NewStatsService(cfg.Redis)
		defer statsService.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if status := statsService.HealthCheck(pingCtx); status != "healthy" {
			logger.Warn("Redis not reachable, batch stats may be incomplete", zap.String("status", status))
		}
		cancel()

		statsRecorder, statsProvider = statsService, statsService
	}

	if cfg.RabbitMQ.URL != "" {
		queueService, err := queue.NewQueueService(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, logger)
		if err != nil {
			logger.Warn("Failed to initialize queue service", zap.Error(err))
			// Continue without batch events
		} else {
			defer queueService.Close()
			eventPublisher, queueProvider = queueService, queueService
		}
	}

	// Initialize services
	policy, err := batch.ParsePolicy(cfg.Conversion.FailurePolicy)
	if err != nil {
		logger.Fatal("Invalid failure policy", zap.Error(err))
	}

	converter := processor.NewConverter(nil, processor.ConverterOptions{MaxPixels: cfg.Conversion.MaxPixels})
	scheduler := batch.NewScheduler(converter, batch.Options{
		Workers:     cfg.Conversion.Workers,
		FileTimeout: cfg.Conversion.FileTimeout,
		Policy:      policy,
	}, logger)

	batchService := services.NewBatchService(
		processor.NewValidator(nil),
		scheduler,
		statsRecorder,
		eventPublisher,
		logger,
	)

	// Initialize handlers
	imageHandler := handlers.NewImageHandler(batchService, statsProvider, queueProvider, logger)

	router := routes.NewRouter(imageHandler, cfg.Conversion, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server",
			zap.String("addr", server.Addr),
			zap.Int("workers", scheduler.Workers()),
			zap.String("failure_policy", string(scheduler.Policy())))
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
