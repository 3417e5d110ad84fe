package main

import (
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/go-grc/internal/database"
	"github.com/hugh/go-grc/internal/grc"
	"github.com/hugh/go-grc/internal/tasks"
	"github.com/hugh/go-grc/pkg/config"
	"github.com/hugh/go-grc/pkg/crypto"
	"github.com/hugh/go-grc/pkg/queue"
	"github.com/hugh/go-grc/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting GRC worker", "concurrency", cfg.Worker.Concurrency, "tick", cfg.Worker.TickInterval)

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Scheduled syncs open sealed integration configs with the server's key
	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		logger.Error("failed to create encryptor", "error", err)
		os.Exit(1)
	}
	if cfg.Encryption.Key == "" {
		logger.Warn("ENCRYPTION_KEY not set, sealed integration configs cannot be opened")
	}

	grcService := grc.NewService(db, logger,
		grc.WithSealer(encryptor),
		grc.WithConnector(grc.NewSimulatedConnector(cfg.Integration.SuccessRate, rand.NewSource(time.Now().UnixNano()))),
	)

	client := queue.NewClient(&cfg.Redis)
	defer client.Close()

	// Create Asynq server and task handler
	srv := queue.NewServer(&cfg.Redis, cfg.Worker.Concurrency, logger)
	handler := tasks.NewHandler(db, grcService, client, logger)

	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	// Periodic tick that looks for integrations due a sync
	scheduler := queue.NewScheduler(&cfg.Redis)
	entryID, err := scheduler.Register(cfg.Worker.TickInterval, tasks.NewSchedulerTickTask())
	if err != nil {
		logger.Error("failed to register scheduler tick", "spec", cfg.Worker.TickInterval, "error", err)
		os.Exit(1)
	}
	logger.Info("scheduler tick registered", "entry_id", entryID)

	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	if err := srv.Start(mux); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	logger.Info("worker started, waiting for tasks...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker...")
	scheduler.Shutdown()
	srv.Shutdown()

	// Close database connection
	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("worker stopped")
}
