package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	_ "github.com/lib/pq"

	httpapi "nestbay-backend/internal/api/http"
	"nestbay-backend/internal/config"
	"nestbay-backend/internal/logger"
	"nestbay-backend/internal/queue"
	"nestbay-backend/internal/repository/postgres"
	"nestbay-backend/internal/security"
	"nestbay-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Nestbay Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Redis for the reprice queue
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		logger.Error("Failed to ping redis", "error", err)
		log.Fatalf("Failed to ping redis: %v", err)
	}
	pingCancel()
	logger.Info("Redis connection established", "addr", cfg.Redis.Addr)

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Initialize Services
	settings := service.NewPlatformSettings(cfg)
	emailSvc := service.NewEmailService(cfg.SendGrid)
	calendarSvc := service.NewCalendarService(store.CalendarRepository, store.UnitRepository, settings)
	walletSvc := service.NewWalletService(store.WalletRepository, store.UserRepository, emailSvc, settings)
	refundPolicy := service.NewPenaltyWindowPolicy(cfg.Platform.CancelPenaltyPercent, cfg.Platform.CancelFreeDaysBefore)
	snapshotSigner := service.NewSnapshotSigner(cfg.Platform.SnapshotSecret)
	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.CalendarRepository,
		store.UnitRepository,
		store.UserRepository,
		store.NotificationRepository,
		walletSvc,
		emailSvc,
		refundPolicy,
		snapshotSigner,
	)
	settlementSvc := service.NewSettlementService(
		store.SettlementRepository,
		store.BookingRepository,
		store.UnitRepository,
		bookingSvc,
		walletSvc,
		cfg,
		snapshotSigner,
	)

	// Start the reprice queue worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	repriceQueue := queue.NewRepriceQueue(rdb)
	worker := queue.NewWorker(repriceQueue, calendarSvc)
	go worker.Run(workerCtx)

	// Set up HTTP server
	router := httpapi.NewRouter(httpapi.RouterDeps{
		Tokens:           tokenManager,
		CalendarSvc:      calendarSvc,
		BookingSvc:       bookingSvc,
		SettlementSvc:    settlementSvc,
		WalletSvc:        walletSvc,
		Settings:         settings,
		RepriceQueue:     repriceQueue,
		UnitRepo:         store.UnitRepository,
		NotificationRepo: store.NotificationRepository,
		SeedWindowMonths: cfg.Platform.SeedWindowMonths,
	})

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down...")
	stopWorker()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
