package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"nestbay-backend/internal/config"
	"nestbay-backend/internal/jobs"
	"nestbay-backend/internal/logger"
	"nestbay-backend/internal/repository/postgres"
	"nestbay-backend/internal/scheduler"
	"nestbay-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'complete-due-bookings', 'all-nightly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Nestbay Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Services
	settings := service.NewPlatformSettings(cfg)
	emailService := service.NewEmailService(cfg.SendGrid)
	calendarService := service.NewCalendarService(store.CalendarRepository, store.UnitRepository, settings)
	walletService := service.NewWalletService(store.WalletRepository, store.UserRepository, emailService, settings)
	refundPolicy := service.NewPenaltyWindowPolicy(cfg.Platform.CancelPenaltyPercent, cfg.Platform.CancelFreeDaysBefore)
	bookingService := service.NewBookingService(
		store.BookingRepository,
		store.CalendarRepository,
		store.UnitRepository,
		store.UserRepository,
		store.NotificationRepository,
		walletService,
		emailService,
		refundPolicy,
		service.NewSnapshotSigner(cfg.Platform.SnapshotSecret),
	)

	jobServices := &jobs.Services{
		Booking:  bookingService,
		Calendar: calendarService,
		Wallet:   walletService,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(db, store, jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "complete-due-bookings":
		jobRunner.CompleteDueBookings()
	case "extend-calendar-windows":
		jobRunner.ExtendCalendarWindows()
	case "reconcile-calendar":
		jobRunner.ReconcileCalendar()
	case "reconcile-ledger":
		jobRunner.ReconcileLedger()
	case "all-nightly":
		jobRunner.RunAllNightlyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - complete-due-bookings\n")
		fmt.Printf("  - extend-calendar-windows\n")
		fmt.Printf("  - reconcile-calendar\n")
		fmt.Printf("  - reconcile-ledger\n")
		fmt.Printf("  - all-nightly\n")
		os.Exit(1)
	}
}
