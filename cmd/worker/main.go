// Command worker runs the background sweep that fails pending payments
// older than the configured TTL. It exposes Prometheus metrics and a
// liveness endpoint on a separate port.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	"laostream/internal/handler/http/respond"
	"laostream/internal/infra/adapter/persistence/postgres"
	"laostream/internal/infra/db"
	"laostream/internal/observability/logging"
	"laostream/internal/observability/metrics"
	"laostream/internal/payment"
	rentalUC "laostream/internal/usecase/rental"
	"laostream/pkg/config"
)

// sweepConfig holds the worker's schedule and batch settings.
type sweepConfig struct {
	CronSchedule string
	Timezone     string
	BatchLimit   int
	JobTimeout   time.Duration
}

func loadSweepConfig() sweepConfig {
	return sweepConfig{
		CronSchedule: config.GetEnvString("WORKER_CRON_SCHEDULE", "@every 10m"),
		Timezone:     config.GetEnvString("WORKER_TIMEZONE", "Asia/Vientiane"),
		BatchLimit:   config.GetEnvInt("WORKER_SWEEP_BATCH_LIMIT", 100),
		JobTimeout:   config.GetEnvDuration("WORKER_JOB_TIMEOUT", 2*time.Minute),
	}
}

func main() {
	logger := logging.NewLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paymentCfg := config.LoadPaymentConfig()
	cfg := loadSweepConfig()
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Int("batch_limit", cfg.BatchLimit),
		slog.Duration("pending_ttl", paymentCfg.PendingTTL))

	svc := setupRentalService(database, paymentCfg)

	startMetricsServer(ctx, logger)
	startCronWorker(ctx, logger, svc, cfg, paymentCfg.PendingTTL)
}

// initDatabase opens the database connection and waits for the API's
// migrations to complete.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	waitForMigrations(logger, database)
	return database
}

func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM rentals LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

// setupRentalService builds a rental service for the sweep. The provider
// registry is needed only to satisfy construction; the sweep drives
// terminal transitions directly.
func setupRentalService(database *sql.DB, paymentCfg config.PaymentConfig) *rentalUC.Service {
	registry := payment.NewRegistry(
		payment.NewFreeProvider(),
		payment.NewBCELProvider(paymentCfg.BCEL),
		payment.NewManualProvider(),
	)
	manual, _ := registry.Provider(payment.ProviderManual)
	return rentalUC.NewService(
		postgres.NewRentalRepo(database),
		postgres.NewMovieRepo(database),
		registry,
		manual.(*payment.ManualProvider),
		paymentCfg.MaxRentalsPerMovie,
		metrics.RentalMetrics{},
	)
}

// startCronWorker schedules the sweep and blocks until a shutdown signal.
func startCronWorker(ctx context.Context, logger *slog.Logger, svc *rentalUC.Service, cfg sweepConfig, pendingTTL time.Duration) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runSweepJob(ctx, logger, svc, cfg, pendingTTL)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down worker...")

	// Let a running sweep finish before exiting.
	<-c.Stop().Done()
	logger.Info("worker stopped")
}

// runSweepJob executes one sweep with a timeout.
func runSweepJob(ctx context.Context, logger *slog.Logger, svc *rentalUC.Service, cfg sweepConfig, pendingTTL time.Duration) {
	start := time.Now()
	jobCtx, cancel := context.WithTimeout(ctx, cfg.JobTimeout)
	defer cancel()

	expired, err := svc.ExpireStalePending(jobCtx, pendingTTL, cfg.BatchLimit)
	if expired > 0 {
		metrics.StaleRentalsExpiredTotal.Add(float64(expired))
	}
	if err != nil {
		logger.Error("sweep failed",
			slog.String("error", respond.SanitizeError(err)),
			slog.Int("expired", expired))
		return
	}

	logger.Info("sweep completed",
		slog.Int("expired", expired),
		slog.Duration("duration", time.Since(start)))
}
