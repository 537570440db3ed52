package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"

	"laostream/internal/infra/adapter/persistence/postgres"
	"laostream/internal/infra/db"
	"laostream/internal/observability/logging"
	"laostream/internal/observability/metrics"
	"laostream/internal/observability/tracing"
	"laostream/internal/payment"
	"laostream/internal/ratelimit"
	"laostream/pkg/config"

	movieUC "laostream/internal/usecase/movie"
	rentalUC "laostream/internal/usecase/rental"

	hhttp "laostream/internal/handler/http"
	hauth "laostream/internal/handler/http/auth"
	hmovie "laostream/internal/handler/http/movie"
	hrental "laostream/internal/handler/http/rental"
	"laostream/internal/handler/http/requestid"
)

func main() {
	logger := logging.NewLogger()
	validateJWTSecret(logger)

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	components := setupServer(logger, database, version)

	runServer(logger, components, version)
}

// validateJWTSecret refuses to start with a missing or weak signing key.
func validateJWTSecret(logger *slog.Logger) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}
	if len(secret) < 32 {
		logger.Error("JWT_SECRET must be at least 32 characters (256 bits)")
		os.Exit(1)
	}
	weakSecrets := []string{"secret", "password", "test", "admin", "default"}
	for _, weak := range weakSecrets {
		if secret == weak || secret == weak+"123" {
			logger.Error("JWT_SECRET must not be a common weak value", slog.String("weak_value", weak))
			os.Exit(1)
		}
	}
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// ServerComponents holds what runServer needs beyond the handler itself.
type ServerComponents struct {
	Handler         http.Handler
	Limiter         *ratelimit.Store
	CleanupInterval time.Duration
}

// setupServer wires repositories, providers, services, and routes.
func setupServer(logger *slog.Logger, database *sql.DB, version string) *ServerComponents {
	paymentCfg := config.LoadPaymentConfig()

	rateLimitCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		logger.Error("failed to load rate limit configuration", slog.Any("error", err))
		os.Exit(1)
	}

	limiter := ratelimit.NewStore(ratelimit.StoreConfig{
		Metrics: ratelimit.NewPrometheusMetrics(prometheus.DefaultRegisterer),
	})
	if rateLimitCfg.Enabled {
		logger.Info("attempt limiting initialized",
			slog.Int("classes", len(rateLimitCfg.Policies)),
			slog.Duration("cleanup_interval", rateLimitCfg.CleanupInterval))
	} else {
		logger.Warn("attempt limiting is DISABLED - not recommended for production")
	}

	registry := payment.NewRegistry(
		payment.NewFreeProvider(),
		payment.NewBCELProvider(paymentCfg.BCEL),
		payment.NewManualProvider(),
	)
	if paymentCfg.BCEL.Configured() {
		logger.Info("bcel gateway configured",
			slog.String("endpoint", paymentCfg.BCEL.Endpoint))
	} else {
		logger.Warn("bcel gateway not configured, card payments fall back to manual transfer")
	}

	manual, err := registry.Provider(payment.ProviderManual)
	if err != nil {
		logger.Error("manual provider missing from registry", slog.Any("error", err))
		os.Exit(1)
	}

	rentalRepo := postgres.NewRentalRepo(database)
	movieRepo := postgres.NewMovieRepo(database)
	userRepo := postgres.NewUserRepo(database)

	rentalSvc := rentalUC.NewService(
		rentalRepo,
		movieRepo,
		registry,
		manual.(*payment.ManualProvider),
		paymentCfg.MaxRentalsPerMovie,
		metrics.RentalMetrics{},
	)
	movieSvc := &movieUC.Service{Repo: movieRepo}

	mux := http.NewServeMux()
	mux.Handle("POST   /auth/token", hauth.TokenHandler(userRepo, limiter, &rateLimitCfg))
	mux.Handle("POST   /auth/forgot-password", hauth.ForgotPasswordHandler(userRepo, limiter, &rateLimitCfg))
	mux.Handle("POST   /auth/video-token", hauth.VideoTokenHandler(rentalSvc, limiter, &rateLimitCfg, hhttp.ExtractIP))

	hmovie.Register(mux, movieSvc)
	hrental.Register(mux, rentalSvc)

	mux.Handle("GET    /health", &hhttp.HealthHandler{
		DB:        database,
		Version:   version,
		Limiter:   limiter,
		Providers: registry,
	})
	mux.Handle("GET    /ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("GET    /live", &hhttp.LiveHandler{})
	mux.Handle("GET    /metrics", hhttp.MetricsHandler())

	return &ServerComponents{
		Handler:         applyMiddleware(logger, mux),
		Limiter:         limiter,
		CleanupInterval: rateLimitCfg.CleanupInterval,
	}
}

// applyMiddleware wraps the handler with the middleware chain, applied in
// reverse so the first listed runs outermost.
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	chain := handler
	chain = hhttp.MetricsMiddleware(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = tracing.Middleware(chain)
	chain = requestid.Middleware(chain)
	return chain
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, components *ServerComponents, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go components.Limiter.StartCleanup(ctx, components.CleanupInterval)

	srv := &http.Server{
		Addr:              ":8080",
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", ":8080"),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
