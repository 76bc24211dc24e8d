package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	portssvc "github.com/vzla-dev/bolivar_rates_api/internal/core/ports/services"
	coresvc "github.com/vzla-dev/bolivar_rates_api/internal/core/services"
	"github.com/vzla-dev/bolivar_rates_api/internal/handlers"
	"github.com/vzla-dev/bolivar_rates_api/internal/middleware"
	"github.com/vzla-dev/bolivar_rates_api/internal/platform/binancep2p"
	"github.com/vzla-dev/bolivar_rates_api/internal/platform/scheduler"
	"github.com/vzla-dev/bolivar_rates_api/internal/providers"
	"github.com/vzla-dev/bolivar_rates_api/internal/repositories/database/pgsql"
	"github.com/vzla-dev/bolivar_rates_api/pkg/config"
	"github.com/vzla-dev/bolivar_rates_api/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "time/tzdata"
)

// scheduledRunTimeout bounds one scheduled scrape-and-persist cycle.
const scheduledRunTimeout = 2 * time.Minute

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	marketTZ, err := time.LoadLocation(cfg.MarketTimezone)
	if err != nil {
		logger.Error("Failed to load market timezone", slog.String("timezone", cfg.MarketTimezone), slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	serviceContainer := buildServices(cfg, dbPool, marketTZ, logger)

	sched, err := scheduler.New(serviceContainer.Rate, scheduler.DefaultJobs, marketTZ, scheduledRunTimeout, logger, nil)
	if err != nil {
		logger.Error("Failed to build scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.EnableScheduler {
		sched.Start()
		defer sched.Stop()
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())
	r.Use(middleware.RateLimit(limiter.New(memory.NewStore(), limiter.Rate{
		Period: cfg.RateLimitPeriod,
		Limit:  cfg.RateLimitRequests,
	})))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, serviceContainer)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}

// buildServices wires repositories, providers and services together.
func buildServices(cfg *config.Config, dbPool *pgxpool.Pool, marketTZ *time.Location, logger *slog.Logger) *portssvc.ServiceContainer {
	p2pClient := binancep2p.NewClient(cfg.BinanceAPIURL, cfg.ScrapeTimeout)

	bcvProvider := providers.NewBCVProvider(cfg.BCVURL, cfg.ScrapeTimeout, marketTZ, logger, nil)
	binanceProvider := providers.NewBinanceProvider(p2pClient, marketTZ, logger, nil)

	scraperService := coresvc.NewScraperService(logger, bcvProvider, binanceProvider)
	rateRepo := pgsql.NewPgxRateRepository(dbPool)
	rateService := coresvc.NewRateService(rateRepo, scraperService, logger)
	liveService := coresvc.NewBinanceLiveService(p2pClient, logger, nil)

	return &portssvc.ServiceContainer{
		Rate:        rateService,
		Scraper:     scraperService,
		BinanceLive: liveService,
	}
}

// runMigrations applies all pending "up" migrations using a temporary
// database/sql connection compatible with the main pgx pool.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
