package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fxconvert/internal/adapters"
	"fxconvert/internal/adapters/cache"
	"fxconvert/internal/adapters/postgres"
	"fxconvert/internal/adapters/treasury"
	"fxconvert/internal/api"
	"fxconvert/internal/config"
	"fxconvert/internal/platform/db"
	httpserver "fxconvert/internal/platform/http"
	"fxconvert/internal/platform/logging"
	"fxconvert/internal/rate"
	"fxconvert/internal/rate/handler"
)

const startupTimeout = 30 * time.Second

// Run wires the application components, starts HTTP server and scheduler
func Run() error {
	appCfg, err := config.Init()
	if err != nil {
		return err
	}

	// Logger
	logger, err := logging.New(appCfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()
	logger.Info("✅ Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bounded context for startup operations (DB connect, migrations, first fetch)
	startupCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	// Snapshot archive (optional)
	var archive adapters.SnapshotArchive
	if appCfg.Archive.Enabled {
		pool, poolErr := db.CreatePoolAndPing(startupCtx, appCfg.DbServer)
		if poolErr != nil {
			logger.WithError(poolErr).Error("Error connecting to db")
			return poolErr
		}
		defer pool.Close()
		logger.Info("✅ Postgres connection successful")

		if migrateErr := db.Migrate(startupCtx, pool, logger.WithField("component", "migrations")); migrateErr != nil {
			logger.WithError(migrateErr).Error("Error applying migrations")
			return migrateErr
		}
		archive = postgres.NewSnapshotRepository(pool)
		logger.Info("✅ Snapshot archive ready")
	}

	// Base HTTP client (configurable timeout)
	httpTimeout := appCfg.HTTPClient.Timeout()
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	baseHTTPClient := &http.Client{Timeout: httpTimeout}

	// External client and its cache
	ratesClient := treasury.NewClient(
		baseHTTPClient,
		appCfg.ExchangeAPI.BaseURL,
		appCfg.ExchangeAPI.EndPoint,
		appCfg.ExchangeAPI.CurrencyQuery,
		logger.WithField("component", "treasury"),
	)
	recordCache, err := cache.NewRecordCache(appCfg.Cache.MaxItems, appCfg.Cache.TTL())
	if err != nil {
		logger.WithError(err).Error("Failed to create record cache")
		return err
	}
	defer recordCache.Close()

	// Services
	rateService := rate.NewService(
		ratesClient,
		recordCache,
		archive,
		rate.NewStore(),
		logger.WithField("component", "rate_service"),
		httpTimeout,
	)
	if warmErr := rateService.WarmStart(startupCtx); warmErr != nil {
		// not fatal: the service fetches again on the first request
		logger.WithError(warmErr).Warn("Starting without exchange rates")
	} else {
		logger.Info("✅ Exchange rates loaded")
	}

	scheduler := rate.NewScheduler(rateService, logger.WithField("component", "scheduler"), appCfg.Scheduler.RefreshInterval())
	// Ensure scheduler stops before DB pool closes
	defer func() {
		if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
			logger.Errorf("Scheduler shutdown error: %v", shutDownErr)
		}
	}()
	if startErr := scheduler.Start(ctx); startErr != nil {
		logger.WithError(startErr).Error("Failed to start scheduler")
		return startErr
	}
	logger.Info("✅ Scheduler activation successful")

	// Handlers and router
	rateHandler := handler.NewRateHandler(rateService, logger.WithField("component", "http"))
	router := api.NewRouter(rateHandler)

	logger.Info("Starting http server")
	// Block until context is canceled, then perform graceful shutdown.
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router, logger); serverErr != nil {
		// Cancel the root context to stop scheduler and other in-flight work
		stop()
		logger.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}
