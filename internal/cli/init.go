// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/masjid, cmd/masjid-worker and cmd/report.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"masjid/internal/backend"
	"masjid/internal/cache"
	"masjid/internal/config"
	applog "masjid/internal/log"
	"masjid/internal/records"
	"masjid/internal/report"
	"masjid/internal/services"
)

// LoadEnvFile loads the .env file for local development.
// A missing file is ignored; production sets the environment directly.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger initializes structured logging at the configured level and
// sets it as the default logger.
func SetupLogger(level string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(level)
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// App bundles what the server and the report CLI share: the record
// backend, the snapshot cache and the services over them.
type App struct {
	Backend   *backend.BackendResult
	Snapshots *cache.Snapshots
	Caches    *cache.Manager
	Records   *services.RecordService
	Reports   *services.ReportService
}

// Close releases the backend.
func (a *App) Close() error {
	return a.Backend.Close()
}

// NewApp builds the backend selected by cfg and the services over it.
func NewApp(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", cfg.DataBackend, err)
	}

	store := result.Store
	snaps := cache.NewSnapshots(cfg.CacheTTL, func(ctx context.Context) (report.Dataset, error) {
		return records.Fetch(ctx, store)
	}, logger)
	caches := cache.NewManager(logger)
	caches.Register(snaps)

	opts := report.Options{
		OrgName:  cfg.OrgName,
		Currency: cfg.Currency,
		Logger:   logger.WithComponent(applog.ComponentReport),
	}
	if cfg.ReportLogoPath != "" {
		opts.Logo = report.FileLogo(cfg.ReportLogoPath)
	}
	gen := report.NewGenerator(opts)

	return &App{
		Backend:   result,
		Snapshots: snaps,
		Caches:    caches,
		Records:   services.NewRecordService(store, snaps, result.Publisher, logger),
		Reports:   services.NewReportService(gen, snaps, logger),
	}, nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when cleanup is complete.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup has run.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
