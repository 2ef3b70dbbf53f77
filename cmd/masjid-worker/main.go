package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"masjid/internal/amqp"
	"masjid/internal/cli"
	"masjid/internal/config"
	applog "masjid/internal/log"
	gsheet "masjid/internal/sheets/google"
	"masjid/internal/storage"
	"masjid/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting masjid-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Worker configuration invalid", applog.FieldError, err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	creds, err := gsheet.LoadCredentials(cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile)
	if err != nil {
		return err
	}
	sheetsClient, err := gsheet.New(context.Background(), cfg.GoogleSpreadsheetID, creds, logger)
	if err != nil {
		return err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return err
	}
	defer amqpClient.Close()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	syncWorker := worker.NewSyncWorker(repo, sheetsClient, cfg.SyncBatchSize, logger)

	// Catch up on records left pending while the worker was down. Their queued
	// messages are acknowledged without a second append.
	logger.Info("Performing startup sync check...")
	if stats, err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", applog.FieldError, err)
	} else {
		logger.Info("Startup sync check finished", "synced", stats.Synced, "failed", stats.Failed)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := amqpClient.ConsumeRecordSync(gctx, syncWorker.HandleSyncMessage)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		syncWorker.RunPeriodic(gctx, cfg.SyncInterval)
		return nil
	})

	err = g.Wait()
	if ctx.Err() != nil {
		cli.WaitForShutdown(ctx, done)
	}
	return err
}
