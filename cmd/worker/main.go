// Standalone validation worker. Runs against the shared Postgres queue so
// several instances can drain it side by side; the API binary also embeds
// one worker for single-process deployments.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"valsign/internal/infra"
	"valsign/internal/report"
	"valsign/internal/storage"
	"valsign/internal/store"
	"valsign/internal/validation"
	"valsign/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogFile)

	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("worker: DATABASE_URL is required, the in-memory store cannot be shared across processes")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	uploads, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure upload storage")
	}
	reports, err := storage.NewFileStore(cfg.ReportDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure report storage")
	}

	w := worker.New(worker.Options{
		Store:        store.NewPostgres(infra.NewSQLRunner(pool, logger)),
		Uploads:      uploads,
		Checker:      &validation.PDFChecker{},
		Reports:      report.NewWriter(reports),
		Logger:       logger,
		PollInterval: cfg.WorkerPollInterval,
	})

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}
