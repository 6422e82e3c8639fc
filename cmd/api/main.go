package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"valsign/internal/cleanup"
	"valsign/internal/domain"
	"valsign/internal/http/handlers"
	httpapi "valsign/internal/http/httpapi"
	"valsign/internal/infra"
	"valsign/internal/infra/geoip"
	"valsign/internal/middleware"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	uploads, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure upload storage")
	}
	reports, err := storage.NewFileStore(cfg.ReportDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure report storage")
	}

	// Jobs live in memory unless a database is configured.
	var jobs domain.JobStore = store.NewMemory()
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		jobs = store.NewPostgres(infra.NewSQLRunner(pool, logger))
		logger.Info().Msg("job store: postgres")
	} else {
		logger.Info().Msg("job store: in-memory")
	}

	var countryLookup middleware.CountryLookup
	if resolver, err := geoip.NewResolver(cfg.GeoIPDBPath); err != nil {
		logger.Warn().Err(err).Msg("geoip resolver unavailable")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	cln := cleanup.New(cleanup.Options{
		Uploads:  uploads,
		Reports:  reports,
		MaxAge:   cfg.CleanupMaxAge,
		Interval: cfg.CleanupInterval,
		Logger:   logger,
	})
	go func() { _ = cln.Run(ctx) }()

	w := worker.New(worker.Options{
		Store:        jobs,
		Uploads:      uploads,
		Checker:      &validation.PDFChecker{},
		Reports:      report.NewWriter(reports),
		Logger:       logger,
		PollInterval: cfg.WorkerPollInterval,
	})
	go func() { _ = w.Run(ctx) }()

	app := handlers.NewApp(jobs, uploads, reports, cln, logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   countryLookup,
		AllowedOrigins:  cfg.AllowedOrigins,
		UploadRateLimit: cfg.UploadRateLimit,
		UploadRateSpan:  cfg.UploadRateSpan,
	})

	server := infra.NewHTTPServer(cfg, router)
	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
