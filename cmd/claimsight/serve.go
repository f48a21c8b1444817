package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/claimsight/claimsight/internal/app"
	"github.com/claimsight/claimsight/internal/dashboard"
	dashboardhttp "github.com/claimsight/claimsight/internal/dashboard/http"
	"github.com/claimsight/claimsight/internal/dataset"
	"github.com/claimsight/claimsight/internal/export"
	"github.com/claimsight/claimsight/internal/observability"
	"github.com/claimsight/claimsight/internal/platform/cache"
	"github.com/claimsight/claimsight/internal/view"
	"github.com/claimsight/claimsight/jobs"
	"github.com/claimsight/claimsight/report"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.InTestMode() {
				slog.Default().Info("test mode detected, skipping server startup")
				return nil
			}
			return runServer(cmd.Context())
		},
	}
}

func runServer(ctx context.Context) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg)
	metrics := observability.NewMetrics()

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close(logger)

	src := b.source()
	store, origin, err := dataset.Resolve(ctx, src, cfg.DatasetSnapshot)
	if err != nil {
		return err
	}
	metrics.SetDataset(store.Name(), store.Checksum(), origin)
	logger.Info("dataset loaded",
		slog.String("name", store.Name()),
		slog.String("origin", origin),
		slog.String("checksum", store.Checksum()))

	var serviceCache dashboard.Cache
	if b.cache != nil {
		serviceCache = b.cache
		if bumped, err := b.cache.SyncDataset(ctx, store.Checksum()); err != nil {
			logger.Warn("cache sync", slog.Any("error", err))
		} else if bumped {
			logger.Info("cache version bumped for new dataset")
		}
	}
	service := dashboard.NewService(store, serviceCache, logger)

	if b.cache != nil && src != nil {
		reload := func(version int64) {
			next, nextOrigin, err := dataset.Resolve(ctx, src, cfg.DatasetSnapshot)
			if err != nil {
				logger.Warn("dataset reload", slog.Int64("version", version), slog.Any("error", err))
				return
			}
			if service.Replace(next) {
				metrics.SetDataset(next.Name(), next.Checksum(), nextOrigin)
				logger.Info("dataset reloaded", slog.Int64("version", version), slog.String("checksum", next.Checksum()))
			}
		}
		if err := b.cache.ListenForInvalidation(ctx, cache.DefaultChannel, reload); err != nil {
			logger.Warn("cache invalidation listener", slog.Any("error", err))
		}
	}

	templates, err := view.NewEngine()
	if err != nil {
		return err
	}

	pdfClient := report.NewClient(cfg.GotenbergURL)
	var pdf dashboardhttp.PDFService
	if pdfClient.Configured() {
		pdf = export.NewPDFExporter(pdfClient)
	}
	dashboardHandler := dashboardhttp.NewHandler(logger, service, templates, pdf, metrics)
	dashboardHandler.WithExportLimit(cfg.ExportLimitPerMin)

	var jobHandler *jobs.Handler
	if cfg.RedisAddr != "" {
		redisOpts, err := jobs.RedisOpt(cfg.RedisAddr)
		if err != nil {
			return err
		}
		inspector := asynq.NewInspector(redisOpts)
		defer inspector.Close()
		jobHandler = jobs.NewHandler(inspector, logger)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		DashboardHandler: dashboardHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
		HealthChecks:     healthChecks(b, pdfClient, service),
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
		return err
	}
	return nil
}

func healthChecks(b *backends, pdfClient *report.Client, service *dashboard.Service) []app.HealthCheck {
	checks := []app.HealthCheck{{
		Name:     "dataset",
		Required: true,
		Check: func(context.Context) error {
			if service.Store() == nil {
				return errors.New("no dataset loaded")
			}
			return nil
		},
	}}
	if b.pool != nil {
		checks = append(checks, app.HealthCheck{Name: "postgres", Required: true, Check: b.pool.Ping})
	}
	if b.redis != nil {
		checks = append(checks, app.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return b.redis.Ping(ctx).Err()
		}})
	}
	if pdfClient.Configured() {
		checks = append(checks, app.HealthCheck{Name: "gotenberg", Check: pdfClient.Ping})
	}
	return checks
}
