package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/claimsight/claimsight/internal/app"
	"github.com/claimsight/claimsight/internal/dashboard"
	"github.com/claimsight/claimsight/internal/dataset"
	jobmetrics "github.com/claimsight/claimsight/internal/jobs"
	"github.com/claimsight/claimsight/internal/platform/cache"
	"github.com/claimsight/claimsight/internal/platform/db"
	"github.com/claimsight/claimsight/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	if cfg.RedisAddr == "" {
		return errors.New("worker: REDIS_ADDR is required")
	}
	redisClient, err := cache.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	versioned := cache.NewVersioned(redisClient, cfg.CacheTTL)

	var src *dataset.PGSource
	if cfg.PGDSN != "" {
		pool, err := db.Open(ctx, cfg.PGDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		src = dataset.NewPGSource(pool)
	}
	store, origin, err := dataset.Resolve(ctx, src, cfg.DatasetSnapshot)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded", slog.String("origin", origin), slog.String("checksum", store.Checksum()))
	service := dashboard.NewService(store, versioned, logger)

	redisOpts, err := jobs.RedisOpt(cfg.RedisAddr)
	if err != nil {
		return err
	}
	client := jobs.NewClient(redisOpts)
	defer client.Close()

	// A version bump means cached PNGs are unreachable; pick up the new
	// snapshot and re-warm.
	onBump := func(version int64) {
		next, _, err := dataset.Resolve(ctx, src, cfg.DatasetSnapshot)
		if err != nil {
			logger.Warn("dataset reload", slog.Int64("version", version), slog.Any("error", err))
			return
		}
		service.Replace(next)
		if _, err := client.EnqueueExportWarmup(ctx, "dataset-bump"); err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
			logger.Warn("enqueue warmup", slog.Any("error", err))
		}
	}
	if err := versioned.ListenForInvalidation(ctx, cache.DefaultChannel, onBump); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	warmupJob := jobs.NewExportWarmupJob(service, logger, jobmetrics.NewMetrics(nil))
	warmupTask, err := jobs.NewExportWarmupTask("cron")
	if err != nil {
		return err
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts,
		Logger:      logger,
		Concurrency: cfg.AsynqConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskExportWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.ExportWarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		return err
	}
	return worker.Run(ctx)
}
