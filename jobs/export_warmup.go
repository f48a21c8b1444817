package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/claimsight/claimsight/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Warmer renders cacheable exports and reports how many were written.
type Warmer interface {
	Warm(ctx context.Context) (int, error)
}

// ExportWarmupJob pre-populates the PNG cache for every widget in its default
// state.
type ExportWarmupJob struct {
	Warmer  Warmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
	clock   func() time.Time
}

// NewExportWarmupJob wires dependencies for the warm-up handler.
func NewExportWarmupJob(warmer Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ExportWarmupJob {
	return &ExportWarmupJob{
		Warmer:  warmer,
		Logger:  logger,
		Metrics: metrics,
		Timeout: 2 * time.Minute,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes export warm-up tasks.
func (j *ExportWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Warmer == nil {
		return errors.New("export warmup: handler not configured")
	}
	var payload ExportWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.Reason == "" {
		payload.Reason = "unspecified"
	}

	tracker := j.metrics().Track(TaskExportWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("reason", payload.Reason))
	logger.Info("starting export warmup")

	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	start := j.now()
	warmed, err := j.Warmer.Warm(ctx)
	j.metrics().AddWarmed(warmed)
	if err != nil {
		logger.Error("warm exports", slog.Int("widgets", warmed), slog.Any("error", err))
		return err
	}
	logger.Info("completed export warmup", slog.Int("widgets", warmed), slog.Duration("duration", j.now().Sub(start)))
	return nil
}

func (j *ExportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskExportWarmup))
	}
	return slog.Default().With(slog.String("job", TaskExportWarmup))
}

func (j *ExportWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ExportWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
