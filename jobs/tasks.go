package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskExportWarmup rasterises default-state widget PNGs into the cache.
	TaskExportWarmup = "export:warmup"
)

// ExportWarmupPayload describes one warm-up run.
type ExportWarmupPayload struct {
	// Reason is recorded in logs only, e.g. "cron", "cli" or "dataset-bump".
	Reason string `json:"reason"`
}

// NewExportWarmupTask constructs an Asynq task.
func NewExportWarmupTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(ExportWarmupPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExportWarmup, data), nil
}
