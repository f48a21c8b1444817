package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimsight/claimsight/internal/dashboard"
	"github.com/claimsight/claimsight/internal/dataset"
	jobmetrics "github.com/claimsight/claimsight/internal/jobs"
	"github.com/claimsight/claimsight/internal/platform/cache"
)

type stubWarmer struct {
	n     int
	err   error
	calls int
}

func (s *stubWarmer) Warm(ctx context.Context) (int, error) {
	s.calls++
	return s.n, s.err
}

func newTestJob(w Warmer) *ExportWarmupJob {
	return NewExportWarmupJob(w, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
}

func TestExportWarmupHandle(t *testing.T) {
	warmer := &stubWarmer{n: 3}
	task, err := NewExportWarmupTask("cli")
	require.NoError(t, err)
	assert.Equal(t, TaskExportWarmup, task.Type())

	require.NoError(t, newTestJob(warmer).Handle(context.Background(), task))
	assert.Equal(t, 1, warmer.calls)
}

func TestExportWarmupPropagatesFailure(t *testing.T) {
	boom := errors.New("redis down")
	job := newTestJob(&stubWarmer{err: boom})
	err := job.Handle(context.Background(), asynq.NewTask(TaskExportWarmup, nil))
	assert.ErrorIs(t, err, boom)
}

func TestExportWarmupSkipsMalformedPayload(t *testing.T) {
	warmer := &stubWarmer{}
	err := newTestJob(warmer).Handle(context.Background(), asynq.NewTask(TaskExportWarmup, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Zero(t, warmer.calls)
}

func TestExportWarmupUnconfigured(t *testing.T) {
	var job *ExportWarmupJob
	assert.Error(t, job.Handle(context.Background(), asynq.NewTask(TaskExportWarmup, nil)))
}

func TestExportWarmupFillsCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, err := dataset.Embedded()
	require.NoError(t, err)
	svc := dashboard.NewService(store, cache.NewVersioned(client, time.Minute), nil)

	task, err := NewExportWarmupTask("test")
	require.NoError(t, err)
	require.NoError(t, newTestJob(svc).Handle(context.Background(), task))

	tag := store.Checksum()[:16]
	assert.True(t, mr.Exists("claimsight:png:new-patients:"+tag+":default:v1"))
	assert.False(t, mr.Exists("claimsight:png:geographic:"+tag+":default:v1"))
}
