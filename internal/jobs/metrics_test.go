package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	require.NoError(t, m.Track("export:warmup").End(nil))
	boom := errors.New("boom")
	require.ErrorIs(t, m.Track("export:warmup").End(boom), boom)

	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("export:warmup", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("export:warmup", "failure")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("export:warmup")))
}

func TestAddWarmedIgnoresNonPositive(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddWarmed(0)
	m.AddWarmed(-3)
	m.AddWarmed(14)
	require.Equal(t, 14.0, testutil.ToFloat64(m.warmed))
}

func TestNilMetricsAreInert(t *testing.T) {
	var m *Metrics
	m.AddWarmed(5)
	require.NoError(t, m.Track("noop").End(nil))
}
