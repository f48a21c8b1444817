package perf

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/claimsight/claimsight/internal/dashboard"
	dashboardhttp "github.com/claimsight/claimsight/internal/dashboard/http"
	"github.com/claimsight/claimsight/internal/dataset"
	"github.com/claimsight/claimsight/internal/view"
)

func newRouter(tb testing.TB) http.Handler {
	tb.Helper()
	store, err := dataset.Embedded()
	require.NoError(tb, err)
	engine, err := view.NewEngine()
	require.NoError(tb, err)
	h := dashboardhttp.NewHandler(nil, dashboard.NewService(store, nil, nil), engine, nil, nil)
	h.WithExportLimit(1 << 20)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func hit(tb testing.TB, r http.Handler, target string) time.Duration {
	start := time.Now()
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	elapsed := time.Since(start)
	if rr.Code != http.StatusOK {
		tb.Fatalf("%s: status %d", target, rr.Code)
	}
	return elapsed
}

func TestDashboardLatencyTargets(t *testing.T) {
	if testing.Short() {
		t.Skip("latency sampling skipped in short mode")
	}
	r := newRouter(t)
	scenarios := []struct {
		name      string
		target    string
		threshold time.Duration
	}{
		{name: "page", target: "/dashboard?section=patient-analysis", threshold: 500 * time.Millisecond},
		{name: "map", target: "/dashboard?section=demographics&theme=dark", threshold: 500 * time.Millisecond},
		{name: "widget", target: "/api/widgets/new-patients?new-patients.mode=mom&new-patients.years=2021,2025", threshold: 100 * time.Millisecond},
		{name: "png", target: "/api/widgets/new-patients/export.png", threshold: 2 * time.Second},
	}

	for _, scenario := range scenarios {
		samples := make([]time.Duration, 0, 20)
		for i := 0; i < 20; i++ {
			samples = append(samples, hit(t, r, scenario.target))
		}
		if p95 := percentile95(samples); p95 > scenario.threshold {
			t.Fatalf("%s latency regression: p95=%s threshold=%s", scenario.name, p95, scenario.threshold)
		}
	}
}

func BenchmarkDashboardPage(b *testing.B) {
	r := newRouter(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hit(b, r, "/dashboard")
	}
}

func BenchmarkWidgetPNG(b *testing.B) {
	r := newRouter(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hit(b, r, "/api/widgets/claim-types/export.png")
	}
}

func percentile95(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	index := int(float64(len(sorted)-1) * 0.95)
	return sorted[index]
}
