package dashboardhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimsight/claimsight/internal/dashboard"
	"github.com/claimsight/claimsight/internal/dataset"
	"github.com/claimsight/claimsight/internal/export"
	"github.com/claimsight/claimsight/internal/view"
)

type stubPDF struct {
	data []byte
	err  error
	last export.DashboardPayload
}

func (s *stubPDF) RenderDashboard(ctx context.Context, payload export.DashboardPayload) ([]byte, error) {
	s.last = payload
	if s.err != nil {
		return nil, s.err
	}
	if s.data == nil {
		s.data = append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("PDF"), 400)...)
	}
	return s.data, nil
}

type exportCall struct {
	format string
	failed bool
}

type recordingObserver struct {
	calls []exportCall
}

func (o *recordingObserver) ObserveExport(format string, err error) {
	o.calls = append(o.calls, exportCall{format: format, failed: err != nil})
}

func newTestRouter(t *testing.T, pdf PDFService) (http.Handler, *recordingObserver) {
	t.Helper()
	store, err := dataset.Embedded()
	require.NoError(t, err)
	engine, err := view.NewEngine()
	require.NoError(t, err)
	observer := &recordingObserver{}
	h := NewHandler(nil, dashboard.NewService(store, nil, nil), engine, pdf, observer)
	h.WithNow(func() time.Time { return time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC) })
	h.WithExportLimit(100)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r, observer
}

func serve(r http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestDashboardRendersActiveSection(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	rr := serve(r, http.MethodGet, "/dashboard", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `id="new-patients-chart"`)
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "New Patients Trends - Year over Year")
	assert.NotContains(t, body, `id="geographic-chart"`)
	assert.Contains(t, body, "/dashboard?section=demographics")
	assert.Contains(t, body, "rendered 30 Jun 2025 12:00 UTC")
}

func TestDashboardRestoresStateFromQuery(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	rr := serve(r, http.MethodGet, "/dashboard?theme=dark&new-patients.mode=mom&new-patients.years=2021,2022", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `class="theme-dark"`)
	assert.Contains(t, body, "New Patients Trends - MoM (2021, 2022)")
	assert.Contains(t, body, "Light mode")
}

func TestDashboardDemographicsDrawsMap(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	rr := serve(r, http.MethodGet, "/dashboard?section=demographics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `class="marker"`)
}

func TestWidgetEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	rr := serve(r, http.MethodGet, "/api/widgets/new-patients?new-patients.mode=mom", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var payload dashboard.WidgetPayload
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, dataset.ModeMoM, payload.State.Mode)
	assert.Equal(t, []string{"Jan-2025", "Feb-2025", "Mar-2025", "Apr-2025", "May-2025"}, payload.Spec.Labels)

	rr = serve(r, http.MethodGet, "/api/widgets/unknown", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}

func TestActionEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	rr := serve(r, http.MethodPost, "/api/widgets/new-patients/actions", `{"action":"year","value":"2021","state":"new-patients.mode=mom"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var payload dashboard.WidgetPayload
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, []string{"2021", "2025"}, payload.State.SelectedYears)
	assert.Len(t, payload.Spec.Labels, 12+5)
	assert.Contains(t, payload.Query, "new-patients.years=2021%2C2025")
}

func TestActionEndpointRejectsBadInput(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	cases := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"unknown action", "/api/widgets/new-patients/actions", `{"action":"explode","value":"x"}`, http.StatusBadRequest},
		{"missing value", "/api/widgets/new-patients/actions", `{"action":"mode"}`, http.StatusBadRequest},
		{"unknown field", "/api/widgets/new-patients/actions", `{"action":"mode","value":"mom","extra":true}`, http.StatusBadRequest},
		{"year outside mom", "/api/widgets/new-patients/actions", `{"action":"year","value":"2021"}`, http.StatusBadRequest},
		{"unknown widget", "/api/widgets/nope/actions", `{"action":"show-all"}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve(r, http.MethodPost, tc.target, tc.body)
			assert.Equal(t, tc.status, rr.Code, rr.Body.String())
		})
	}
}

func TestPNGExport(t *testing.T) {
	r, observer := newTestRouter(t, nil)

	rr := serve(r, http.MethodGet, "/api/widgets/prevalence/export.png", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "claimsight-prevalence-chart.png")

	rr = serve(r, http.MethodGet, "/api/widgets/geographic/export.png", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	assert.Equal(t, []exportCall{{format: "png"}}, observer.calls)
}

func TestCSVExport(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	rr := serve(r, http.MethodGet, "/api/widgets/new-patients/export.csv", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "Label,"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "claimsight-new-patients-chart.csv")
}

func TestPDFExport(t *testing.T) {
	pdf := &stubPDF{}
	r, observer := newTestRouter(t, pdf)

	rr := serve(r, http.MethodGet, "/dashboard/export.pdf?theme=dark", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "claimsight-dashboard-2025-06-30.pdf")
	assert.Len(t, pdf.last.Panels, len(dashboard.DefaultCatalog()))
	assert.Equal(t, "dark", string(pdf.last.Theme))
	assert.Equal(t, []exportCall{{format: "pdf"}}, observer.calls)
}

func TestPDFExportFailureIs503(t *testing.T) {
	r, observer := newTestRouter(t, &stubPDF{err: errors.New("gotenberg down")})
	rr := serve(r, http.MethodGet, "/dashboard/export.pdf", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, []exportCall{{format: "pdf", failed: true}}, observer.calls)

	r, _ = newTestRouter(t, nil)
	rr = serve(r, http.MethodGet, "/dashboard/export.pdf", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
