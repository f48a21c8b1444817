package app

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	dashboardhttp "github.com/claimsight/claimsight/internal/dashboard/http"
	"github.com/claimsight/claimsight/internal/observability"
	"github.com/claimsight/claimsight/internal/platform/httpx"
	"github.com/claimsight/claimsight/jobs"
	"github.com/claimsight/claimsight/web"
)

// HealthCheck probes one dependency. Optional checks report "degraded"
// instead of failing the endpoint.
type HealthCheck struct {
	Name     string
	Required bool
	Check    func(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	DashboardHandler *dashboardhttp.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
	HealthChecks     []HealthCheck
}

// NewRouter constructs the chi.Router with Claimsight defaults.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", healthHandler(params.HealthChecks, logger))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		target := "/dashboard"
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	})

	params.DashboardHandler.MountRoutes(r)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(web.Static())))
	r.Handle("/static/*", staticHandler(fileServer))

	return r
}

type healthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks []HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		results := make([]error, len(checks))
		var g errgroup.Group
		for i, check := range checks {
			g.Go(func() error {
				results[i] = check.Check(ctx)
				return nil
			})
		}
		_ = g.Wait()

		report := healthReport{Status: "ok", Checks: map[string]string{}}
		status := http.StatusOK
		for i, check := range checks {
			if results[i] == nil {
				report.Checks[check.Name] = "ok"
				continue
			}
			logger.Warn("health check failed", slog.String("check", check.Name), slog.Any("error", results[i]))
			report.Checks[check.Name] = "unavailable"
			if check.Required {
				report.Status = "unavailable"
				status = http.StatusServiceUnavailable
			} else if report.Status == "ok" {
				report.Status = "degraded"
			}
		}
		httpx.JSON(w, status, report)
	}
}

// staticTypes pins asset content types; slim images ship without
// /etc/mime.types and would otherwise serve CSS as text/plain.
var staticTypes = map[string]string{
	".css": "text/css; charset=utf-8",
	".js":  "text/javascript; charset=utf-8",
	".svg": "image/svg+xml",
}

// staticHandler serves embedded assets with a one hour browser cache.
func staticHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if typ, ok := staticTypes[path.Ext(r.URL.Path)]; ok {
			w.Header().Set("Content-Type", typ)
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
