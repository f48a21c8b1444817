package dashboardhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/claimsight/claimsight/internal/dashboard"
	"github.com/claimsight/claimsight/internal/dataset"
	"github.com/claimsight/claimsight/internal/export"
	"github.com/claimsight/claimsight/internal/geo"
	"github.com/claimsight/claimsight/internal/platform/httpx"
	"github.com/claimsight/claimsight/internal/render"
	"github.com/claimsight/claimsight/internal/render/svg"
	"github.com/claimsight/claimsight/internal/view"
)

const requestTimeout = 5 * time.Second

// pdfTimeout leaves room for Gotenberg's own wait delay.
const pdfTimeout = 30 * time.Second

// mapSize is the mount size of bubble-map widgets.
var mapSize = render.Size{Width: 960, Height: 540}

// DashboardService is the dashboard data contract used by the handler.
type DashboardService interface {
	Store() *dataset.Store
	Controller(q url.Values, renderer dashboard.Renderer) *dashboard.Controller
	Widget(ctx context.Context, id string, q url.Values) (dashboard.WidgetPayload, error)
	WidgetPNG(ctx context.Context, id string, q url.Values) ([]byte, error)
}

// PDFService renders dashboard panels to PDF bytes.
type PDFService interface {
	RenderDashboard(ctx context.Context, payload export.DashboardPayload) ([]byte, error)
}

// ExportObserver records export outcomes.
type ExportObserver interface {
	ObserveExport(format string, err error)
}

// Handler serves the dashboard page, the widget API and exports.
type Handler struct {
	logger      *slog.Logger
	service     DashboardService
	templates   *view.Engine
	pdf         PDFService
	observer    ExportObserver
	drawer      render.Drawer
	validate    *validator.Validate
	csvPool     sync.Pool
	exportLimit int
	now         func() time.Time
}

// NewHandler constructs the dashboard HTTP handler. pdf and observer may be
// nil; PDF export then answers 503.
func NewHandler(logger *slog.Logger, service DashboardService, templates *view.Engine, pdf PDFService, observer ExportObserver) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		pdf:       pdf,
		observer:  observer,
		drawer: render.Mux{
			Default: svg.NewDrawer(),
			ByKind:  map[render.Kind]render.Drawer{render.KindBubbleMap: geo.Drawer{Coords: geo.StateCoordinates}},
		},
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		exportLimit: 10,
		now:         time.Now,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// WithExportLimit sets the per-minute request budget of export routes.
func (h *Handler) WithExportLimit(n int) {
	if n > 0 {
		h.exportLimit = n
	}
}

var widgetMappings = []httpx.Mapping{
	{Err: dashboard.ErrUnknownWidget, Status: http.StatusNotFound, Title: "Unknown Widget"},
	{Err: dashboard.ErrModeMismatch, Status: http.StatusBadRequest, Title: "Invalid Action"},
	{Err: dashboard.ErrModeUnavailable, Status: http.StatusBadRequest, Title: "Invalid Action"},
	{Err: dashboard.ErrYearUnavailable, Status: http.StatusBadRequest, Title: "Invalid Action"},
	{Err: dashboard.ErrUnknownVariant, Status: http.StatusBadRequest, Title: "Invalid Action"},
	{Err: dashboard.ErrUnknownSeries, Status: http.StatusBadRequest, Title: "Invalid Action"},
	{Err: dashboard.ErrUnknownSection, Status: http.StatusBadRequest, Title: "Invalid Action"},
	{Err: export.ErrUnsupportedKind, Status: http.StatusUnprocessableEntity, Title: "Export Unsupported"},
	{Err: export.ErrNothingToDraw, Status: http.StatusUnprocessableEntity, Title: "Nothing To Export"},
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	surface := render.NewSurface(h.drawer, h.logger)
	c := h.service.Controller(q, surface)
	widgets := c.Catalog().Section(c.Section())

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	specs, err := h.renderWidgets(ctx, c, surface, widgets)
	if err != nil {
		h.handleServerError(w, "render dashboard", err)
		return
	}

	page := h.buildPage(c, surface, widgets, specs)
	data := view.TemplateData{
		Title:       c.Section().Title() + " | Claimsight",
		Theme:       c.Theme(),
		CurrentPath: r.URL.Path,
		Data:        page,
	}
	if err := h.templates.Render(w, "pages/dashboard.html", data); err != nil {
		h.logError("render template", err)
	}
}

// renderWidgets mounts every widget on the surface and recomputes them in
// parallel. Each goroutine writes only its own slot of the result.
func (h *Handler) renderWidgets(ctx context.Context, c *dashboard.Controller, surface *render.Surface, widgets []dashboard.Widget) ([]render.Spec, error) {
	for _, wd := range widgets {
		surface.Mount(wd.Mount(), mountSize(wd))
	}
	specs := make([]render.Spec, len(widgets))
	g, gctx := errgroup.WithContext(ctx)
	for i, wd := range widgets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			spec, err := c.Recompute(wd.ID)
			if err != nil {
				return err
			}
			specs[i] = spec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return specs, nil
}

func (h *Handler) handleWidget(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	payload, err := h.service.Widget(ctx, chi.URLParam(r, "id"), r.URL.Query())
	if err != nil {
		h.respondError(w, "load widget", err)
		return
	}
	httpx.JSON(w, http.StatusOK, payload)
}

// actionRequest is one FSM transition posted by the dashboard script. State
// is the current encoded query.
type actionRequest struct {
	Action string `json:"action" validate:"required,oneof=mode year variant isolate show-all"`
	Value  string `json:"value" validate:"required_unless=Action show-all,max=64"`
	State  string `json:"state" validate:"max=4096"`
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req actionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.respondError(w, "decode action", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, "validate action", fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	state, err := url.ParseQuery(req.State)
	if err != nil {
		h.respondError(w, "parse state", fmt.Errorf("%w: state: %v", httpx.ErrValidation, err))
		return
	}

	c := h.service.Controller(state, nil)
	if err := applyAction(c, id, req); err != nil {
		h.respondError(w, "apply action", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	payload, err := h.service.Widget(ctx, id, c.Encode())
	if err != nil {
		h.respondError(w, "load widget", err)
		return
	}
	httpx.JSON(w, http.StatusOK, payload)
}

func applyAction(c *dashboard.Controller, id string, req actionRequest) error {
	switch req.Action {
	case "mode":
		return c.SelectMode(id, dataset.Mode(req.Value))
	case "year":
		return c.ToggleYear(id, req.Value)
	case "variant":
		return c.SelectVariant(id, req.Value)
	case "isolate":
		return c.IsolateSeries(id, req.Value)
	case "show-all":
		return c.ShowAll(id)
	}
	return fmt.Errorf("%w: action %q", httpx.ErrValidation, req.Action)
}

func (h *Handler) handlePNG(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	raw, err := h.service.WidgetPNG(ctx, id, r.URL.Query())
	if err != nil {
		h.exportFailed(w, "png", err)
		return
	}
	h.observe("png", nil)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(id, "png")))
	if _, err := w.Write(raw); err != nil {
		h.logError("stream png", err)
	}
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c := h.service.Controller(r.URL.Query(), nil)
	spec, err := c.Spec(id)
	if err != nil {
		h.respondError(w, "load widget", err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteSpecCSV(buf, spec); err != nil {
		h.exportFailed(w, "csv", err)
		return
	}
	h.observe("csv", nil)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(id, "csv")))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		h.exportFailed(w, "pdf", errors.New("pdf exporter not configured"))
		return
	}
	surface := render.NewSurface(h.drawer, h.logger)
	c := h.service.Controller(r.URL.Query(), surface)

	ctx, cancel := context.WithTimeout(r.Context(), pdfTimeout)
	defer cancel()

	widgets := []dashboard.Widget(c.Catalog())
	specs, err := h.renderWidgets(ctx, c, surface, widgets)
	if err != nil {
		h.exportFailed(w, "pdf", err)
		return
	}

	store := h.service.Store()
	payload := export.DashboardPayload{
		Title:       "Claimsight Dashboard",
		Section:     c.Section().Title(),
		Dataset:     store.Name(),
		Checksum:    store.Checksum(),
		Theme:       c.Theme(),
		GeneratedAt: h.now().UTC(),
	}
	for i, wd := range widgets {
		inst, ok := surface.Instance(wd.Mount())
		if !ok {
			continue
		}
		payload.Panels = append(payload.Panels, export.Panel{ID: wd.ID, Title: specs[i].Options.Title, SVG: inst.Output, Spec: specs[i]})
	}

	pdf, err := h.pdf.RenderDashboard(ctx, payload)
	if err != nil {
		h.exportFailed(w, "pdf", err)
		return
	}
	h.observe("pdf", nil)
	filename := fmt.Sprintf("claimsight-dashboard-%s.pdf", payload.GeneratedAt.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(pdf); err != nil {
		h.logError("stream pdf", err)
	}
}

// exportFailed answers client-caused failures with their mapped status and
// everything else with 503. Only the latter counts as a failed export.
func (h *Handler) exportFailed(w http.ResponseWriter, format string, err error) {
	if status := httpx.StatusFor(err, widgetMappings...); status != http.StatusInternalServerError {
		httpx.RespondError(w, err, widgetMappings...)
		return
	}
	h.logger.Warn("export failed", slog.String("format", format), slog.Any("error", err))
	h.observe(format, err)
	httpx.Problem(w, http.StatusServiceUnavailable, "Export Unavailable", fmt.Sprintf("the %s export could not be produced", format))
}

func (h *Handler) observe(format string, err error) {
	if h.observer != nil {
		h.observer.ObserveExport(format, err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, context string, err error) {
	if httpx.StatusFor(err, widgetMappings...) == http.StatusInternalServerError {
		h.logError(context, err)
	}
	httpx.RespondError(w, err, widgetMappings...)
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func (h *Handler) logError(context string, err error) {
	h.logger.Error(context, slog.Any("error", err))
}

func mountSize(w dashboard.Widget) render.Size {
	if w.Kind == render.KindBubbleMap {
		return mapSize
	}
	return render.DefaultSize
}
