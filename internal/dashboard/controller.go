package dashboard

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/claimsight/claimsight/internal/dataset"
	"github.com/claimsight/claimsight/internal/render"
)

// Renderer is the chart surface a controller draws onto.
type Renderer interface {
	Render(mount string, spec render.Spec) error
}

// Controller owns the dashboard-wide section and theme plus one ViewState per
// widget. It is not safe for concurrent mutation; Recompute and Spec only read
// state and may run in parallel once mutation has stopped.
type Controller struct {
	store    *dataset.Store
	renderer Renderer
	logger   *slog.Logger
	catalog  Catalog
	section  Section
	theme    render.Theme
	states   map[string]ViewState
}

// NewController builds a controller over the default catalogue with every
// widget in its initial state.
func NewController(store *dataset.Store, renderer Renderer, logger *slog.Logger) *Controller {
	return NewControllerWithCatalog(store, renderer, logger, DefaultCatalog())
}

// NewControllerWithCatalog is NewController with an explicit widget list.
func NewControllerWithCatalog(store *dataset.Store, renderer Renderer, logger *slog.Logger, catalog Catalog) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		store:    store,
		renderer: renderer,
		logger:   logger,
		catalog:  catalog,
		section:  Sections[0],
		theme:    render.ThemeLight,
		states:   make(map[string]ViewState, len(catalog)),
	}
	for _, w := range catalog {
		c.states[w.ID] = initialState(store, w)
	}
	return c
}

// Store returns the backing dataset.
func (c *Controller) Store() *dataset.Store { return c.store }

// Catalog returns the widget list.
func (c *Controller) Catalog() Catalog { return c.catalog }

// Section returns the active section.
func (c *Controller) Section() Section { return c.section }

// Theme returns the active theme.
func (c *Controller) Theme() render.Theme { return c.theme }

// State returns a copy of a widget's view state.
func (c *Controller) State(id string) (ViewState, error) {
	if _, ok := c.catalog.Lookup(id); !ok {
		return ViewState{}, fmt.Errorf("%w: %s", ErrUnknownWidget, id)
	}
	return c.states[id].clone(), nil
}

// SelectMode switches a trend widget between YoY and MoM. Entering MoM with
// no selected year selects the latest one.
func (c *Controller) SelectMode(id string, mode dataset.Mode) error {
	if err := c.setMode(id, mode); err != nil {
		return err
	}
	_, err := c.Recompute(id)
	return err
}

// ToggleYear adds or removes a year from a MoM selection. The selection is
// never left empty: removing the last year re-selects the latest.
func (c *Controller) ToggleYear(id, year string) error {
	if err := c.toggleYear(id, year); err != nil {
		return err
	}
	_, err := c.Recompute(id)
	return err
}

// SelectVariant switches a breakdown widget to a named variant.
func (c *Controller) SelectVariant(id, variant string) error {
	if err := c.setVariant(id, variant); err != nil {
		return err
	}
	_, err := c.Recompute(id)
	return err
}

// IsolateSeries leaves only the named legend item visible. Isolating the item
// that is already isolated shows everything again.
func (c *Controller) IsolateSeries(id, name string) error {
	if err := c.isolate(id, name); err != nil {
		return err
	}
	_, err := c.Recompute(id)
	return err
}

// ShowAll clears legend isolation on a widget.
func (c *Controller) ShowAll(id string) error {
	if _, ok := c.catalog.Lookup(id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWidget, id)
	}
	st := c.states[id]
	st.Isolated = ""
	c.states[id] = st
	_, err := c.Recompute(id)
	return err
}

// SelectSection activates a section and renders its widgets.
func (c *Controller) SelectSection(s Section) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownSection, s)
	}
	c.section = s
	c.RenderSection()
	return nil
}

// ToggleTheme flips between light and dark and re-renders the active section
// so chart decoration follows the palette.
func (c *Controller) ToggleTheme() render.Theme {
	c.theme = c.theme.Toggle()
	c.RenderSection()
	return c.theme
}

// SetTheme applies a theme without rendering. Unknown themes are ignored.
func (c *Controller) SetTheme(t render.Theme) bool {
	if !t.Valid() {
		return false
	}
	c.theme = t
	return true
}

// Spec derives a widget's chart spec without rendering it.
func (c *Controller) Spec(id string) (render.Spec, error) {
	w, ok := c.catalog.Lookup(id)
	if !ok {
		return render.Spec{}, fmt.Errorf("%w: %s", ErrUnknownWidget, id)
	}
	return Reshape(c.store, w, c.states[id], c.theme), nil
}

// Recompute derives the widget's spec and makes exactly one render call. A
// missing mount point is a silent no-op and any other render failure is
// logged; neither is returned.
func (c *Controller) Recompute(id string) (render.Spec, error) {
	w, ok := c.catalog.Lookup(id)
	if !ok {
		return render.Spec{}, fmt.Errorf("%w: %s", ErrUnknownWidget, id)
	}
	spec := Reshape(c.store, w, c.states[id], c.theme)
	if c.renderer == nil {
		return spec, nil
	}
	if err := c.renderer.Render(w.Mount(), spec); err != nil && !errors.Is(err, render.ErrNoMount) {
		c.logger.Warn("dashboard: render failed",
			slog.String("widget", id),
			slog.String("mount", w.Mount()),
			slog.Any("error", err))
	}
	return spec, nil
}

// RenderSection recomputes every widget in the active section.
func (c *Controller) RenderSection() {
	for _, w := range c.catalog.Section(c.section) {
		_, _ = c.Recompute(w.ID)
	}
}

func (c *Controller) setMode(id string, mode dataset.Mode) error {
	w, ok := c.catalog.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWidget, id)
	}
	if w.Shape != ShapeTrend || !mode.Valid() || !hasMode(c.store, w.Domain, mode) {
		return fmt.Errorf("%w: %s on %s", ErrModeUnavailable, mode, id)
	}
	st := c.states[id]
	st.Mode = mode
	if mode == dataset.ModeMoM && len(st.SelectedYears) == 0 {
		if latest := c.store.LatestYear(w.Domain); latest != "" {
			st.SelectedYears = []string{latest}
		}
	}
	c.states[id] = st
	return nil
}

func (c *Controller) toggleYear(id, year string) error {
	w, ok := c.catalog.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWidget, id)
	}
	st := c.states[id]
	if st.Mode != dataset.ModeMoM {
		return ErrModeMismatch
	}
	if !contains(c.store.Years(w.Domain, dataset.ModeMoM), year) {
		return fmt.Errorf("%w: %s", ErrYearUnavailable, year)
	}
	st.SelectedYears = toggled(st.SelectedYears, year, c.store.LatestYear(w.Domain))
	c.states[id] = st
	return nil
}

func (c *Controller) setVariant(id, variant string) error {
	w, ok := c.catalog.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWidget, id)
	}
	if !contains(c.store.Variants(w.Domain), variant) {
		return fmt.Errorf("%w: %s on %s", ErrUnknownVariant, variant, id)
	}
	st := c.states[id]
	if st.Variant != variant {
		st.Isolated = ""
	}
	st.Variant = variant
	c.states[id] = st
	return nil
}

func (c *Controller) isolate(id, name string) error {
	w, ok := c.catalog.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWidget, id)
	}
	st := c.states[id]
	if st.Isolated == name {
		st.Isolated = ""
		c.states[id] = st
		return nil
	}
	if !contains(legendItems(Reshape(c.store, w, st, c.theme)), name) {
		return fmt.Errorf("%w: %s", ErrUnknownSeries, name)
	}
	st.Isolated = name
	c.states[id] = st
	return nil
}
