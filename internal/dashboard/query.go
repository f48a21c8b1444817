package dashboard

import (
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"github.com/claimsight/claimsight/internal/dataset"
	"github.com/claimsight/claimsight/internal/render"
)

// Query parameter names. Widget keys are prefixed with "<widget>.".
const (
	ParamSection = "section"
	ParamTheme   = "theme"
	ParamMode    = "mode"
	ParamYears   = "years"
	ParamVariant = "variant"
	ParamOnly    = "only"
)

// Encode writes every state that differs from its initial value as query
// parameters, so a default dashboard encodes to an empty query.
func (c *Controller) Encode() url.Values {
	q := url.Values{}
	if c.section != Sections[0] {
		q.Set(ParamSection, string(c.section))
	}
	if c.theme != render.ThemeLight {
		q.Set(ParamTheme, string(c.theme))
	}
	for _, w := range c.catalog {
		st := c.states[w.ID]
		initial := initialState(c.store, w)
		prefix := w.ID + "."
		if st.Mode != initial.Mode {
			q.Set(prefix+ParamMode, string(st.Mode))
		}
		// Years survive a switch back to YoY, so they are written in either mode.
		if strings.Join(st.SelectedYears, ",") != strings.Join(initial.SelectedYears, ",") {
			q.Set(prefix+ParamYears, strings.Join(st.SelectedYears, ","))
		}
		if st.Variant != initial.Variant {
			q.Set(prefix+ParamVariant, st.Variant)
		}
		if st.Isolated != "" {
			q.Set(prefix+ParamOnly, st.Isolated)
		}
	}
	return q
}

// Apply restores state from query parameters without rendering. Invalid
// values are logged and skipped so a stale link still opens the dashboard.
func (c *Controller) Apply(q url.Values) {
	if raw := strings.TrimSpace(q.Get(ParamSection)); raw != "" {
		if s := Section(raw); s.Valid() {
			c.section = s
		} else {
			c.logger.Warn("dashboard: ignoring section", slog.String("section", raw))
		}
	}
	if raw := strings.TrimSpace(q.Get(ParamTheme)); raw != "" {
		if !c.SetTheme(render.Theme(raw)) {
			c.logger.Warn("dashboard: ignoring theme", slog.String("theme", raw))
		}
	}
	for _, w := range c.catalog {
		prefix := w.ID + "."
		if raw := strings.TrimSpace(q.Get(prefix + ParamMode)); raw != "" {
			c.skip(w.ID, ParamMode, raw, c.setMode(w.ID, dataset.Mode(raw)))
		}
		if raw := strings.TrimSpace(q.Get(prefix + ParamYears)); raw != "" {
			c.skip(w.ID, ParamYears, raw, c.applyYears(w, raw))
		}
		if raw := strings.TrimSpace(q.Get(prefix + ParamVariant)); raw != "" {
			c.skip(w.ID, ParamVariant, raw, c.setVariant(w.ID, raw))
		}
		if raw := strings.TrimSpace(q.Get(prefix + ParamOnly)); raw != "" {
			st := c.states[w.ID]
			st.Isolated = ""
			c.states[w.ID] = st
			c.skip(w.ID, ParamOnly, raw, c.isolate(w.ID, raw))
		}
	}
}

// applyYears replaces the selection with the valid years in raw. Unknown years
// are dropped; an empty result keeps the current selection. The selection is
// kept in YoY mode too and takes effect once the widget returns to MoM.
func (c *Controller) applyYears(w Widget, raw string) error {
	if w.Shape != ShapeTrend {
		return ErrModeUnavailable
	}
	st := c.states[w.ID]
	available := c.store.Years(w.Domain, dataset.ModeMoM)
	seen := map[string]bool{}
	var years []string
	var err error
	for _, y := range strings.Split(raw, ",") {
		y = strings.TrimSpace(y)
		if y == "" || seen[y] {
			continue
		}
		if !contains(available, y) {
			err = ErrYearUnavailable
			continue
		}
		seen[y] = true
		years = append(years, y)
	}
	if len(years) > 0 {
		sort.Strings(years)
		st.SelectedYears = years
		c.states[w.ID] = st
	}
	return err
}

func (c *Controller) skip(id, param, raw string, err error) {
	if err == nil {
		return
	}
	c.logger.Warn("dashboard: ignoring query state",
		slog.String("widget", id),
		slog.String("param", param),
		slog.String("value", raw),
		slog.Any("error", err))
}
