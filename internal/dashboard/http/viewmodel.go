package dashboardhttp

import (
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/claimsight/claimsight/internal/dashboard"
	"github.com/claimsight/claimsight/internal/dataset"
	"github.com/claimsight/claimsight/internal/render"
)

// Link is a navigation or toggle anchor carrying the resulting state.
type Link struct {
	Label  string
	Href   string
	Active bool
}

// Panel is one widget card.
type Panel struct {
	ID       string
	Kind     render.Kind
	Title    string
	SVG      template.HTML
	Failed   bool
	Modes    []Link
	Years    []Link
	Variants []Link
	Legend   []Link
	ShowAll  string
	PNG      string
	CSV      string
	JSON     string
}

// PageView is the dashboard page model.
type PageView struct {
	Sections    []Link
	ThemeToggle Link
	Dataset     string
	Checksum    string
	State       string
	PDF         string
	Panels      []Panel
	RenderedAt  time.Time
}

// buildPage derives toggle links by replaying each action on a fresh
// controller restored from the normalised state.
func (h *Handler) buildPage(c *dashboard.Controller, surface *render.Surface, widgets []dashboard.Widget, specs []render.Spec) PageView {
	store := c.Store()
	base := c.Encode()
	href := func(mutate func(*dashboard.Controller) error) string {
		next := h.service.Controller(base, nil)
		if err := mutate(next); err != nil {
			return ""
		}
		return withQuery("/dashboard", next.Encode())
	}

	page := PageView{
		Dataset:    store.Name(),
		Checksum:   shortChecksum(store.Checksum()),
		RenderedAt: h.now().UTC(),
		State:      base.Encode(),
		PDF:        withQuery("/dashboard/export.pdf", base),
	}
	for _, s := range dashboard.Sections {
		page.Sections = append(page.Sections, Link{
			Label:  s.Title(),
			Href:   href(func(next *dashboard.Controller) error { return next.SelectSection(s) }),
			Active: s == c.Section(),
		})
	}
	page.ThemeToggle = Link{
		Label: "Dark mode",
		Href: href(func(next *dashboard.Controller) error {
			next.ToggleTheme()
			return nil
		}),
		Active: c.Theme() == render.ThemeDark,
	}
	if c.Theme() == render.ThemeDark {
		page.ThemeToggle.Label = "Light mode"
	}

	for i, wd := range widgets {
		spec := specs[i]
		st, _ := c.State(wd.ID)
		p := Panel{
			ID:    wd.ID,
			Kind:  wd.Kind,
			Title: spec.Options.Title,
			PNG:   withQuery("/api/widgets/"+wd.ID+"/export.png", base),
			CSV:   withQuery("/api/widgets/"+wd.ID+"/export.csv", base),
			JSON:  withQuery("/api/widgets/"+wd.ID, base),
		}
		if inst, ok := surface.Instance(wd.Mount()); ok {
			p.SVG = inst.Output
		} else {
			p.Failed = true
		}
		if wd.Shape == dashboard.ShapeTrend {
			for _, m := range store.Modes(wd.Domain) {
				p.Modes = append(p.Modes, Link{
					Label:  modeLabel(m),
					Href:   href(func(next *dashboard.Controller) error { return next.SelectMode(wd.ID, m) }),
					Active: st.Mode == m,
				})
			}
			if st.Mode == dataset.ModeMoM {
				for _, y := range store.Years(wd.Domain, dataset.ModeMoM) {
					p.Years = append(p.Years, Link{
						Label:  y,
						Href:   href(func(next *dashboard.Controller) error { return next.ToggleYear(wd.ID, y) }),
						Active: selected(st.SelectedYears, y),
					})
				}
			}
		}
		if variants := store.Variants(wd.Domain); len(variants) > 1 {
			for _, v := range variants {
				p.Variants = append(p.Variants, Link{
					Label:  dashboard.VariantLabel(v),
					Href:   href(func(next *dashboard.Controller) error { return next.SelectVariant(wd.ID, v) }),
					Active: st.Variant == v,
				})
			}
		}
		for _, name := range legendNames(spec) {
			p.Legend = append(p.Legend, Link{
				Label:  name,
				Href:   href(func(next *dashboard.Controller) error { return next.IsolateSeries(wd.ID, name) }),
				Active: st.Isolated == name,
			})
		}
		if st.Isolated != "" {
			p.ShowAll = href(func(next *dashboard.Controller) error { return next.ShowAll(wd.ID) })
		}
		page.Panels = append(page.Panels, p)
	}
	return page
}

func legendNames(spec render.Spec) []string {
	if spec.Kind.Circular() {
		return spec.Labels
	}
	return spec.SeriesNames()
}

func modeLabel(m dataset.Mode) string {
	if m == dataset.ModeMoM {
		return "Month over Month"
	}
	return "Year over Year"
}

func selected(years []string, y string) bool {
	for _, s := range years {
		if s == y {
			return true
		}
	}
	return false
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func shortChecksum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return strings.TrimSpace(sum)
}
