package dashboard

import (
	"sort"

	"github.com/claimsight/claimsight/internal/dataset"
)

// ViewState is the per-widget toggle state. Mode and SelectedYears apply to
// trend widgets, Variant to breakdowns. Isolated names the single legend item
// left visible, or is empty when everything is drawn.
type ViewState struct {
	Mode          dataset.Mode `json:"mode,omitempty"`
	SelectedYears []string     `json:"selectedYears"`
	Variant       string       `json:"variant,omitempty"`
	Isolated      string       `json:"isolated,omitempty"`
}

func (s ViewState) clone() ViewState {
	out := s
	out.SelectedYears = append([]string{}, s.SelectedYears...)
	return out
}

func (s ViewState) hasYear(year string) bool {
	for _, y := range s.SelectedYears {
		if y == year {
			return true
		}
	}
	return false
}

// initialState is mode=YoY with the latest year preselected, falling back to
// MoM only for domains that carry no year-over-year data.
func initialState(store *dataset.Store, w Widget) ViewState {
	st := ViewState{SelectedYears: []string{}}
	switch w.Shape {
	case ShapeTrend:
		st.Mode = dataset.ModeYoY
		if !hasMode(store, w.Domain, dataset.ModeYoY) && hasMode(store, w.Domain, dataset.ModeMoM) {
			st.Mode = dataset.ModeMoM
		}
		if latest := store.LatestYear(w.Domain); latest != "" {
			st.SelectedYears = []string{latest}
		}
	case ShapeBreakdown, ShapeTotals:
		if variants := store.Variants(w.Domain); len(variants) > 0 {
			st.Variant = variants[0]
		}
	}
	return st
}

func hasMode(store *dataset.Store, domain string, mode dataset.Mode) bool {
	for _, m := range store.Modes(domain) {
		if m == mode {
			return true
		}
	}
	return false
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// toggled adds or removes year and keeps the result ascending. An empty
// result falls back to latest.
func toggled(selected []string, year, latest string) []string {
	out := make([]string, 0, len(selected)+1)
	removed := false
	for _, y := range selected {
		if y == year {
			removed = true
			continue
		}
		out = append(out, y)
	}
	if !removed {
		out = append(out, year)
	}
	if len(out) == 0 && latest != "" {
		out = append(out, latest)
	}
	sort.Strings(out)
	return out
}
