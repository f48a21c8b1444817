package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/claimsight/claimsight/internal/dataset"
	"github.com/claimsight/claimsight/internal/render"
)

var titleCase = cases.Title(language.English)

// Reshape derives the chart spec for a widget. It is a pure function of the
// store, the widget state and the theme.
func Reshape(store *dataset.Store, w Widget, st ViewState, theme render.Theme) render.Spec {
	meta, _ := store.Meta(w.Domain)
	spec := render.Spec{
		Kind:   w.Kind,
		Labels: []string{},
		Series: []render.Series{},
		Theme:  theme,
		Options: render.Options{
			Title: meta.Title,
			YAxis: meta.Axis,
			Legend: render.Legend{
				Show:     true,
				Position: "top",
				Isolated: st.Isolated,
			},
		},
	}
	switch w.Shape {
	case ShapeTrend:
		reshapeTrend(store, w, st, &spec)
	case ShapeBreakdown:
		reshapeBreakdown(store, w, st, &spec)
	case ShapeTotals:
		reshapeTotals(store, w, st, &spec)
	case ShapeRegions:
		reshapeRegions(store, w, &spec)
	}
	return spec
}

func reshapeTrend(store *dataset.Store, w Widget, st ViewState, spec *render.Spec) {
	values := make(map[dataset.Source][]dataset.Value, len(dataset.DisplayOrder))
	switch st.Mode {
	case dataset.ModeMoM:
		years := append([]string{}, st.SelectedYears...)
		sort.Strings(years)
		for _, year := range years {
			for i, src := range dataset.DisplayOrder {
				s := store.Get(w.Domain, dataset.ModeMoM, src, year)
				if i == 0 {
					for _, month := range s.Labels {
						spec.Labels = append(spec.Labels, month+"-"+year)
					}
				}
				values[src] = append(values[src], s.Values...)
			}
		}
		spec.Options.XAxis = "Month"
		if spec.Options.Title != "" {
			spec.Options.Title = fmt.Sprintf("%s - MoM (%s)", spec.Options.Title, strings.Join(years, ", "))
		}
	default:
		for i, src := range dataset.DisplayOrder {
			s := store.Get(w.Domain, dataset.ModeYoY, src, "")
			if i == 0 {
				spec.Labels = s.Labels
			}
			values[src] = s.Values
		}
		spec.Options.XAxis = "Year"
		if spec.Options.Title != "" {
			spec.Options.Title += " - Year over Year"
		}
	}
	spec.Series = sourceSeries(values)
}

func reshapeBreakdown(store *dataset.Store, w Widget, st ViewState, spec *render.Spec) {
	values := make(map[dataset.Source][]dataset.Value, len(dataset.DisplayOrder))
	for i, src := range dataset.DisplayOrder {
		s := store.Breakdown(w.Domain, st.Variant, src)
		if i == 0 {
			spec.Labels = s.Labels
		}
		values[src] = s.Values
	}
	spec.Series = sourceSeries(values)
	if len(store.Variants(w.Domain)) > 1 && st.Variant != "" && spec.Options.Title != "" {
		spec.Options.Title += " - " + VariantLabel(st.Variant)
	}
}

// reshapeTotals turns a one-label breakdown into a single series with one
// slice per source.
func reshapeTotals(store *dataset.Store, w Widget, st ViewState, spec *render.Spec) {
	series := render.Series{Name: "Patients", Values: []dataset.Value{}}
	for _, src := range dataset.DisplayOrder {
		s := store.Breakdown(w.Domain, st.Variant, src)
		if len(s.Values) == 0 {
			continue
		}
		series.Name = s.Labels[0]
		spec.Labels = append(spec.Labels, src.Label())
		series.Values = append(series.Values, s.Values[0])
	}
	spec.Series = []render.Series{series}
}

func reshapeRegions(store *dataset.Store, w Widget, spec *render.Spec) {
	byRegion := map[string]map[dataset.Source]float64{}
	for _, rv := range store.Regions(w.Domain) {
		if byRegion[rv.Region] == nil {
			byRegion[rv.Region] = map[dataset.Source]float64{}
		}
		byRegion[rv.Region][rv.Source] = rv.Value
	}
	codes := make([]string, 0, len(byRegion))
	for code := range byRegion {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	spec.Labels = codes

	values := make(map[dataset.Source][]dataset.Value, len(dataset.DisplayOrder))
	for _, src := range dataset.DisplayOrder {
		cells := make([]dataset.Value, len(codes))
		for i, code := range codes {
			if v, ok := byRegion[code][src]; ok {
				cells[i] = dataset.Num(v)
			}
		}
		values[src] = cells
	}
	spec.Series = sourceSeries(values)
}

func sourceSeries(values map[dataset.Source][]dataset.Value) []render.Series {
	out := make([]render.Series, 0, len(dataset.DisplayOrder))
	for _, src := range dataset.DisplayOrder {
		vals := values[src]
		if vals == nil {
			vals = []dataset.Value{}
		}
		out = append(out, render.Series{Name: src.Label(), Values: vals, Color: render.SourceColor(src)})
	}
	return out
}

// VariantLabel is the caption for a variant key: short codes are upper-cased,
// words are title-cased.
func VariantLabel(variant string) string {
	if len(variant) <= 3 {
		return strings.ToUpper(variant)
	}
	return titleCase.String(variant)
}

// legendItems lists the names IsolateSeries accepts for a spec.
func legendItems(spec render.Spec) []string {
	if spec.Kind.Circular() {
		return spec.Labels
	}
	return spec.SeriesNames()
}
