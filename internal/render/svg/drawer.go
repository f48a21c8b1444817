package svg

import (
	"fmt"
	"html/template"

	"github.com/claimsight/claimsight/internal/dataset"
	"github.com/claimsight/claimsight/internal/render"
)

// DoughnutHole is the inner radius ratio used for doughnut charts.
const DoughnutHole = 0.55

// Drawer renders render.Spec values as inline SVG.
type Drawer struct{}

// NewDrawer constructs the SVG drawer.
func NewDrawer() Drawer { return Drawer{} }

// Draw implements render.Drawer.
func (Drawer) Draw(spec render.Spec, size render.Size) (template.HTML, error) {
	pal := render.PaletteFor(spec.Theme)
	colors := Colors{Title: pal.Title, Axis: pal.Tick, Grid: pal.Grid, Background: pal.Background}
	hidden := hiddenSet(spec)

	switch spec.Kind {
	case render.KindLine:
		return Line(size.Width, size.Height, spec.Labels, toSeries(spec.Series), LineOpts{
			Title:    spec.Options.Title,
			XLabel:   spec.Options.XAxis,
			YLabel:   spec.Options.YAxis,
			Colors:   colors,
			ShowDots: true,
			Fill:     true,
			Hidden:   hidden,
		})
	case render.KindBar:
		return Bars(size.Width, size.Height, spec.Labels, toSeries(spec.Series), BarOpts{
			Title:  spec.Options.Title,
			XLabel: spec.Options.XAxis,
			YLabel: spec.Options.YAxis,
			Colors: colors,
			Hidden: hidden,
		})
	case render.KindPie, render.KindDoughnut:
		if len(spec.Series) == 0 {
			return "", fmt.Errorf("svg: series required")
		}
		hole := 0.0
		if spec.Kind == render.KindDoughnut {
			hole = DoughnutHole
		}
		first := spec.Series[0]
		sliceColors := render.SliceColors(len(spec.Labels))
		for i, label := range spec.Labels {
			if src, ok := dataset.ParseSource(label); ok {
				sliceColors[i] = render.SourceColor(src)
			}
		}
		return Pie(size.Width, size.Height, spec.Labels, toPoints(first.Values), sliceColors, PieOpts{
			Title:  spec.Options.Title,
			Colors: colors,
			Hole:   hole,
			Hidden: hidden,
		})
	}
	return "", fmt.Errorf("svg: unsupported chart kind %q", spec.Kind)
}

func hiddenSet(spec render.Spec) map[string]bool {
	iso := spec.Options.Legend.Isolated
	if iso == "" {
		return nil
	}
	names := spec.SeriesNames()
	if spec.Kind.Circular() {
		names = spec.Labels
	}
	hidden := make(map[string]bool, len(names))
	for _, n := range names {
		if n != iso {
			hidden[n] = true
		}
	}
	return hidden
}

func toSeries(in []render.Series) []Series {
	out := make([]Series, len(in))
	for i, s := range in {
		out[i] = Series{Name: s.Name, Color: s.Color, Points: toPoints(s.Values)}
	}
	return out
}

func toPoints(values []dataset.Value) []Point {
	out := make([]Point, len(values))
	for i, v := range values {
		out[i] = Point{V: v.N, OK: v.Valid}
	}
	return out
}
