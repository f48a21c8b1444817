package export

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/claimsight/claimsight/internal/dataset"
	"github.com/claimsight/claimsight/internal/render"
)

var (
	// ErrNothingToDraw reports a spec with no visible positive data.
	ErrNothingToDraw = errors.New("export: nothing to draw")
	// ErrUnsupportedKind reports a chart kind without a raster form.
	ErrUnsupportedKind = errors.New("export: chart kind has no raster form")
)

// RasterSize is the PNG canvas used when the caller passes a zero size.
var RasterSize = render.Size{Width: 1024, Height: 512}

const maxXTicks = 12

// PNG rasterises a spec. Lines and multi-series bars become a line chart,
// a single visible bar series a bar chart, and circular kinds a pie or donut.
func PNG(spec render.Spec, size render.Size) ([]byte, error) {
	if size.Width <= 0 || size.Height <= 0 {
		size = RasterSize
	}
	if len(spec.Labels) == 0 {
		return nil, ErrNothingToDraw
	}
	var buf bytes.Buffer
	var err error
	switch spec.Kind {
	case render.KindLine:
		err = lineChart(spec, size).Render(chart.PNG, &buf)
	case render.KindBar:
		visible := visibleSeries(spec)
		if len(visible) == 1 {
			var bc chart.BarChart
			if bc, err = barChart(spec, visible[0], size); err == nil {
				err = bc.Render(chart.PNG, &buf)
			}
		} else {
			err = lineChart(spec, size).Render(chart.PNG, &buf)
		}
	case render.KindPie, render.KindDoughnut:
		err = circularChart(spec, size, &buf)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, spec.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("export: png %s: %w", spec.Kind, err)
	}
	return buf.Bytes(), nil
}

func lineChart(spec render.Spec, size render.Size) chart.Chart {
	pal := render.PaletteFor(spec.Theme)
	n := len(spec.Labels)
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i + 1)
	}

	maxY := 0.0
	var series []chart.Series
	for _, s := range visibleSeries(spec) {
		ys := aligned(s.Values, n)
		for _, y := range ys {
			maxY = math.Max(maxY, y)
		}
		c := color(s.Color)
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: c,
				StrokeWidth: 2,
				DotColor:    c,
				DotWidth:    3,
			},
		})
	}

	ch := chart.Chart{
		Title:      spec.Options.Title,
		TitleStyle: chart.Style{FontColor: color(pal.Title)},
		Width:      size.Width,
		Height:     size.Height,
		Background: chart.Style{
			FillColor: color(pal.Background),
			Padding:   chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16},
		},
		Canvas: chart.Style{FillColor: color(pal.Background)},
		XAxis: chart.XAxis{
			Name:  spec.Options.XAxis,
			Ticks: xTicks(spec.Labels),
			Range: &chart.ContinuousRange{Min: 0.5, Max: float64(n) + 0.5},
		},
		YAxis: chart.YAxis{
			Name:           spec.Options.YAxis,
			Range:          &chart.ContinuousRange{Min: 0, Max: niceMax(maxY)},
			ValueFormatter: tickFormatter,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch
}

func barChart(spec render.Spec, s render.Series, size render.Size) (chart.BarChart, error) {
	pal := render.PaletteFor(spec.Theme)
	n := len(spec.Labels)
	values := aligned(s.Values, n)
	maxY := 0.0
	bars := make([]chart.Value, n)
	for i, label := range spec.Labels {
		maxY = math.Max(maxY, values[i])
		bars[i] = chart.Value{
			Label: label,
			Value: values[i],
			Style: chart.Style{FillColor: color(s.Color), StrokeColor: color(s.Color)},
		}
	}
	if maxY <= 0 {
		return chart.BarChart{}, ErrNothingToDraw
	}
	spacing := 12
	width := (size.Width-120)/n - spacing
	if width < 8 {
		width = 8
	}
	return chart.BarChart{
		Title:      spec.Options.Title,
		TitleStyle: chart.Style{FontColor: color(pal.Title)},
		Width:      size.Width,
		Height:     size.Height,
		BarWidth:   width,
		BarSpacing: spacing,
		Background: chart.Style{
			FillColor: color(pal.Background),
			Padding:   chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16},
		},
		Canvas: chart.Style{FillColor: color(pal.Background)},
		YAxis: chart.YAxis{
			Name:           spec.Options.YAxis,
			Range:          &chart.ContinuousRange{Min: 0, Max: niceMax(maxY)},
			ValueFormatter: tickFormatter,
		},
		Bars: bars,
	}, nil
}

func circularChart(spec render.Spec, size render.Size, buf *bytes.Buffer) error {
	if len(spec.Series) == 0 {
		return ErrNothingToDraw
	}
	pal := render.PaletteFor(spec.Theme)
	s := spec.Series[0]
	fallback := render.SliceColors(len(spec.Labels))
	var values []chart.Value
	for i, label := range spec.Labels {
		if !spec.Visible(label) || i >= len(s.Values) || !s.Values[i].Valid || s.Values[i].N <= 0 {
			continue
		}
		hex := fallback[i]
		if src, ok := dataset.ParseSource(label); ok {
			hex = render.SourceColor(src)
		}
		values = append(values, chart.Value{
			Label: label,
			Value: s.Values[i].N,
			Style: chart.Style{FillColor: color(hex), StrokeColor: color(pal.Background)},
		})
	}
	if len(values) == 0 {
		return ErrNothingToDraw
	}
	background := chart.Style{FillColor: color(pal.Background)}
	if spec.Kind == render.KindDoughnut {
		return chart.DonutChart{
			Title:      spec.Options.Title,
			TitleStyle: chart.Style{FontColor: color(pal.Title)},
			Width:      size.Width,
			Height:     size.Height,
			Background: background,
			Values:     values,
		}.Render(chart.PNG, buf)
	}
	return chart.PieChart{
		Title:      spec.Options.Title,
		TitleStyle: chart.Style{FontColor: color(pal.Title)},
		Width:      size.Width,
		Height:     size.Height,
		Background: background,
		Values:     values,
	}.Render(chart.PNG, buf)
}

func visibleSeries(spec render.Spec) []render.Series {
	var out []render.Series
	for _, s := range spec.Series {
		if spec.Visible(s.Name) {
			out = append(out, s)
		}
	}
	return out
}

// aligned zero-fills missing cells and pads or trims to n points.
func aligned(values []dataset.Value, n int) []float64 {
	floats := dataset.Series{Values: values}.Floats()
	out := make([]float64, n)
	copy(out, floats)
	return out
}

func xTicks(labels []string) []chart.Tick {
	stride := 1
	if len(labels) > maxXTicks {
		stride = int(math.Ceil(float64(len(labels)) / maxXTicks))
	}
	ticks := make([]chart.Tick, 0, len(labels)/stride+1)
	for i := 0; i < len(labels); i += stride {
		ticks = append(ticks, chart.Tick{Value: float64(i + 1), Label: labels[i]})
	}
	return ticks
}

func niceMax(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v * 1.1
}

func tickFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return render.FormatNumber(math.Round(f))
	}
	return fmt.Sprint(v)
}

func color(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
