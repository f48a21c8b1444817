package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Line renders a responsive SVG line chart. Missing points break the line
// rather than dropping it to zero.
func Line(width, height int, labels []string, series []Series, opts LineOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("svg: series required")
	}
	for _, s := range series {
		if len(s.Points) != len(labels) {
			return "", fmt.Errorf("svg: series %q length must match labels", s.Name)
		}
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding
	}
	tickCount := opts.TickCount
	if tickCount <= 0 {
		tickCount = DefaultTicks
	}
	axisColor := fallback(opts.Colors.Axis, "#8295ae")
	gridColor := fallback(opts.Colors.Grid, "#e2e8f0")
	titleColor := fallback(opts.Colors.Title, "#004567")

	top := padding + LegendHeight
	chartWidth := float64(width) - 2*padding
	chartHeight := float64(height) - top - padding
	if chartWidth <= 0 || chartHeight <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}

	minVal, maxVal := visibleBounds(series, opts.Hidden)
	scale := chartHeight / (maxVal - minVal)

	step := 0.0
	if len(labels) > 1 {
		step = chartWidth / float64(len(labels)-1)
	}
	xAt := func(i int) float64 {
		if len(labels) > 1 {
			return padding + float64(i)*step
		}
		return padding + chartWidth/2
	}
	yAt := func(v float64) float64 {
		return top + chartHeight - (v-minVal)*scale
	}

	titleID := makeID(opts.Title, "line-title")
	descID := makeID(opts.Title, "line-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Line chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Trend data"))))
	writeHeading(&b, width, opts.Title, titleColor)

	writeGrid(&b, padding, top, chartWidth, chartHeight, minVal, maxVal, tickCount, axisColor, gridColor)
	writeAxes(&b, padding, top, chartWidth, chartHeight, top+chartHeight, axisColor)

	for _, s := range series {
		if opts.Hidden[s.Name] {
			continue
		}
		color := fallback(s.Color, "#004567")
		segments := lineSegments(s.Points, xAt, yAt)
		for _, seg := range segments {
			if opts.Fill && len(seg.xs) > 1 {
				base := top + chartHeight
				area := fmt.Sprintf("%s L%.2f %.2f L%.2f %.2f Z", seg.path, seg.xs[len(seg.xs)-1], base, seg.xs[0], base)
				b.WriteString(fmt.Sprintf("<path d=\"%s\" fill=\"%s\" fill-opacity=\"0.12\" stroke=\"none\" aria-hidden=\"true\"></path>", area, color))
			}
			b.WriteString(fmt.Sprintf("<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"2.5\" stroke-linejoin=\"round\" stroke-linecap=\"round\" data-series=\"%s\"></path>", seg.path, color, template.HTMLEscapeString(s.Name)))
		}
		if opts.ShowDots {
			for i, p := range s.Points {
				if !p.OK {
					continue
				}
				b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"3\" fill=\"%s\"><title>%s</title></circle>", xAt(i), yAt(p.V), color, template.HTMLEscapeString(pointTitle(s.Name, labels[i], p.V))))
			}
		}
	}

	every := labelStride(len(labels), chartWidth)
	for i, label := range labels {
		if i%every != 0 && i != len(labels)-1 {
			continue
		}
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", xAt(i), top+chartHeight+14, axisColor, template.HTMLEscapeString(label)))
	}
	writeAxisLabels(&b, width, height, padding, top, chartHeight, opts.XLabel, opts.YLabel, axisColor)
	writeLegend(&b, padding, padding, seriesLegend(series), opts.Hidden, axisColor)

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

type segment struct {
	path string
	xs   []float64
}

func lineSegments(points []Point, xAt func(int) float64, yAt func(float64) float64) []segment {
	var out []segment
	var cur strings.Builder
	var xs []float64
	flush := func() {
		if len(xs) > 0 {
			out = append(out, segment{path: cur.String(), xs: xs})
		}
		cur.Reset()
		xs = nil
	}
	for i, p := range points {
		if !p.OK {
			flush()
			continue
		}
		x, y := xAt(i), yAt(p.V)
		if len(xs) == 0 {
			cur.WriteString(fmt.Sprintf("M%.2f %.2f", x, y))
		} else {
			cur.WriteString(fmt.Sprintf(" L%.2f %.2f", x, y))
		}
		xs = append(xs, x)
	}
	flush()
	return out
}

func visibleBounds(series []Series, hidden map[string]bool) (float64, float64) {
	minVal, maxVal := 0.0, 0.0
	for _, s := range series {
		if hidden[s.Name] {
			continue
		}
		for _, p := range s.Points {
			if !p.OK {
				continue
			}
			minVal = math.Min(minVal, p.V)
			maxVal = math.Max(maxVal, p.V)
		}
	}
	if almostEqual(maxVal, minVal) {
		maxVal = minVal + 1
	}
	return minVal, maxVal
}

func labelStride(n int, width float64) int {
	if n == 0 {
		return 1
	}
	fit := int(width / 44)
	if fit <= 0 || n <= fit {
		return 1
	}
	return int(math.Ceil(float64(n) / float64(fit)))
}

func seriesLegend(series []Series) []legendItem {
	items := make([]legendItem, len(series))
	for i, s := range series {
		items[i] = legendItem{name: s.Name, color: s.Color}
	}
	return items
}
