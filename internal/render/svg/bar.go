package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Bars renders a grouped bar chart with one bar per visible series per label.
// Missing cells leave an empty slot in the group.
func Bars(width, height int, labels []string, series []Series, opts BarOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("svg: at least one series required")
	}
	if len(labels) == 0 {
		return "", fmt.Errorf("svg: labels required")
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
	zeroY := top + chartHeight - (0-minVal)*scale
	chartBottom := top + chartHeight

	var visible []Series
	for _, s := range series {
		if !opts.Hidden[s.Name] {
			visible = append(visible, s)
		}
	}
	groupWidth := chartWidth / float64(len(labels))
	slots := len(visible)
	if slots == 0 {
		slots = 1
	}
	barWidth := groupWidth * 0.8 / float64(slots)
	inset := groupWidth * 0.1

	titleID := makeID(opts.Title, "bar-title")
	descID := makeID(opts.Title, "bar-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Bar chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Grouped bar comparison"))))
	writeHeading(&b, width, opts.Title, titleColor)

	writeGrid(&b, padding, top, chartWidth, chartHeight, minVal, maxVal, tickCount, axisColor, gridColor)
	writeAxes(&b, padding, top, chartWidth, chartHeight, zeroY, axisColor)

	every := labelStride(len(labels), chartWidth)
	for i, label := range labels {
		baseX := padding + float64(i)*groupWidth + inset
		for j, s := range visible {
			p := s.Points[i]
			if !p.OK {
				continue
			}
			y, h := barPosition(p.V, scale, zeroY, top, chartBottom)
			b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" data-series=\"%s\"><title>%s</title></rect>",
				baseX+float64(j)*barWidth, y, barWidth, h, fallback(s.Color, "#004567"),
				template.HTMLEscapeString(s.Name), template.HTMLEscapeString(pointTitle(s.Name, label, p.V))))
		}
		if i%every == 0 {
			center := padding + float64(i)*groupWidth + groupWidth/2
			b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", center, chartBottom+14, axisColor, template.HTMLEscapeString(label)))
		}
	}
	writeAxisLabels(&b, width, height, padding, top, chartHeight, opts.XLabel, opts.YLabel, axisColor)
	writeLegend(&b, padding, padding, seriesLegend(series), opts.Hidden, axisColor)

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func barPosition(value, scale, zeroY, top, bottom float64) (float64, float64) {
	if value >= 0 {
		height := value * scale
		y := zeroY - height
		if y < top {
			height -= top - y
			y = top
		}
		if height < 0 {
			height = 0
		}
		return y, height
	}
	height := math.Abs(value * scale)
	y := zeroY
	if y+height > bottom {
		height = bottom - y
	}
	if height < 0 {
		height = 0
	}
	return y, height
}
