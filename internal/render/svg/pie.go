package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Pie renders a pie, or a doughnut when opts.Hole is positive. Each label is a
// slice; hidden or missing slices are omitted from the total.
func Pie(width, height int, labels []string, points []Point, colors []string, opts PieOpts) (template.HTML, error) {
	if len(labels) == 0 {
		return "", fmt.Errorf("svg: labels required")
	}
	if len(points) != len(labels) {
		return "", fmt.Errorf("svg: values length must match labels")
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if opts.Hole < 0 || opts.Hole >= 1 {
		return "", fmt.Errorf("svg: hole must be in [0,1)")
	}
	axisColor := fallback(opts.Colors.Axis, "#8295ae")
	titleColor := fallback(opts.Colors.Title, "#004567")
	background := fallback(opts.Colors.Background, "#ffffff")

	total := 0.0
	for i, p := range points {
		if p.OK && p.V > 0 && !opts.Hidden[labels[i]] {
			total += p.V
		}
	}

	top := LegendHeight + 24
	cx := float64(width) / 2
	cy := top + (float64(height)-top)/2
	radius := math.Min(float64(width), float64(height)-top)/2 - 8
	if radius <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}

	titleID := makeID(opts.Title, "pie-title")
	descID := makeID(opts.Title, "pie-desc")

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(fallback(opts.Title, "Pie chart"))))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(fallback(opts.Description, "Share by category"))))
	writeHeading(&b, width, opts.Title, titleColor)

	angle := -math.Pi / 2
	for i, label := range labels {
		p := points[i]
		if !p.OK || p.V <= 0 || opts.Hidden[label] || total == 0 {
			continue
		}
		color := sliceColor(colors, i)
		tip := template.HTMLEscapeString(pointTitle(label, fmt.Sprintf("(%.1f%%)", p.V/total*100), p.V))
		if almostEqual(p.V, total) {
			b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"%s\" stroke=\"%s\" stroke-width=\"2\" data-series=\"%s\"><title>%s</title></circle>", cx, cy, radius, color, background, template.HTMLEscapeString(label), tip))
			continue
		}
		sweep := p.V / total * 2 * math.Pi
		x1, y1 := cx+radius*math.Cos(angle), cy+radius*math.Sin(angle)
		x2, y2 := cx+radius*math.Cos(angle+sweep), cy+radius*math.Sin(angle+sweep)
		large := 0
		if sweep > math.Pi {
			large = 1
		}
		b.WriteString(fmt.Sprintf("<path d=\"M%.2f %.2f L%.2f %.2f A%.2f %.2f 0 %d 1 %.2f %.2f Z\" fill=\"%s\" stroke=\"%s\" stroke-width=\"2\" data-series=\"%s\"><title>%s</title></path>",
			cx, cy, x1, y1, radius, radius, large, x2, y2, color, background, template.HTMLEscapeString(label), tip))
		angle += sweep
	}
	if opts.Hole > 0 {
		b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"%s\" aria-hidden=\"true\"></circle>", cx, cy, radius*opts.Hole, background))
	}

	items := make([]legendItem, len(labels))
	for i, label := range labels {
		items[i] = legendItem{name: label, color: sliceColor(colors, i)}
	}
	writeLegend(&b, 24, LegendHeight+8, items, opts.Hidden, axisColor)

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func sliceColor(colors []string, i int) string {
	if i < len(colors) {
		return fallback(colors[i], "#8295ae")
	}
	return "#8295ae"
}
