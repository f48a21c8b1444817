package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/claimsight/claimsight/internal/render"
)

type legendItem struct {
	name  string
	color string
}

func writeHeading(b *strings.Builder, width int, title, color string) {
	if strings.TrimSpace(title) == "" {
		return
	}
	b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"16\" fill=\"%s\" font-size=\"14\" font-weight=\"600\" text-anchor=\"middle\">%s</text>", float64(width)/2, color, template.HTMLEscapeString(title)))
}

func writeGrid(b *strings.Builder, left, top, w, h, minVal, maxVal float64, ticks int, axisColor, gridColor string) {
	for i := 0; i <= ticks; i++ {
		ratio := float64(i) / float64(ticks)
		y := top + h - ratio*h
		value := minVal + (maxVal-minVal)*ratio
		b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", left, y, left+w, y, gridColor))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", left-6, y+4, axisColor, template.HTMLEscapeString(formatTick(value))))
	}
}

func writeAxes(b *strings.Builder, left, top, w, h, baseY float64, axisColor string) {
	b.WriteString(fmt.Sprintf("<g stroke=\"%s\" aria-label=\"Axes\">", axisColor))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", left, top, left, top+h))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", left, baseY, left+w, baseY))
	b.WriteString("</g>")
}

func writeAxisLabels(b *strings.Builder, width, height int, padding, top, chartHeight float64, xLabel, yLabel, color string) {
	if xLabel != "" {
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"11\" text-anchor=\"middle\">%s</text>", float64(width)/2, float64(height)-6, color, template.HTMLEscapeString(xLabel)))
	}
	if yLabel != "" {
		cy := top + chartHeight/2
		b.WriteString(fmt.Sprintf("<text x=\"12\" y=\"%.2f\" fill=\"%s\" font-size=\"11\" text-anchor=\"middle\" transform=\"rotate(-90 12 %.2f)\">%s</text>", cy, color, cy, template.HTMLEscapeString(yLabel)))
	}
}

func writeLegend(b *strings.Builder, x, y float64, items []legendItem, hidden map[string]bool, textColor string) {
	for _, it := range items {
		opacity := "1"
		decoration := ""
		if hidden[it.name] {
			opacity = "0.35"
			decoration = " text-decoration=\"line-through\""
		}
		b.WriteString(fmt.Sprintf("<g class=\"legend-item\" data-series=\"%s\" opacity=\"%s\">", template.HTMLEscapeString(it.name), opacity))
		b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" rx=\"2\" fill=\"%s\"></rect>", x, y-8, fallback(it.color, "#8295ae")))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"start\"%s>%s</text>", x+14, y, textColor, decoration, template.HTMLEscapeString(it.name)))
		b.WriteString("</g>")
		x += 24 + 6*float64(len(it.name))
	}
}

func pointTitle(series, label string, v float64) string {
	return series + " " + label + ": " + render.FormatNumber(v)
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return fmt.Sprintf("%s-%s", cleaned, suffix)
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", v/1_000_000_000)
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	default:
		if almostEqual(v, math.Round(v)) {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%.2f", v)
	}
}
