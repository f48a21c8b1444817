package geo

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/claimsight/claimsight/internal/dataset"
	"github.com/claimsight/claimsight/internal/render"
)

// Draw projects markers with an equirectangular projection fitted to their
// extent.
func Draw(title string, layer Layer, width, height int, theme render.Theme) (template.HTML, error) {
	if width <= 0 {
		width = 960
	}
	if height <= 0 {
		height = 540
	}
	pal := render.PaletteFor(theme)
	legendWidth := 190.0
	pad := MaxRadius + 4
	plotW := float64(width) - legendWidth - 2*pad
	plotH := float64(height) - 2*pad - 24
	if plotW <= 0 || plotH <= 0 {
		return "", fmt.Errorf("geo: viewport too small")
	}

	minLat, maxLat, minLon, maxLon := extent(layer.Markers)
	project := func(c Coord) (float64, float64) {
		x := pad + (c.Lon-minLon)/(maxLon-minLon)*plotW
		y := pad + 24 + (maxLat-c.Lat)/(maxLat-minLat)*plotH
		return x, y
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-label=\"%s\">", width, height, template.HTMLEscapeString(title)))
	b.WriteString(fmt.Sprintf("<rect width=\"%d\" height=\"%d\" fill=\"%s\"></rect>", width, height, pal.Background))
	if title != "" {
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"18\" fill=\"%s\" font-size=\"14\" font-weight=\"600\" text-anchor=\"middle\">%s</text>", (float64(width)-legendWidth)/2, pal.Title, template.HTMLEscapeString(title)))
	}
	for _, m := range layer.Markers {
		x, y := project(m.Position)
		b.WriteString(fmt.Sprintf("<g class=\"marker\" data-region=\"%s\" data-source=\"%s\">", m.Region, m.Source))
		b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"%s\" fill-opacity=\"0.7\" stroke=\"#ffffff\" stroke-width=\"3\"><title>%s</title></circle>",
			x, y, m.Radius, m.Fill, template.HTMLEscapeString(m.Name+" "+m.Source.Label()+": "+render.FormatNumber(m.Value))))
		textColor := "#333333"
		if m.LightText {
			textColor = "#ffffff"
		}
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" font-weight=\"bold\" text-anchor=\"middle\" pointer-events=\"none\">%s</text>", x, y+3, textColor, template.HTMLEscapeString(m.Label)))
		b.WriteString("</g>")
	}

	lx := float64(width) - legendWidth + 12
	ly := 40.0
	b.WriteString(fmt.Sprintf("<g class=\"map-legend\"><text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"12\" font-weight=\"bold\">Data Sources</text>", lx, ly, pal.Title))
	for _, e := range layer.Legend {
		ly += 20
		b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"6\" fill=\"%s\" stroke=\"#ffffff\" stroke-width=\"2\"></circle>", lx+6, ly-4, e.Swatch))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"11\">%s</text>", lx+18, ly, pal.Tick, template.HTMLEscapeString(e.Label)))
	}
	if len(layer.Markers) > 0 {
		ly += 24
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\">%s - %s patients</text>", lx, ly, pal.Tick, render.FormatNumber(layer.Min), render.FormatNumber(layer.Max)))
	}
	ly += 16
	b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\">Bubble size &amp; color intensity = patient count</text></g>", lx, ly, pal.Tick))

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func extent(markers []Marker) (minLat, maxLat, minLon, maxLon float64) {
	if len(markers) == 0 {
		return 24, 50, -125, -66
	}
	minLat, maxLat = math.Inf(1), math.Inf(-1)
	minLon, maxLon = math.Inf(1), math.Inf(-1)
	for _, m := range markers {
		minLat = math.Min(minLat, m.Position.Lat)
		maxLat = math.Max(maxLat, m.Position.Lat)
		minLon = math.Min(minLon, m.Position.Lon)
		maxLon = math.Max(maxLon, m.Position.Lon)
	}
	if maxLat-minLat < 1 {
		minLat, maxLat = minLat-0.5, maxLat+0.5
	}
	if maxLon-minLon < 1 {
		minLon, maxLon = minLon-0.5, maxLon+0.5
	}
	return minLat, maxLat, minLon, maxLon
}

// Drawer adapts the map to render.Drawer. Labels are region codes and each
// series holds one source's counts, named by the source label.
type Drawer struct {
	Coords map[string]Coord
}

// Draw implements render.Drawer.
func (d Drawer) Draw(spec render.Spec, size render.Size) (template.HTML, error) {
	var values []dataset.RegionValue
	for _, s := range spec.Series {
		if !spec.Visible(s.Name) {
			continue
		}
		src, ok := dataset.ParseSource(s.Name)
		if !ok {
			return "", fmt.Errorf("geo: unknown source series %q", s.Name)
		}
		for i, v := range s.Values {
			if i >= len(spec.Labels) || !v.Valid {
				continue
			}
			values = append(values, dataset.RegionValue{Region: spec.Labels[i], Source: src, Value: v.N})
		}
	}
	return Draw(spec.Options.Title, Build(values, d.Coords), size.Width, size.Height, spec.Theme)
}
