package export

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/claimsight/claimsight/internal/render"
)

// HTMLRenderer converts an HTML document into PDF bytes.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Panel is one chart card in the PDF.
type Panel struct {
	ID    string
	Title string
	SVG   template.HTML
	Spec  render.Spec
}

// DashboardPayload aggregates everything printed in a dashboard PDF.
type DashboardPayload struct {
	Title       string
	Section     string
	Dataset     string
	Checksum    string
	Theme       render.Theme
	GeneratedAt time.Time
	Panels      []Panel
}

// PDFExporter prints dashboard panels through an HTML-to-PDF renderer.
type PDFExporter struct {
	renderer HTMLRenderer
}

// NewPDFExporter wires the exporter to a renderer such as report.Client.
func NewPDFExporter(renderer HTMLRenderer) *PDFExporter {
	return &PDFExporter{renderer: renderer}
}

// RenderDashboard builds the HTML document and converts it.
func (p *PDFExporter) RenderDashboard(ctx context.Context, payload DashboardPayload) ([]byte, error) {
	if p == nil || p.renderer == nil {
		return nil, errors.New("pdf exporter not initialised")
	}
	pdf, err := p.renderer.RenderHTML(ctx, BuildHTML(payload))
	if err != nil {
		return nil, fmt.Errorf("export: pdf: %w", err)
	}
	return pdf, nil
}

// BuildHTML lays out one section per panel: the inline SVG followed by its
// data table.
func BuildHTML(payload DashboardPayload) string {
	pal := render.PaletteFor(payload.Theme)
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"utf-8\"><style>")
	b.WriteString(fmt.Sprintf("body{font-family:sans-serif;margin:24px;background:%s;color:%s;}", pal.Background, pal.Title))
	b.WriteString("h1{font-size:20px;}h2{font-size:15px;margin:0 0 8px;}section{margin-bottom:28px;page-break-inside:avoid;}")
	b.WriteString(fmt.Sprintf("table{width:100%%;border-collapse:collapse;margin-top:8px;font-size:11px;}th,td{border:1px solid %s;padding:4px;text-align:right;}th:first-child,td:first-child{text-align:left;}", pal.Grid))
	b.WriteString(".meta{font-size:11px;color:#8295ae;margin-bottom:16px;}svg{width:100%;height:auto;}")
	b.WriteString("</style></head><body>")
	b.WriteString(fmt.Sprintf("<h1>%s</h1>", template.HTMLEscapeString(payload.Title)))
	b.WriteString("<div class=\"meta\">")
	if payload.Section != "" {
		b.WriteString(template.HTMLEscapeString(payload.Section))
		b.WriteString(" &middot; ")
	}
	b.WriteString(fmt.Sprintf("dataset %s", template.HTMLEscapeString(payload.Dataset)))
	if len(payload.Checksum) >= 12 {
		b.WriteString(fmt.Sprintf(" (%s)", payload.Checksum[:12]))
	}
	if !payload.GeneratedAt.IsZero() {
		b.WriteString(" &middot; generated ")
		b.WriteString(payload.GeneratedAt.UTC().Format(time.RFC3339))
	}
	b.WriteString("</div>")

	for _, panel := range payload.Panels {
		b.WriteString(fmt.Sprintf("<section id=\"%s\"><h2>%s</h2>", template.HTMLEscapeString(panel.ID), template.HTMLEscapeString(panel.Title)))
		b.WriteString(string(panel.SVG))
		writeSpecTable(&b, panel.Spec)
		b.WriteString("</section>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

func writeSpecTable(b *strings.Builder, spec render.Spec) {
	if len(spec.Labels) == 0 {
		return
	}
	b.WriteString("<table><thead><tr><th></th>")
	for _, name := range spec.SeriesNames() {
		b.WriteString("<th>")
		b.WriteString(template.HTMLEscapeString(name))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for i, label := range spec.Labels {
		b.WriteString("<tr><td>")
		b.WriteString(template.HTMLEscapeString(label))
		b.WriteString("</td>")
		for _, s := range spec.Series {
			b.WriteString("<td>")
			if i < len(s.Values) {
				b.WriteString(render.FormatValue(s.Values[i]))
			} else {
				b.WriteString("n/a")
			}
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
}
