package svg

import (
	"strings"
	"testing"

	"github.com/claimsight/claimsight/internal/dataset"
	"github.com/claimsight/claimsight/internal/render"
)

func pts(vs ...float64) []Point {
	out := make([]Point, len(vs))
	for i, v := range vs {
		out[i] = Point{V: v, OK: true}
	}
	return out
}

func TestLineProducesSVG(t *testing.T) {
	html, err := Line(400, 240, []string{"2021", "2022", "2023"}, []Series{
		{Name: "Komodo", Color: render.Bronze, Points: pts(100, 200, 150)},
		{Name: "IQVIA", Color: render.PaleCerulean, Points: pts(50, 60, 70)},
	}, LineOpts{Title: "New Patients", ShowDots: true})
	if err != nil {
		t.Fatalf("line renderer error: %v", err)
	}
	output := string(html)
	if !strings.HasPrefix(output, "<svg") {
		t.Fatalf("expected svg output, got %s", output)
	}
	if strings.Count(output, "data-series=\"Komodo\"") < 2 {
		t.Fatalf("expected komodo path and legend entry")
	}
	if !strings.Contains(output, "aria-labelledby") {
		t.Fatalf("expected accessibility attributes")
	}
}

func TestLineBreaksOnMissingPoints(t *testing.T) {
	points := []Point{{V: 1, OK: true}, {V: 2, OK: true}, {}, {V: 4, OK: true}, {V: 5, OK: true}}
	html, err := Line(400, 240, []string{"a", "b", "c", "d", "e"}, []Series{{Name: "s", Points: points}}, LineOpts{})
	if err != nil {
		t.Fatalf("line renderer error: %v", err)
	}
	if got := strings.Count(string(html), "stroke-linejoin"); got != 2 {
		t.Fatalf("expected two line segments, got %d", got)
	}
}

func TestLineRejectsMisalignedSeries(t *testing.T) {
	if _, err := Line(400, 240, []string{"a"}, []Series{{Name: "s", Points: pts(1, 2)}}, LineOpts{}); err == nil {
		t.Fatalf("expected length error")
	}
}

func TestBarsHidesIsolatedSeries(t *testing.T) {
	html, err := Bars(420, 260, []string{"Female", "Male"}, []Series{
		{Name: "Komodo", Color: render.Bronze, Points: pts(5, 6)},
		{Name: "IQVIA", Color: render.PaleCerulean, Points: []Point{{V: 3, OK: true}, {}}},
	}, BarOpts{Title: "Gender", Hidden: map[string]bool{"IQVIA": true}})
	if err != nil {
		t.Fatalf("bars renderer error: %v", err)
	}
	output := string(html)
	if got := strings.Count(output, "<rect x="); got != 2+2 {
		t.Fatalf("expected 2 bars plus 2 legend swatches, got %d", got)
	}
	if !strings.Contains(output, "line-through") {
		t.Fatalf("expected hidden legend entry")
	}
}

func TestPieDrawsSlicesAndHole(t *testing.T) {
	html, err := Pie(360, 320, []string{"Komodo", "HealthVerity", "IQVIA"}, pts(966185, 908031, 595839), []string{render.Bronze, render.AteneoBlue, render.PaleCerulean}, PieOpts{Title: "Volume", Hole: 0.5})
	if err != nil {
		t.Fatalf("pie renderer error: %v", err)
	}
	output := string(html)
	if got := strings.Count(output, "<path d=\"M"); got != 3 {
		t.Fatalf("expected 3 slices, got %d", got)
	}
	if !strings.Contains(output, "966,185") {
		t.Fatalf("expected formatted tooltip")
	}
	if !strings.Contains(output, "aria-hidden=\"true\"></circle>") {
		t.Fatalf("expected doughnut hole")
	}
}

func TestPieSingleVisibleSliceIsCircle(t *testing.T) {
	html, err := Pie(360, 320, []string{"a", "b"}, pts(1, 2), nil, PieOpts{Hidden: map[string]bool{"a": true}})
	if err != nil {
		t.Fatalf("pie renderer error: %v", err)
	}
	if !strings.Contains(string(html), "data-series=\"b\"><title>") {
		t.Fatalf("expected full circle for the only visible slice")
	}
}

func TestDrawerDispatchesOnKind(t *testing.T) {
	d := NewDrawer()
	spec := render.Spec{
		Kind:   render.KindDoughnut,
		Labels: []string{"Komodo", "IQVIA"},
		Series: []render.Series{{Name: "Patients", Values: []dataset.Value{dataset.Num(2), dataset.Num(1)}}},
		Theme:  render.ThemeDark,
		Options: render.Options{
			Title:  "Patient Volume Distribution",
			Legend: render.Legend{Show: true, Isolated: "IQVIA"},
		},
	}
	html, err := d.Draw(spec, render.Size{Width: 400, Height: 300})
	if err != nil {
		t.Fatalf("draw error: %v", err)
	}
	output := string(html)
	if !strings.Contains(output, "#e8eaed") {
		t.Fatalf("expected dark title colour")
	}
	if !strings.Contains(output, "fill=\""+render.PaleCerulean+"\" stroke") {
		t.Fatalf("expected IQVIA source colour on slice")
	}

	if _, err := d.Draw(render.Spec{Kind: "radar"}, render.Size{}); err == nil {
		t.Fatalf("expected unsupported kind error")
	}
}
