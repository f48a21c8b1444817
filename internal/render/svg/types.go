package svg

// Defaults for dashboard charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 320
	DefaultPadding = 48.0
	DefaultTicks   = 5
	LegendHeight   = 22.0
)

// Colors carries the theme dependent decoration colours.
type Colors struct {
	Title      string
	Axis       string
	Grid       string
	Background string
}

// LineOpts customises the multi-series line renderer.
type LineOpts struct {
	Title       string
	Description string
	XLabel      string
	YLabel      string
	Colors      Colors
	Padding     float64
	TickCount   int
	ShowDots    bool
	Fill        bool
	Hidden      map[string]bool
}

// BarOpts customises the grouped bar renderer.
type BarOpts struct {
	Title       string
	Description string
	XLabel      string
	YLabel      string
	Colors      Colors
	Padding     float64
	TickCount   int
	Hidden      map[string]bool
}

// PieOpts customises the pie and doughnut renderer. Hole is the inner radius
// as a fraction of the outer one; zero draws a pie.
type PieOpts struct {
	Title       string
	Description string
	Colors      Colors
	Hole        float64
	Hidden      map[string]bool
}

// Point is a single cell; OK is false for missing data.
type Point struct {
	V  float64
	OK bool
}

// Series is one named sequence aligned with the chart labels.
type Series struct {
	Name   string
	Color  string
	Points []Point
}
