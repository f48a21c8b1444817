package render

import (
	"github.com/claimsight/claimsight/internal/dataset"
)

// Kind is the chart type requested from a drawer.
type Kind string

const (
	KindLine     Kind = "line"
	KindBar      Kind = "bar"
	KindDoughnut Kind = "doughnut"
	KindPie      Kind = "pie"
)

// KindBubbleMap places one series per source on region markers; labels are
// region codes.
const KindBubbleMap Kind = "bubble-map"

// Circular reports whether the kind draws one slice per label.
func (k Kind) Circular() bool {
	return k == KindDoughnut || k == KindPie
}

// Series is one named line, bar group or slice set.
type Series struct {
	Name   string          `json:"name"`
	Values []dataset.Value `json:"values"`
	Color  string          `json:"color"`
}

// Legend controls legend placement and single-item isolation. Isolated names
// a series (or, for circular charts, a label) that is the only one drawn.
type Legend struct {
	Show     bool   `json:"show"`
	Position string `json:"position,omitempty"`
	Isolated string `json:"isolated,omitempty"`
}

// Options carries chart decoration.
type Options struct {
	Title  string `json:"title"`
	XAxis  string `json:"xAxis,omitempty"`
	YAxis  string `json:"yAxis,omitempty"`
	Legend Legend `json:"legend"`
}

// Spec is everything a drawer needs to produce one chart.
type Spec struct {
	Kind    Kind     `json:"kind"`
	Labels  []string `json:"labels"`
	Series  []Series `json:"series"`
	Options Options  `json:"options"`
	Theme   Theme    `json:"theme"`
}

// Visible reports whether the series named name is drawn under the current
// isolation.
func (s Spec) Visible(name string) bool {
	iso := s.Options.Legend.Isolated
	return iso == "" || iso == name
}

// SeriesNames lists series names in draw order.
func (s Spec) SeriesNames() []string {
	out := make([]string, len(s.Series))
	for i, ser := range s.Series {
		out[i] = ser.Name
	}
	return out
}

// Size is the pixel box of a mount point.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultSize matches the dashboard card proportions.
var DefaultSize = Size{Width: 720, Height: 320}

func (s Size) orDefault() Size {
	if s.Width <= 0 {
		s.Width = DefaultSize.Width
	}
	if s.Height <= 0 {
		s.Height = DefaultSize.Height
	}
	return s
}
