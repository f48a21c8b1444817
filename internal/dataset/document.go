package dataset

// Document is the serialised form of a dataset snapshot. It is only an input
// to New; callers read through Store.
type Document struct {
	Name       string                 `json:"name"`
	Trends     map[string]TrendDoc    `json:"trends"`
	Breakdowns map[string]BreakdownDoc `json:"breakdowns"`
	Regions    map[string]RegionDoc   `json:"regions"`
}

// TrendDoc holds a time series domain in either or both modes.
type TrendDoc struct {
	Title string               `json:"title"`
	Axis  string               `json:"axis"`
	YoY   *PeriodDoc           `json:"yoy,omitempty"`
	MoM   map[string]PeriodDoc `json:"mom,omitempty"`
}

// PeriodDoc is one label axis with per-source cells.
type PeriodDoc struct {
	Labels  []string           `json:"labels"`
	Sources map[Source][]Value `json:"sources"`
}

// BreakdownDoc holds a categorical domain. The first variant is the default.
type BreakdownDoc struct {
	Title    string       `json:"title"`
	Axis     string       `json:"axis"`
	Variants []VariantDoc `json:"variants"`
}

// VariantDoc is a named label axis within a breakdown.
type VariantDoc struct {
	Name    string             `json:"name"`
	Labels  []string           `json:"labels"`
	Sources map[Source][]Value `json:"sources"`
}

// RegionDoc maps region codes to per-source counts.
type RegionDoc struct {
	Title   string                        `json:"title"`
	Sources map[Source]map[string]float64 `json:"sources"`
}
