package dashboard

import (
	"github.com/claimsight/claimsight/internal/render"
)

// Section is a navigation tab of the dashboard.
type Section string

const (
	SectionPatientAnalysis   Section = "patient-analysis"
	SectionHCPHCOMetrics     Section = "hcp-hco-metrics"
	SectionDiagnosisAnalysis Section = "diagnosis-analysis"
	SectionDemographics      Section = "demographics"
	SectionTemporalTrends    Section = "temporal-trends"
)

// Sections lists the navigation in display order; the first is the default.
var Sections = []Section{
	SectionPatientAnalysis,
	SectionHCPHCOMetrics,
	SectionDiagnosisAnalysis,
	SectionDemographics,
	SectionTemporalTrends,
}

// Valid reports whether s is part of the navigation.
func (s Section) Valid() bool {
	for _, known := range Sections {
		if s == known {
			return true
		}
	}
	return false
}

// Title is the navigation caption.
func (s Section) Title() string {
	switch s {
	case SectionPatientAnalysis:
		return "Patient Analysis"
	case SectionHCPHCOMetrics:
		return "HCP / HCO Metrics"
	case SectionDiagnosisAnalysis:
		return "Diagnosis Analysis"
	case SectionDemographics:
		return "Demographics"
	case SectionTemporalTrends:
		return "Temporal Trends"
	}
	return string(s)
}

// Shape says how a widget reads its domain from the store.
type Shape string

const (
	// ShapeTrend reads yoy/mom series and supports the mode toggle.
	ShapeTrend Shape = "trend"
	// ShapeBreakdown reads one categorical variant per source.
	ShapeBreakdown Shape = "breakdown"
	// ShapeTotals transposes a single-label breakdown into one slice per
	// source.
	ShapeTotals Shape = "totals"
	// ShapeRegions reads per-region counts for the bubble map.
	ShapeRegions Shape = "regions"
)

// Widget is one chart card.
type Widget struct {
	ID      string      `json:"id"`
	Section Section     `json:"section"`
	Domain  string      `json:"domain"`
	Kind    render.Kind `json:"kind"`
	Shape   Shape       `json:"shape"`
}

// Mount is the render mount point for the widget.
func (w Widget) Mount() string { return w.ID + "-chart" }

// Catalog is an ordered widget list.
type Catalog []Widget

// DefaultCatalog returns the dashboard cards in page order.
func DefaultCatalog() Catalog {
	return Catalog{
		{ID: "patient-volume", Section: SectionPatientAnalysis, Domain: "patient_volume", Kind: render.KindDoughnut, Shape: ShapeTotals},
		{ID: "claim-types", Section: SectionPatientAnalysis, Domain: "claim_types", Kind: render.KindBar, Shape: ShapeBreakdown},
		{ID: "distribution", Section: SectionPatientAnalysis, Domain: "distribution", Kind: render.KindBar, Shape: ShapeBreakdown},
		{ID: "new-patients", Section: SectionPatientAnalysis, Domain: "new_patients", Kind: render.KindLine, Shape: ShapeTrend},
		{ID: "prevalence", Section: SectionPatientAnalysis, Domain: "prevalence", Kind: render.KindLine, Shape: ShapeTrend},
		{ID: "top-products", Section: SectionPatientAnalysis, Domain: "top_products", Kind: render.KindBar, Shape: ShapeBreakdown},

		{ID: "hcp-fill-rate", Section: SectionHCPHCOMetrics, Domain: "hcp_fill_rate", Kind: render.KindBar, Shape: ShapeBreakdown},
		{ID: "hco-fill-rate", Section: SectionHCPHCOMetrics, Domain: "hco_fill_rate", Kind: render.KindBar, Shape: ShapeBreakdown},
		{ID: "specialties", Section: SectionHCPHCOMetrics, Domain: "specialties", Kind: render.KindBar, Shape: ShapeBreakdown},

		{ID: "diagnosis-codes", Section: SectionDiagnosisAnalysis, Domain: "diagnosis_codes", Kind: render.KindBar, Shape: ShapeBreakdown},
		{ID: "procedure-codes", Section: SectionDiagnosisAnalysis, Domain: "procedure_codes", Kind: render.KindBar, Shape: ShapeBreakdown},
		{ID: "payer-split", Section: SectionDiagnosisAnalysis, Domain: "payer_split", Kind: render.KindBar, Shape: ShapeBreakdown},
		{ID: "claims-status", Section: SectionDiagnosisAnalysis, Domain: "claims_status", Kind: render.KindBar, Shape: ShapeBreakdown},

		{ID: "geographic", Section: SectionDemographics, Domain: "geographic", Kind: render.KindBubbleMap, Shape: ShapeRegions},

		{ID: "yearly-trends", Section: SectionTemporalTrends, Domain: "yearly_trends", Kind: render.KindLine, Shape: ShapeTrend},
	}
}

// Lookup finds a widget by id.
func (c Catalog) Lookup(id string) (Widget, bool) {
	for _, w := range c {
		if w.ID == id {
			return w, true
		}
	}
	return Widget{}, false
}

// Section returns the widgets shown under s, in page order.
func (c Catalog) Section(s Section) []Widget {
	var out []Widget
	for _, w := range c {
		if w.Section == s {
			out = append(out, w)
		}
	}
	return out
}

// IDs lists every widget id in page order.
func (c Catalog) IDs() []string {
	out := make([]string, len(c))
	for i, w := range c {
		out[i] = w.ID
	}
	return out
}
