package geo

import (
	"math"
	"sort"

	"github.com/claimsight/claimsight/internal/dataset"
	"github.com/claimsight/claimsight/internal/render"
)

// Marker sizing and placement.
const (
	MinRadius    = 8.0
	MaxRadius    = 35.0
	SourceOffset = 0.4
)

var (
	healthVerityRamp = []string{"#99b3bf", "#7a9aa8", "#5c8191", "#3e697a", "#255063", "#1b4a60", "#12455c", "#0a4058", "#053b53", "#004567"}
	komodoRamp       = []string{"#fff4e6", "#ffe0b3", "#ffcc80", "#ffb84d", "#ffa31a", "#e68a00", "#cc7a00", "#b36b00", "#995c00", "#804d00"}
)

// Marker is one proportionally sized bubble.
type Marker struct {
	Region    string         `json:"region"`
	Name      string         `json:"name"`
	Source    dataset.Source `json:"source"`
	Value     float64        `json:"value"`
	Position  Coord          `json:"position"`
	Radius    float64        `json:"radius"`
	Intensity float64        `json:"intensity"`
	Fill      string         `json:"fill"`
	Label     string         `json:"label"`
	LightText bool           `json:"lightText"`
}

// LegendEntry describes one vendor in the static map legend.
type LegendEntry struct {
	Source  dataset.Source `json:"source"`
	Label   string         `json:"label"`
	Swatch  string         `json:"swatch"`
	HasData bool           `json:"hasData"`
}

// Layer is the full marker set plus legend for a region domain.
type Layer struct {
	Markers []Marker      `json:"markers"`
	Legend  []LegendEntry `json:"legend"`
	Min     float64       `json:"min"`
	Max     float64       `json:"max"`
}

// Build sizes markers against the min and max positive count across every
// source. Non-positive values and regions without a usable coordinate are
// skipped.
func Build(values []dataset.RegionValue, coords map[string]Coord) Layer {
	if coords == nil {
		coords = StateCoordinates
	}
	var layer Layer
	first := true
	perSource := map[dataset.Source]int{}
	for _, v := range values {
		if v.Value <= 0 {
			continue
		}
		if first {
			layer.Min, layer.Max = v.Value, v.Value
			first = false
		}
		layer.Min = math.Min(layer.Min, v.Value)
		layer.Max = math.Max(layer.Max, v.Value)
	}

	for _, v := range values {
		if v.Value <= 0 {
			continue
		}
		c, ok := coords[v.Region]
		if !ok || c.Zero() {
			continue
		}
		intensity := 0.0
		if layer.Max > layer.Min {
			intensity = (v.Value - layer.Min) / (layer.Max - layer.Min)
		}
		layer.Markers = append(layer.Markers, Marker{
			Region:    v.Region,
			Name:      Name(v.Region),
			Source:    v.Source,
			Value:     v.Value,
			Position:  Coord{Lat: c.Lat, Lon: c.Lon + offset(v.Source)},
			Radius:    Radius(v.Value, layer.Min, layer.Max),
			Intensity: intensity,
			Fill:      rampColor(v.Source, intensity),
			Label:     render.Compact(v.Value),
			LightText: v.Value > layer.Max*0.5,
		})
		perSource[v.Source]++
	}
	sort.SliceStable(layer.Markers, func(i, j int) bool {
		return layer.Markers[i].Radius > layer.Markers[j].Radius
	})

	for _, src := range dataset.DisplayOrder {
		entry := LegendEntry{Source: src, Label: src.Label(), Swatch: legendSwatch(src), HasData: perSource[src] > 0}
		if !entry.HasData {
			entry.Label += " - No Data Available"
		}
		layer.Legend = append(layer.Legend, entry)
	}
	return layer
}

// Radius scales v linearly between MinRadius and MaxRadius. When every value
// is equal the minimum radius is used.
func Radius(v, minV, maxV float64) float64 {
	if maxV <= minV {
		return MinRadius
	}
	r := MinRadius + (v-minV)/(maxV-minV)*(MaxRadius-MinRadius)
	return math.Max(MinRadius, math.Min(MaxRadius, r))
}

func offset(src dataset.Source) float64 {
	switch src {
	case dataset.SourceHealthVerity:
		return -SourceOffset
	case dataset.SourceKomodo:
		return SourceOffset
	}
	return 0
}

func rampColor(src dataset.Source, intensity float64) string {
	var ramp []string
	switch src {
	case dataset.SourceHealthVerity:
		ramp = healthVerityRamp
	case dataset.SourceKomodo:
		ramp = komodoRamp
	default:
		return render.SourceColor(src)
	}
	idx := int(math.Floor(intensity * float64(len(ramp)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(ramp) {
		idx = len(ramp) - 1
	}
	return ramp[idx]
}

func legendSwatch(src dataset.Source) string {
	switch src {
	case dataset.SourceHealthVerity:
		return render.AteneoBlue
	case dataset.SourceKomodo:
		return "#e68a00"
	}
	return "#c0ddfa"
}
