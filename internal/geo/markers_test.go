package geo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimsight/claimsight/internal/dataset"
	"github.com/claimsight/claimsight/internal/render"
)

func TestRadiusScalesLinearly(t *testing.T) {
	assert.Equal(t, MinRadius, Radius(10, 10, 110))
	assert.Equal(t, MaxRadius, Radius(110, 10, 110))
	assert.InDelta(t, 21.5, Radius(60, 10, 110), 1e-9)
	assert.Equal(t, MinRadius, Radius(5, 5, 5))
}

func TestBuildSkipsUnplaceableAndNonPositive(t *testing.T) {
	layer := Build([]dataset.RegionValue{
		{Region: "CA", Source: dataset.SourceHealthVerity, Value: 100},
		{Region: "CA", Source: dataset.SourceKomodo, Value: 50},
		{Region: "AE", Source: dataset.SourceHealthVerity, Value: 8},
		{Region: "ZZ", Source: dataset.SourceKomodo, Value: 20},
		{Region: "TX", Source: dataset.SourceKomodo, Value: 0},
	}, nil)

	require.Len(t, layer.Markers, 2)
	assert.Equal(t, 8.0, layer.Min)
	assert.Equal(t, 100.0, layer.Max)

	hv := layer.Markers[0]
	assert.Equal(t, dataset.SourceHealthVerity, hv.Source)
	assert.Equal(t, MaxRadius, hv.Radius)
	assert.InDelta(t, StateCoordinates["CA"].Lon-SourceOffset, hv.Position.Lon, 1e-9)
	assert.Equal(t, "#004567", hv.Fill)
	assert.True(t, hv.LightText)

	ko := layer.Markers[1]
	assert.InDelta(t, StateCoordinates["CA"].Lon+SourceOffset, ko.Position.Lon, 1e-9)
	assert.False(t, ko.LightText)
}

func TestBuildLegendFlagsMissingSource(t *testing.T) {
	layer := Build([]dataset.RegionValue{{Region: "NY", Source: dataset.SourceKomodo, Value: 1}}, nil)
	require.Len(t, layer.Legend, 3)
	for _, e := range layer.Legend {
		if e.Source == dataset.SourceKomodo {
			assert.True(t, e.HasData)
			continue
		}
		assert.False(t, e.HasData)
		assert.Contains(t, e.Label, "No Data Available")
	}
	assert.Equal(t, MinRadius, layer.Markers[0].Radius)
}

func TestDrawEmbeddedRegions(t *testing.T) {
	store, err := dataset.Embedded()
	require.NoError(t, err)

	layer := Build(store.Regions("geographic"), StateCoordinates)
	html, err := Draw("Geographic Distribution", layer, 960, 540, render.ThemeLight)
	require.NoError(t, err)
	out := string(html)
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Equal(t, len(layer.Markers), strings.Count(out, "class=\"marker\""))
	assert.NotContains(t, out, "data-region=\"AE\"")
	assert.Contains(t, out, "IQVIA - No Data Available")
	assert.Contains(t, out, "77.4k")
}

func TestDrawEmptyLayer(t *testing.T) {
	html, err := Draw("", Build(nil, nil), 0, 0, render.ThemeDark)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Data Sources")
}

func TestDrawerHonoursIsolation(t *testing.T) {
	spec := render.Spec{
		Kind:   render.KindBubbleMap,
		Labels: []string{"CA", "NY"},
		Series: []render.Series{
			{Name: "Komodo", Values: []dataset.Value{dataset.Num(5), dataset.Missing()}},
			{Name: "HealthVerity", Values: []dataset.Value{dataset.Num(7), dataset.Num(3)}},
		},
		Options: render.Options{Legend: render.Legend{Isolated: "Komodo"}},
	}
	html, err := Drawer{}.Draw(spec, render.Size{Width: 960, Height: 540})
	require.NoError(t, err)
	out := string(html)
	assert.Equal(t, 1, strings.Count(out, "class=\"marker\""))
	assert.Contains(t, out, "data-source=\"komodo\"")

	spec.Series = append(spec.Series, render.Series{Name: "Acme"})
	spec.Options.Legend.Isolated = ""
	_, err = Drawer{}.Draw(spec, render.Size{})
	assert.Error(t, err)
}
