package render

import (
	"github.com/claimsight/claimsight/internal/dataset"
)

// Theme is the dashboard colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Brand colours.
const (
	Bronze       = "#c98b27"
	AteneoBlue   = "#004567"
	PaleCerulean = "#9bc0e2"
	WeldonBlue   = "#8295ae"
)

// Palette holds theme dependent chart decoration colours.
type Palette struct {
	Title      string
	Tick       string
	Grid       string
	Background string
	Border     string
}

var palettes = map[Theme]Palette{
	ThemeLight: {Title: AteneoBlue, Tick: WeldonBlue, Grid: "#e2e8f0", Background: "#ffffff", Border: "#ffffff"},
	ThemeDark:  {Title: "#e8eaed", Tick: PaleCerulean, Grid: "#3c4043", Background: "#202124", Border: "#202124"},
}

// PaletteFor returns the palette for t, defaulting to light.
func PaletteFor(t Theme) Palette {
	if p, ok := palettes[t]; ok {
		return p
	}
	return palettes[ThemeLight]
}

// SourceColor returns the fixed vendor colour.
func SourceColor(src dataset.Source) string {
	switch src {
	case dataset.SourceIQVIA:
		return PaleCerulean
	case dataset.SourceHealthVerity:
		return AteneoBlue
	case dataset.SourceKomodo:
		return Bronze
	}
	return WeldonBlue
}

// SliceColors cycles brand colours for circular charts.
func SliceColors(n int) []string {
	base := []string{Bronze, AteneoBlue, PaleCerulean, WeldonBlue, "#5f7d95", "#e3b964"}
	out := make([]string, n)
	for i := range out {
		out[i] = base[i%len(base)]
	}
	return out
}
