package render

import (
	"math"

	"github.com/claimsight/claimsight/internal/dataset"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatNumber renders n with thousands separators, keeping up to two
// decimals for fractional values.
func FormatNumber(n float64) string {
	if n == math.Trunc(n) {
		return printer.Sprintf("%d", int64(n))
	}
	return printer.Sprintf("%.2f", n)
}

// FormatValue renders a cell, using "n/a" for missing values.
func FormatValue(v dataset.Value) string {
	if !v.Valid {
		return "n/a"
	}
	return FormatNumber(v.N)
}

// Compact abbreviates large counts as 12.3k style labels.
func Compact(n float64) string {
	if n > 999 {
		return printer.Sprintf("%.1fk", n/1000)
	}
	return FormatNumber(n)
}
