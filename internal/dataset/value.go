package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Source identifies one of the claims data vendors.
type Source string

const (
	SourceIQVIA        Source = "iqvia"
	SourceHealthVerity Source = "healthverity"
	SourceKomodo       Source = "komodo"
)

// DisplayOrder is the order sources are drawn in charts and legends.
var DisplayOrder = []Source{SourceKomodo, SourceHealthVerity, SourceIQVIA}

// Valid reports whether s is a known vendor.
func (s Source) Valid() bool {
	switch s {
	case SourceIQVIA, SourceHealthVerity, SourceKomodo:
		return true
	}
	return false
}

// Label returns the vendor display name.
func (s Source) Label() string {
	switch s {
	case SourceIQVIA:
		return "IQVIA"
	case SourceHealthVerity:
		return "HealthVerity"
	case SourceKomodo:
		return "Komodo"
	}
	return string(s)
}

// ParseSource accepts either the key or the display label of a vendor.
func ParseSource(raw string) (Source, bool) {
	for _, src := range DisplayOrder {
		if raw == string(src) || raw == src.Label() {
			return src, true
		}
	}
	return "", false
}

// Mode selects the period granularity of a trend.
type Mode string

const (
	ModeYoY Mode = "yoy"
	ModeMoM Mode = "mom"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeYoY || m == ModeMoM
}

// Value is a single cell. Valid is false when the vendor supplied nothing
// for the period, which is distinct from a reported zero.
type Value struct {
	N     float64
	Valid bool
}

// Num returns a present value.
func Num(n float64) Value { return Value{N: n, Valid: true} }

// Missing returns an absent value.
func Missing() Value { return Value{} }

// Float returns the numeric value, substituting zero when missing.
func (v Value) Float() float64 {
	if !v.Valid {
		return 0
	}
	return v.N
}

// MarshalJSON encodes missing cells as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.N)
}

// UnmarshalJSON accepts a number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Value{}
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("dataset: decode value: %w", err)
	}
	*v = Num(n)
	return nil
}

// Series is an ordered pair of labels and cells of equal length.
type Series struct {
	Labels []string `json:"labels"`
	Values []Value  `json:"values"`
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Labels) }

// Empty reports whether the series carries no points.
func (s Series) Empty() bool { return len(s.Labels) == 0 }

// Floats returns the values with missing cells zero-filled.
func (s Series) Floats() []float64 {
	out := make([]float64, len(s.Values))
	for i, v := range s.Values {
		out[i] = v.Float()
	}
	return out
}

// MissingCount returns how many cells are absent.
func (s Series) MissingCount() int {
	n := 0
	for _, v := range s.Values {
		if !v.Valid {
			n++
		}
	}
	return n
}

func missingSeries(labels []string) Series {
	return Series{Labels: cloneStrings(labels), Values: make([]Value, len(labels))}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneValues(in []Value) []Value {
	out := make([]Value, len(in))
	copy(out, in)
	return out
}
