package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/claimsight/claimsight/internal/dataset"
	"github.com/claimsight/claimsight/internal/render"
)

// WriteSpecCSV writes one row per label and one column per series. Missing
// cells are left blank so they stay distinct from zero.
func WriteSpecCSV(w io.Writer, spec render.Spec) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := append([]string{"Label"}, spec.SeriesNames()...)
	if err := writer.Write(header); err != nil {
		return err
	}
	for i, label := range spec.Labels {
		record := make([]string, 0, len(spec.Series)+1)
		record = append(record, label)
		for _, s := range spec.Series {
			var cell dataset.Value
			if i < len(s.Values) {
				cell = s.Values[i]
			}
			record = append(record, formatCell(cell))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatCell(v dataset.Value) string {
	if !v.Valid {
		return ""
	}
	return formatFloat(v.N)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
