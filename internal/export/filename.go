package export

import "fmt"

// Filename is the download name for a widget export, e.g.
// claimsight-new-patients-chart.png.
func Filename(widget, ext string) string {
	return fmt.Sprintf("claimsight-%s-chart.%s", widget, ext)
}
