package exporter

import (
	"fmt"
)

// formatFloat formats a monetary value with exactly 2 decimal places,
// so 13.4 exports as 13.40 consistently.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an integer value for CSV output
func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}

// formatPercent formats a share with one decimal place
func formatPercent(f float64) string {
	return fmt.Sprintf("%.1f", f)
}
