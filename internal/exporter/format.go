package exporter

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// RoundPercent rounds a percentage to two decimal places
func RoundPercent(p float64) float64 {
	return math.Round(p*100) / 100
}

// FormatPercent renders a percentage with exactly 2 decimal places, e.g. 13.40%
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// FormatCount renders an integer with thousands separators, e.g. 12,345
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// formatFloat formats a statistic with exactly 2 decimal places; NaN is blank
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return fmt.Sprintf("%.2f", f)
}
