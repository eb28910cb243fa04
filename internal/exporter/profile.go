package exporter

import (
	"math"

	"leadlens/pkg/contracts/domain"
)

// ProfileSheets lays out a table profile the way the analysis summary
// workbook presents it: the data itself, describe-style statistics with one
// column per numeric field, categorical frequencies, missing counts and the
// correlation matrix when there is one
func ProfileSheets(t *domain.Table, p *domain.Profile) []Sheet {
	sheets := []Sheet{TableSheet("Original Data", t)}

	if len(p.Numeric) > 0 {
		stats := Sheet{Name: "Statistical Summary", Headers: []string{"Statistic"}}
		for _, n := range p.Numeric {
			stats.Headers = append(stats.Headers, n.Column)
		}
		rows := []struct {
			label string
			value func(domain.NumericSummary) float64
		}{
			{"count", func(n domain.NumericSummary) float64 { return float64(n.Count) }},
			{"mean", func(n domain.NumericSummary) float64 { return n.Mean }},
			{"std", func(n domain.NumericSummary) float64 { return n.Std }},
			{"min", func(n domain.NumericSummary) float64 { return n.Min }},
			{"25%", func(n domain.NumericSummary) float64 { return n.Q25 }},
			{"50%", func(n domain.NumericSummary) float64 { return n.Median }},
			{"75%", func(n domain.NumericSummary) float64 { return n.Q75 }},
			{"max", func(n domain.NumericSummary) float64 { return n.Max }},
		}
		for _, r := range rows {
			out := []interface{}{r.label}
			for _, n := range p.Numeric {
				out = append(out, r.value(n))
			}
			stats.Rows = append(stats.Rows, out)
		}
		sheets = append(sheets, stats)
	}

	if len(p.Categorical) > 0 {
		cat := Sheet{Name: "Categorical Summary", Headers: []string{"Column", "Count", "Unique Values", "Most Frequent", "Frequency"}}
		for _, c := range p.Categorical {
			cat.Rows = append(cat.Rows, []interface{}{c.Column, c.Count, c.Unique, c.Top, c.Freq})
		}
		sheets = append(sheets, cat)
	}

	missing := Sheet{Name: "Missing Data", Headers: []string{"Column", "Missing Count", "Percentage"}}
	for _, m := range p.Missing.Columns {
		missing.Rows = append(missing.Rows, []interface{}{m.Column, m.Count, RoundPercent(m.Percent)})
	}
	sheets = append(sheets, missing)

	if p.Correlation != nil {
		corr := Sheet{Name: "Correlation Matrix", Headers: append([]string{""}, p.Correlation.Columns...)}
		for i, name := range p.Correlation.Columns {
			out := []interface{}{name}
			for _, v := range p.Correlation.Values[i] {
				if math.IsNaN(v) {
					out = append(out, "")
					continue
				}
				out = append(out, v)
			}
			corr.Rows = append(corr.Rows, out)
		}
		sheets = append(sheets, corr)
	}

	return sheets
}
