package services

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"leadlens/internal/charts"
	"leadlens/internal/config"
	"leadlens/internal/dataprocessing"
	"leadlens/internal/leads"
	"leadlens/pkg/contracts/domain"
)

// Numeric columns that get a distribution histogram
const maxDistributionCharts = 6

// Countries shown on the grouped role chart
const roleChartCountries = 15

// foldOthers keeps the first n entries of agg and sums the rest into one
// entry, so a pie never has more than n+1 slices
func foldOthers(agg *domain.Aggregate, n int, label string) *domain.Aggregate {
	if agg == nil || n <= 0 || len(agg.Entries) <= n {
		return agg
	}
	out := &domain.Aggregate{Column: agg.Column, Total: agg.Total}
	out.Entries = append(out.Entries, agg.Entries[:n]...)
	others := domain.ValueCount{Value: label}
	for _, e := range agg.Entries[n:] {
		others.Count += e.Count
		others.Percent += e.Percent
	}
	out.Entries = append(out.Entries, others)
	return out
}

func breakdownByColumn(r *leads.ActiveReport, column string) *domain.Aggregate {
	for _, b := range r.Breakdowns {
		if b.Column == column {
			return b.Aggregate
		}
	}
	return nil
}

func activeCharts(r *leads.ActiveReport, cfg config.ChartsConfig, othersLabel string) []charts.Chart {
	stages := breakdownByColumn(r, domain.ColumnLeadStage)
	return []charts.Chart{
		charts.FromAggregate(config.ChartActiveByCountry,
			fmt.Sprintf("Active Leads by Country (Top %d)", cfg.TopN),
			charts.KindHBar, breakdownByColumn(r, domain.ColumnCountry), cfg.TopN, true),
		charts.FromAggregate(config.ChartActiveByStage,
			"Active Leads Distribution by Stage",
			charts.KindPie, foldOthers(stages, cfg.PieSlices, othersLabel), 0, false),
		charts.FromAggregate(config.ChartActiveByStageBar,
			"Active Leads by Stage",
			charts.KindBar, stages, cfg.TopN, true),
		charts.FromAggregate(config.ChartActiveByIndustry,
			fmt.Sprintf("Active Leads by Industry (Top %d)", cfg.TopN),
			charts.KindHBar, breakdownByColumn(r, domain.ColumnIndustryVertical), cfg.TopN, true),
		charts.FromAggregate(config.ChartActiveByCompanySize,
			"Active Leads by Company Size",
			charts.KindBar, breakdownByColumn(r, domain.ColumnCompanySize), cfg.TopN, true),
	}
}

func bouncedCharts(r *leads.BouncedReport, cfg config.ChartsConfig, othersLabel string) []charts.Chart {
	return []charts.Chart{
		charts.FromAggregate(config.ChartBouncedByCountry,
			fmt.Sprintf("Email Bounced Records by Country (Top %d)", cfg.TopN),
			charts.KindHBar, r.ByCountry, cfg.TopN, true),
		charts.FromAggregate(config.ChartBouncedCountryPie,
			"Email Bounced Distribution by Country",
			charts.KindPie, foldOthers(r.ByCountry, cfg.PieSlices, othersLabel), 0, false),
		charts.FromAggregate(config.ChartBouncedActivityTypes,
			"Bounced Activity Types",
			charts.KindBar, r.ActivityTypes, cfg.TopN, true),
	}
}

func roleCharts(r *leads.RoleReport) []charts.Chart {
	totals := charts.Chart{
		Name:   config.ChartRoleTotals,
		Title:  "Leads per Role Category",
		XLabel: "Role Category",
		YLabel: "Count",
		Kind:   charts.KindBar,
	}
	for _, c := range r.Categories {
		totals.Labels = append(totals.Labels, c.Name)
		totals.Values = append(totals.Values, float64(c.Count))
		totals.Percents = append(totals.Percents, c.Percent)
	}

	byCountry := charts.Chart{
		Name:   config.ChartRolesByCountry,
		Title:  fmt.Sprintf("Role Categories by Country (Top %d)", roleChartCountries),
		XLabel: domain.ColumnCountry,
		YLabel: "Count",
		Kind:   charts.KindGroupedBar,
	}
	if r.Pivot != nil {
		rows := r.Pivot.Rows
		if len(rows) > roleChartCountries {
			rows = rows[:roleChartCountries]
		}
		for _, row := range rows {
			byCountry.Labels = append(byCountry.Labels, row.Key)
		}
		for _, label := range r.Pivot.Labels {
			s := charts.Series{Name: label, Values: make([]float64, len(rows))}
			for i, row := range rows {
				s.Values[i] = float64(row.Counts[label])
			}
			byCountry.Series = append(byCountry.Series, s)
		}
	}
	return []charts.Chart{totals, byCountry}
}

func profileCharts(t *domain.Table, p *domain.Profile) []charts.Chart {
	missing := charts.Chart{
		Name:   config.ChartMissingData,
		Title:  "Missing Data by Column",
		XLabel: "Column",
		YLabel: "Missing %",
		Kind:   charts.KindBar,
	}
	cols := append([]domain.MissingColumn(nil), p.Missing.Columns...)
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].Count > cols[j].Count })
	for _, c := range cols {
		if c.Count == 0 {
			break
		}
		missing.Labels = append(missing.Labels, c.Column)
		missing.Values = append(missing.Values, c.Percent)
	}

	set := []charts.Chart{missing}

	if p.Correlation != nil {
		set = append(set, charts.Chart{
			Name:   config.ChartCorrelation,
			Title:  "Correlation Matrix",
			Kind:   charts.KindHeatMap,
			Labels: p.Correlation.Columns,
			Matrix: p.Correlation.Values,
		})
	}

	numeric := dataprocessing.NumericColumns(t)
	if len(numeric) > maxDistributionCharts {
		numeric = numeric[:maxDistributionCharts]
	}
	for _, name := range numeric {
		values, _ := t.ColumnValues(name)
		c := charts.Chart{
			Name:   config.ChartDistributionPrefix + fileSafe(name) + ".png",
			Title:  "Distribution of " + name,
			XLabel: name,
			Kind:   charts.KindHistogram,
		}
		for _, v := range values {
			if f, ok := dataprocessing.ParseNumber(v); ok {
				c.Samples = append(c.Samples, f)
			}
		}
		set = append(set, c)
	}
	return set
}

// fileSafe keeps letters and digits and replaces everything else with '_'
func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, name)
}
