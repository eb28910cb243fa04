package leads

import (
	"context"
	"fmt"
	"log/slog"

	"leadlens/internal/dataprocessing"
	"leadlens/internal/errors"
	"leadlens/pkg/contracts/domain"
)

// Breakdown is a value count of the subset over one column
type Breakdown struct {
	Label     string            `json:"label"`
	Column    string            `json:"column"`
	Aggregate *domain.Aggregate `json:"aggregate"`
}

// ActiveReport is the outcome of the active-lead analysis
type ActiveReport struct {
	Total         int               `json:"total"`
	Active        int               `json:"active"`
	Inactive      int               `json:"inactive"`
	ActivePercent float64           `json:"active_percent"`
	Stages        *domain.Aggregate `json:"stages"`
	Breakdowns    []Breakdown       `json:"breakdowns"`
	Skipped       []string          `json:"skipped,omitempty"`
	Metrics       []Metric          `json:"metrics"`
	Table         *domain.Table     `json:"-"`
}

// Breakdown returns the breakdown with the given label
func (r *ActiveReport) Breakdown(label string) (*domain.Aggregate, bool) {
	for _, b := range r.Breakdowns {
		if b.Label == label {
			return b.Aggregate, true
		}
	}
	return nil, false
}

// Active keeps the rows whose Lead Stage is not an inactive stage and breaks
// them down by the configured columns. A missing Lead Stage column is a
// COLUMN error; a missing breakdown column only skips that breakdown.
func (a *Analyst) Active(ctx context.Context, t *domain.Table) (*ActiveReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pred, err := dataprocessing.NotInSet(t, domain.ColumnLeadStage, a.rules.InactiveStages)
	if err != nil {
		return nil, err
	}
	active, inactive := dataprocessing.Partition(t, pred)

	stages, err := a.summarizer.ValueCounts(t, domain.ColumnLeadStage, dataprocessing.CountOptions{})
	if err != nil {
		return nil, err
	}

	report := &ActiveReport{
		Total:    t.Len(),
		Active:   active.Len(),
		Inactive: inactive.Len(),
		Stages:   stages,
		Table:    active,
	}
	if report.Total > 0 {
		report.ActivePercent = float64(report.Active) * 100 / float64(report.Total)
	}

	for _, b := range a.rules.Breakdowns {
		agg, err := a.summarizer.ValueCounts(active, b.Column, dataprocessing.CountOptions{})
		if errors.IsColumnMissing(err) {
			a.logger.WarnContext(ctx, "breakdown skipped, column not found",
				slog.String("column", b.Column))
			report.Skipped = append(report.Skipped, b.Column)
			continue
		}
		if err != nil {
			return nil, err
		}
		report.Breakdowns = append(report.Breakdowns, Breakdown{Label: b.Label, Column: b.Column, Aggregate: agg})
	}

	report.Metrics = a.activeMetrics(active, report)

	a.logger.InfoContext(ctx, "active leads analyzed",
		slog.Int("total", report.Total),
		slog.Int("active", report.Active),
		slog.Int("breakdowns", len(report.Breakdowns)),
		slog.Int("skipped", len(report.Skipped)))

	return report, nil
}

func (a *Analyst) activeMetrics(active *domain.Table, r *ActiveReport) []Metric {
	metrics := []Metric{
		{Name: "Total Records", Value: r.Total},
		{Name: "Total Active Leads", Value: r.Active},
		{Name: "Inactive Leads", Value: r.Inactive},
		{Name: "Active % of Total Dataset", Value: fmt.Sprintf("%.2f%%", r.ActivePercent)},
	}

	uniques := []struct{ name, column string }{
		{"Countries Represented", domain.ColumnCountry},
		{"Industries Represented", domain.ColumnIndustryVertical},
		{"Lead Sources", domain.ColumnLeadSource},
	}
	for _, u := range uniques {
		n, _ := dataprocessing.CountUnique(active, u.column)
		metrics = append(metrics, Metric{Name: u.name, Value: n})
	}

	present := []struct{ name, column string }{
		{"Leads with Email", domain.ColumnEmail},
		{"Leads with Phone", domain.ColumnPhone},
	}
	for _, p := range present {
		n, err := dataprocessing.CountPresent(active, p.column)
		if err != nil {
			continue
		}
		metrics = append(metrics, Metric{Name: p.name, Value: n})
	}
	return metrics
}
