package leads

import (
	"context"
	"log/slog"

	"leadlens/internal/dataprocessing"
	"leadlens/internal/errors"
	"leadlens/pkg/contracts/domain"
)

// Countries listed per category by CountryRows
const roleCountryLimit = 20

// RoleCategoryResult is one role category and the leads that fall into it
type RoleCategoryResult struct {
	Name      string            `json:"name"`
	Keywords  []string          `json:"keywords"`
	Count     int               `json:"count"`
	Percent   float64           `json:"percent"`
	ByCountry *domain.Aggregate `json:"by_country,omitempty"`
	Table     *domain.Table     `json:"-"`
}

// RoleReport is the outcome of the role category analysis
type RoleReport struct {
	Total      int                  `json:"total"`
	Categories []RoleCategoryResult `json:"categories"`
	Pivot      *domain.Pivot        `json:"pivot"`
	// TotalRow counts every categorized row, not only the pivot's top countries
	TotalRow domain.PivotRow `json:"total_row"`
}

// Category returns the result for the named category
func (r *RoleReport) Category(name string) (RoleCategoryResult, bool) {
	for _, c := range r.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return RoleCategoryResult{}, false
}

// RoleCountry is one row of the long-form category by country listing
type RoleCountry struct {
	Category string  `json:"category"`
	Country  string  `json:"country"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

// CountryRows lists the top countries of every category, percentages
// relative to the category size
func (r *RoleReport) CountryRows() []RoleCountry {
	var rows []RoleCountry
	for _, c := range r.Categories {
		if c.ByCountry == nil {
			continue
		}
		for _, e := range c.ByCountry.Head(roleCountryLimit).Entries {
			rows = append(rows, RoleCountry{Category: c.Name, Country: e.Value, Count: e.Count, Percent: e.Percent})
		}
	}
	return rows
}

// Roles assigns rows to every configured category whose keywords appear in
// Role. A row can belong to several categories.
func (a *Analyst) Roles(ctx context.Context, t *domain.Table) (*RoleReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !t.HasColumn(domain.ColumnRole) {
		return nil, errors.NewColumnMissingError(domain.ColumnRole)
	}

	report := &RoleReport{
		Total:    t.Len(),
		TotalRow: domain.PivotRow{Key: "TOTAL", Counts: make(map[string]int)},
	}
	subsets := make([]dataprocessing.LabeledTable, 0, len(a.rules.RoleCategories))

	for _, cat := range a.rules.RoleCategories {
		pred, err := dataprocessing.AnyContainsFold(t, domain.ColumnRole, cat.Keywords)
		if err != nil {
			return nil, err
		}
		matched := dataprocessing.Filter(t, pred)

		result := RoleCategoryResult{
			Name:     cat.Name,
			Keywords: cat.Keywords,
			Count:    matched.Len(),
			Table:    matched,
		}
		if report.Total > 0 {
			result.Percent = float64(result.Count) * 100 / float64(report.Total)
		}

		result.ByCountry, err = a.summarizer.ValueCounts(matched, domain.ColumnCountry, dataprocessing.CountOptions{})
		if err != nil && !errors.IsColumnMissing(err) {
			return nil, err
		}

		report.Categories = append(report.Categories, result)
		report.TotalRow.Counts[cat.Name] = result.Count
		report.TotalRow.Total += result.Count
		subsets = append(subsets, dataprocessing.LabeledTable{Label: cat.Name, Table: matched})

		a.logger.DebugContext(ctx, "role category matched",
			slog.String("category", cat.Name),
			slog.Int("count", result.Count))
	}

	report.Pivot = a.summarizer.Pivot(domain.ColumnCountry, subsets, a.rules.PivotCountries)

	a.logger.InfoContext(ctx, "roles analyzed",
		slog.Int("categories", len(report.Categories)),
		slog.Int("categorized", report.TotalRow.Total),
		slog.Int("pivot_countries", len(report.Pivot.Rows)))

	return report, nil
}
