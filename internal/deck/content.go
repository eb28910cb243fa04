package deck

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"leadlens/internal/config"
	"leadlens/internal/exporter"
	"leadlens/internal/leads"
	"leadlens/pkg/contracts/domain"
)

const (
	maxTableRows   = 12
	maxQualityRows = 10
	topMarkets     = 3
)

// ChartSlide is one rendered chart shown on its own slide
type ChartSlide struct {
	Title string
	Image []byte
}

// DeckData carries everything the presentation shows. Every figure on the
// slides is derived from these values when the deck is built.
type DeckData struct {
	Title     string
	Subtitle  string
	Generated time.Time

	Profile *domain.Profile
	Active  *leads.ActiveReport
	Bounced *leads.BouncedReport
	Roles   *leads.RoleReport

	// Regions is the distribution of the region column after reclassification
	Regions     *domain.Aggregate
	RegionRules []config.RegionRule

	// Countries and Companies are distinct counts over the whole table; a
	// negative value means the column was absent
	Countries int
	Companies int

	MissingLabel string
	Charts       []ChartSlide
	Logo         []byte
}

func (d DeckData) total() int {
	switch {
	case d.Profile != nil:
		return d.Profile.Info.Rows
	case d.Active != nil:
		return d.Active.Total
	}
	return 0
}

func share(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}

func countLine(label string, n, total int) string {
	return fmt.Sprintf("%s: %s (%.1f%%)", label, exporter.FormatCount(n), share(n, total))
}

func summaryLines(d DeckData) []string {
	total := d.total()
	lines := []string{fmt.Sprintf("Total Records: %s", exporter.FormatCount(total))}
	if d.Active != nil {
		lines = append(lines, countLine("Active Leads", d.Active.Active, total))
	}
	if d.Countries >= 0 {
		lines = append(lines, fmt.Sprintf("Countries: %s", exporter.FormatCount(d.Countries)))
	}
	if d.Companies >= 0 {
		lines = append(lines, fmt.Sprintf("Companies: %s", exporter.FormatCount(d.Companies)))
	}
	if d.Regions != nil && len(d.Regions.Entries) > 0 {
		lines = append(lines, "", "Regional Distribution:")
		for _, e := range d.Regions.Entries {
			lines = append(lines, "  • "+countLine(e.Value, e.Count, d.Regions.Total))
		}
	}
	return lines
}

func overviewLines(d DeckData) []string {
	var lines []string
	if p := d.Profile; p != nil {
		lines = append(lines,
			fmt.Sprintf("Total Rows: %s", exporter.FormatCount(p.Info.Rows)),
			fmt.Sprintf("Total Columns: %d", p.Info.Columns),
			fmt.Sprintf("Data Quality: %.1f%% complete", 100-p.Missing.Percent),
			fmt.Sprintf("Duplicate Rows: %s (%.1f%%)", exporter.FormatCount(p.Duplicates.Count), p.Duplicates.Percent),
		)
	}
	if d.Active != nil && d.Active.Stages != nil {
		lines = append(lines, "", "Lead Stages:")
		for i, e := range d.Active.Stages.Entries {
			if i == maxTableRows {
				break
			}
			lines = append(lines, "  • "+countLine(e.Value, e.Count, d.Active.Stages.Total))
		}
	}
	return lines
}

// roleRows lists each role category with its three leading countries
func roleRows(r *leads.RoleReport) [][]string {
	if r == nil {
		return nil
	}
	rows := [][]string{}
	for _, c := range r.Categories {
		if len(rows) == maxTableRows {
			break
		}
		var top []string
		if c.ByCountry != nil {
			for i, e := range c.ByCountry.Entries {
				if i == topMarkets {
					break
				}
				top = append(top, fmt.Sprintf("%s %s", e.Value, exporter.FormatCount(e.Count)))
			}
		}
		rows = append(rows, []string{
			c.Name,
			exporter.FormatCount(c.Count),
			exporter.FormatPercent(c.Percent),
			strings.Join(top, ", "),
		})
	}
	return rows
}

func regionLines(d DeckData) []string {
	var lines []string
	for _, rule := range d.RegionRules {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		count := 0
		if d.Regions != nil {
			if e, ok := d.Regions.Lookup(rule.Label); ok {
				count = e.Count
			}
		}
		lines = append(lines,
			fmt.Sprintf("%s Region Countries:", rule.Label),
			"  • "+strings.Join(rule.Countries, ", "),
			fmt.Sprintf("  • Total: %s records", exporter.FormatCount(count)),
		)
	}
	return lines
}

// qualityRows returns the columns with the most missing values, worst first
func qualityRows(p *domain.Profile) [][]string {
	if p == nil {
		return nil
	}
	cols := append([]domain.MissingColumn(nil), p.Missing.Columns...)
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].Count > cols[j].Count })

	rows := [][]string{}
	for _, c := range cols {
		if c.Count == 0 || len(rows) == maxQualityRows {
			break
		}
		rows = append(rows, []string{c.Column, exporter.FormatCount(c.Count), fmt.Sprintf("%.1f%%", c.Percent)})
	}
	return rows
}

func topValues(agg *domain.Aggregate, n int, skip string) []string {
	if agg == nil {
		return nil
	}
	var out []string
	for _, e := range agg.Entries {
		if len(out) == n {
			break
		}
		if e.Value == skip {
			continue
		}
		out = append(out, e.Value)
	}
	return out
}

func countryBreakdown(r *leads.ActiveReport) *domain.Aggregate {
	if r == nil {
		return nil
	}
	for _, b := range r.Breakdowns {
		if b.Column == domain.ColumnCountry {
			return b.Aggregate
		}
	}
	return nil
}

// topCategories returns role category names by count, largest first
func topCategories(r *leads.RoleReport, n int) []string {
	if r == nil {
		return nil
	}
	cats := append([]leads.RoleCategoryResult(nil), r.Categories...)
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].Count > cats[j].Count })
	var out []string
	for _, c := range cats {
		if len(out) == n || c.Count == 0 {
			break
		}
		out = append(out, c.Name)
	}
	return out
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

func insightLines(d DeckData) []string {
	total := d.total()
	var lines []string
	n := 0
	add := func(title string, details ...string) {
		n++
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, fmt.Sprintf("%d. %s", n, title))
		for _, s := range details {
			lines = append(lines, "   • "+s)
		}
	}

	if d.Active != nil {
		add(fmt.Sprintf("Active Lead Rate: %.1f%% of database", share(d.Active.Active, total)))
	}
	if markets := topValues(countryBreakdown(d.Active), topMarkets, d.MissingLabel); len(markets) > 0 {
		details := []string{fmt.Sprintf("%s are the top markets", joinAnd(markets))}
		if regions := topValues(d.Regions, 2, d.MissingLabel); len(regions) > 0 {
			details = append(details, fmt.Sprintf("Largest regions: %s", joinAnd(regions)))
		}
		add("Geographic Focus:", details...)
	}
	if d.Roles != nil {
		details := []string{fmt.Sprintf("%s identified in key roles", exporter.FormatCount(d.Roles.TotalRow.Total))}
		if cats := topCategories(d.Roles, 2); len(cats) > 0 {
			details = append(details, fmt.Sprintf("%s dominate", joinAnd(cats)))
		}
		add("Decision Makers:", details...)
	}
	if d.Bounced != nil {
		details := []string{fmt.Sprintf("%s bounced emails identified", exporter.FormatCount(d.Bounced.Bounced))}
		if countries := topValues(d.Bounced.ByCountry, 2, d.MissingLabel); len(countries) > 0 {
			details = append(details, fmt.Sprintf("%s have the most bounces", joinAnd(countries)))
		}
		add("Email Engagement:", details...)
	}
	return lines
}

func recommendationLines(d DeckData) []string {
	var recs []string
	if d.Active != nil {
		recs = append(recs, fmt.Sprintf("Focus on Active Leads (%s records)", exporter.FormatCount(d.Active.Active)))
	}
	if markets := topValues(countryBreakdown(d.Active), topMarkets, d.MissingLabel); len(markets) > 0 {
		recs = append(recs, fmt.Sprintf("Prioritize %s markets", joinAnd(markets)))
	}
	if cats := topCategories(d.Roles, 2); len(cats) > 0 {
		recs = append(recs, fmt.Sprintf("Target %s decision makers", joinAnd(cats)))
	}
	if d.Bounced != nil && d.Bounced.Bounced > 0 {
		recs = append(recs, fmt.Sprintf("Clean up %s bounced email addresses", exporter.FormatCount(d.Bounced.Bounced)))
	}
	if gaps := qualityRows(d.Profile); len(gaps) > 0 {
		var names []string
		for i, g := range gaps {
			if i == topMarkets {
				break
			}
			names = append(names, g[0])
		}
		recs = append(recs, fmt.Sprintf("Fill missing data gaps in %s", joinAnd(names)))
	}
	if regions := topValues(d.Regions, 2, d.MissingLabel); len(regions) > 0 {
		recs = append(recs, fmt.Sprintf("Leverage strong %s presence", joinAnd(regions)))
	}

	lines := make([]string, 0, 2*len(recs))
	for i, r := range recs {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, r))
	}
	return lines
}
