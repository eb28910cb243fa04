package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"leadlens/internal/exporter"
	"leadlens/internal/leads"
	"leadlens/internal/services"
	"leadlens/pkg/contracts/domain"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen)
	warning = color.New(color.FgYellow)
)

func status(w io.Writer, format string, args ...interface{}) {
	success.Fprintf(w, "✓ "+format+"\n", args...)
}

func section(w io.Writer, title string) {
	heading.Fprintf(w, "\n%s\n", title)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func printAggregate(w io.Writer, agg *domain.Aggregate) {
	section(w, fmt.Sprintf("%s (%s rows)", agg.Column, exporter.FormatCount(agg.Total)))
	table := newTable(w, agg.Column, "Count", "Percentage")
	for _, e := range agg.Entries {
		table.Append([]string{e.Value, exporter.FormatCount(e.Count), exporter.FormatPercent(e.Percent)})
	}
	table.SetFooter([]string{"Total", exporter.FormatCount(agg.Sum()), ""})
	table.Render()
}

func printMetrics(w io.Writer, title string, metrics []leads.Metric) {
	section(w, title)
	table := newTable(w, "Metric", "Value")
	for _, m := range metrics {
		table.Append([]string{m.Name, fmt.Sprint(m.Value)})
	}
	table.Render()
}

func printProfile(w io.Writer, p *domain.Profile) {
	section(w, "Dataset")
	table := newTable(w, "Property", "Value")
	table.Append([]string{"Source", filepath.Base(p.Source)})
	table.Append([]string{"Sheet", p.Sheet})
	table.Append([]string{"Rows", exporter.FormatCount(p.Info.Rows)})
	table.Append([]string{"Columns", exporter.FormatCount(p.Info.Columns)})
	table.Append([]string{"Duplicate rows", fmt.Sprintf("%s (%s)", exporter.FormatCount(p.Duplicates.Count), exporter.FormatPercent(p.Duplicates.Percent))})
	table.Append([]string{"Missing cells", fmt.Sprintf("%s (%s)", exporter.FormatCount(p.Missing.Total), exporter.FormatPercent(p.Missing.Percent))})
	table.Render()

	var gaps [][]string
	for _, c := range p.Missing.Columns {
		if c.Count > 0 {
			gaps = append(gaps, []string{c.Column, exporter.FormatCount(c.Count), exporter.FormatPercent(c.Percent)})
		}
	}
	if len(gaps) > 0 {
		section(w, "Missing values")
		table := newTable(w, "Column", "Missing", "Percentage")
		table.AppendBulk(gaps)
		table.Render()
	}
}

func printActive(w io.Writer, r *leads.ActiveReport, topCountries int) {
	printMetrics(w, "Active leads", r.Metrics)
	if agg, ok := r.Breakdown("Country"); ok {
		printAggregate(w, agg.Head(topCountries))
	}
	for _, name := range r.Skipped {
		warning.Fprintf(w, "! breakdown %q skipped: column not in workbook\n", name)
	}
}

func printBounced(w io.Writer, r *leads.BouncedReport) {
	section(w, "Bounced e-mails")
	table := newTable(w, "Metric", "Value")
	table.Append([]string{"Total Records", exporter.FormatCount(r.Total)})
	table.Append([]string{"Email Bounced", exporter.FormatCount(r.Bounced)})
	table.Append([]string{"Percentage of Total", exporter.FormatPercent(r.BouncedPercent)})
	table.Render()

	if r.ByCountry == nil {
		warning.Fprintln(w, "! no Country column: per-country breakdown skipped")
		return
	}
	printAggregate(w, r.ByCountry)
}

func printRoles(w io.Writer, r *leads.RoleReport) {
	section(w, fmt.Sprintf("Role categories (%s leads)", exporter.FormatCount(r.Total)))
	table := newTable(w, "Role Category", "Count", "Percentage", "Keywords")
	for _, c := range r.Categories {
		table.Append([]string{c.Name, exporter.FormatCount(c.Count), exporter.FormatPercent(c.Percent), strings.Join(c.Keywords, ", ")})
	}
	table.Render()
}

func printRegions(w io.Writer, u *domain.RegionUpdate) {
	section(w, "Region update")
	table := newTable(w, "Country", "Region", "Rows", "In Region", "Status")
	for _, c := range u.Countries {
		state := success.Sprint("OK")
		if !c.Success {
			state = warning.Sprint("INCOMPLETE")
		}
		table.Append([]string{c.Country, c.Region, exporter.FormatCount(c.Total), exporter.FormatCount(c.InRegion), state})
	}
	table.Render()

	if u.ColumnCreated {
		status(w, "Created column %q", domain.ColumnRegion)
	}
	status(w, "%d rows matched, %d updated, %d already correct", u.Matched, u.Updated, u.AlreadyCorrect)
	if u.Distribution != nil {
		printAggregate(w, u.Distribution)
	}
}

func printRun(w io.Writer, r *services.RunResult) {
	section(w, "Steps")
	table := newTable(w, "Step", "Result")
	steps := []struct {
		name string
		ran  bool
	}{
		{"regions", r.Regions != nil},
		{"analyze", r.Analyze != nil},
		{"active", r.Active != nil},
		{"bounced", r.Bounced != nil},
		{"roles", r.Roles != nil},
		{"deck", r.Deck != nil},
	}
	for _, step := range steps {
		result := success.Sprint("done")
		if !step.ran {
			result = warning.Sprint("skipped")
		}
		table.Append([]string{step.name, result})
	}
	table.Render()

	printFiles(w, r.Files())
	status(w, "All analyses finished in %s", r.Duration.Round(time.Millisecond))
}

func printFiles(w io.Writer, files []string) {
	if len(files) == 0 {
		return
	}
	section(w, "Files written")
	for _, f := range files {
		fmt.Fprintf(w, "  %s\n", f)
	}
}

func printReports(w io.Writer, dir string, reports []services.ReportFile) {
	section(w, fmt.Sprintf("Reports in %s", dir))
	if len(reports) == 0 {
		warning.Fprintln(w, "! no reports yet")
		return
	}
	table := newTable(w, "Name", "Category", "Size", "Modified")
	for _, r := range reports {
		table.Append([]string{r.Name, r.Category, exporter.FormatCount(int(r.Size)), r.Modified.Format("2006-01-02 15:04")})
	}
	table.Render()
}
