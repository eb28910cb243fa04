package services

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"leadlens/internal/config"
	"leadlens/internal/dataprocessing"
	"leadlens/internal/exporter"
	"leadlens/internal/leads"
	"leadlens/pkg/contracts/domain"
)

// AnalyzeResult is the profile of a dataset and the files written for it
type AnalyzeResult struct {
	Profile *domain.Profile `json:"profile"`
	Files   []string        `json:"files"`
}

// ActiveResult is the active-lead report and the files written for it
type ActiveResult struct {
	Report *leads.ActiveReport `json:"report"`
	Files  []string            `json:"files"`
}

// BouncedResult is the bounced e-mail report and the files written for it
type BouncedResult struct {
	Report *leads.BouncedReport `json:"report"`
	Files  []string             `json:"files"`
}

// RolesResult is the role category report and the files written for it
type RolesResult struct {
	Report *leads.RoleReport `json:"report"`
	Files  []string          `json:"files"`
}

// RegionsResult is a region reclassification and the files written for it
type RegionsResult struct {
	Update *domain.RegionUpdate `json:"update"`
	// Dataset is the reclassified table, ready for the next analysis
	Dataset *dataprocessing.Dataset `json:"-"`
	Files   []string                `json:"files"`
}

// Profile computes the descriptive statistics without writing anything
func (s *AnalysisService) Profile(ctx context.Context, ds *dataprocessing.Dataset) (*domain.Profile, error) {
	var profile *domain.Profile
	err := s.track(ctx, "profile", func(ctx context.Context) error {
		var err error
		profile, err = s.analyzer.Profile(ctx, ds)
		return err
	})
	return profile, err
}

// Analyze profiles the dataset and writes the summary workbook, the charts
// and the HTML report
func (s *AnalysisService) Analyze(ctx context.Context, ds *dataprocessing.Dataset) (*AnalyzeResult, error) {
	result := &AnalyzeResult{}
	err := s.track(ctx, "analyze", func(ctx context.Context) error {
		profile, err := s.analyzer.Profile(ctx, ds)
		if err != nil {
			return err
		}
		result.Profile = profile

		path, err := s.writeWorkbook(ctx, config.AnalysisSummaryXLSX, exporter.ProfileSheets(ds.Table, profile))
		if err != nil {
			return err
		}
		result.Files = append(result.Files, path)

		images, err := s.renderCharts(ctx, profileCharts(ds.Table, profile))
		if err != nil {
			return err
		}
		result.Files = append(result.Files, imagePaths(images)...)

		report := exporter.HTMLReport{
			Title:     "Lead Data Analysis Report",
			Generated: time.Now(),
			Profile:   profile,
			Preview:   ds.Table.Head(exporter.PreviewRows),
		}
		for _, img := range images {
			report.Charts = append(report.Charts, filepath.Base(img.Path))
		}
		htmlPath := s.paths.ReportPath(config.AnalysisReportHTML)
		if err := exporter.WriteHTML(ctx, htmlPath, report); err != nil {
			return err
		}
		s.metrics.RecordFile(ctx, "html")
		result.Files = append(result.Files, htmlPath)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Active writes the active-lead workbook with one sheet per breakdown, the
// charts, and optionally the active rows as CSV
func (s *AnalysisService) Active(ctx context.Context, ds *dataprocessing.Dataset, opts Options) (*ActiveResult, error) {
	result := &ActiveResult{}
	err := s.track(ctx, "active", func(ctx context.Context) error {
		report, err := s.analyst.Active(ctx, ds.Table)
		if err != nil {
			return err
		}
		result.Report = report

		sheets := []exporter.Sheet{
			exporter.TableSheet("Active Leads", report.Table),
			exporter.KeyValueSheet("Summary", metricPairs(report.Metrics)),
			exporter.AggregateSheet("All Stages", "", report.Stages),
		}
		for _, b := range report.Breakdowns {
			sheets = append(sheets, exporter.AggregateSheet("By "+b.Label, b.Column, b.Aggregate))
		}
		path, err := s.writeWorkbook(ctx, config.ActiveLeadsWorkbook, sheets)
		if err != nil {
			return err
		}
		result.Files = append(result.Files, path)

		if opts.CSV {
			csvPath, err := s.writeCSV(ctx, config.ActiveLeadsCSV, report.Table)
			if err != nil {
				return err
			}
			result.Files = append(result.Files, csvPath)
		}

		images, err := s.renderCharts(ctx, activeCharts(report, s.cfg.Charts, s.cfg.Rules.OthersLabel))
		if err != nil {
			return err
		}
		result.Files = append(result.Files, imagePaths(images)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Bounced writes the bounced e-mail workbook, the charts, and optionally
// the bounced rows as CSV
func (s *AnalysisService) Bounced(ctx context.Context, ds *dataprocessing.Dataset, opts Options) (*BouncedResult, error) {
	result := &BouncedResult{}
	err := s.track(ctx, "bounced", func(ctx context.Context) error {
		report, err := s.analyst.Bounced(ctx, ds.Table)
		if err != nil {
			return err
		}
		result.Report = report

		path, err := s.writeWorkbook(ctx, config.BouncedWorkbook, bouncedSheets(report))
		if err != nil {
			return err
		}
		result.Files = append(result.Files, path)

		if opts.CSV {
			csvPath, err := s.writeCSV(ctx, config.BouncedCSV, report.Table)
			if err != nil {
				return err
			}
			result.Files = append(result.Files, csvPath)
		}

		images, err := s.renderCharts(ctx, bouncedCharts(report, s.cfg.Charts, s.cfg.Rules.OthersLabel))
		if err != nil {
			return err
		}
		result.Files = append(result.Files, imagePaths(images)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Roles writes the role workbook: a summary, the top countries of every
// category, the country pivot with a TOTAL row, the matched rows of every
// category and its full country counts
func (s *AnalysisService) Roles(ctx context.Context, ds *dataprocessing.Dataset) (*RolesResult, error) {
	result := &RolesResult{}
	err := s.track(ctx, "roles", func(ctx context.Context) error {
		report, err := s.analyst.Roles(ctx, ds.Table)
		if err != nil {
			return err
		}
		result.Report = report

		path, err := s.writeWorkbook(ctx, config.RoleWorkbook, roleSheets(report))
		if err != nil {
			return err
		}
		result.Files = append(result.Files, path)

		images, err := s.renderCharts(ctx, roleCharts(report))
		if err != nil {
			return err
		}
		result.Files = append(result.Files, imagePaths(images)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Regions reclassifies the region column with the rules named by labels
// (all when empty). It writes the updated workbook next to the reports and
// a log workbook of every change and per-country outcome.
func (s *AnalysisService) Regions(ctx context.Context, ds *dataprocessing.Dataset, labels ...string) (*RegionsResult, error) {
	result := &RegionsResult{}
	err := s.track(ctx, "regions", func(ctx context.Context) error {
		update, err := s.analyst.Regions(ctx, ds.Table, labels...)
		if err != nil {
			return err
		}
		result.Update = update

		sheetName := ds.Sheet
		if sheetName == "" {
			sheetName = "Sheet1"
		}
		updatedPath := s.paths.UpdatedRegionsPath(ds.Path)
		if err := s.workbooks.Write(ctx, updatedPath, []exporter.Sheet{exporter.TableSheet(sheetName, update.Table)}); err != nil {
			return err
		}
		s.metrics.RecordFile(ctx, "xlsx")
		result.Files = append(result.Files, updatedPath)
		result.Dataset = &dataprocessing.Dataset{Path: updatedPath, Sheet: sheetName, Table: update.Table}

		logPath, err := s.writeWorkbook(ctx, config.RegionLogWorkbook, regionLogSheets(update, time.Now()))
		if err != nil {
			return err
		}
		result.Files = append(result.Files, logPath)

		s.logger.InfoContext(ctx, "regions updated",
			slog.Int("matched", update.Matched),
			slog.Int("updated", update.Updated),
			slog.Int("already_correct", update.AlreadyCorrect),
			slog.Bool("column_created", update.ColumnCreated))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func bouncedSheets(r *leads.BouncedReport) []exporter.Sheet {
	var sheets []exporter.Sheet
	if r.ByCountry != nil {
		sheets = append(sheets, exporter.AggregateSheet("Bounced by Country", "", r.ByCountry))
	}
	sheets = append(sheets,
		exporter.AggregateSheet("Activity Types", "", r.ActivityTypes),
		exporter.TableSheet("Bounced Records", r.Table),
	)
	if r.CountryActivity != nil {
		sheets = append(sheets, exporter.CrossTabSheet("Country + Activity", r.CountryActivity))
	}
	return append(sheets, exporter.KeyValueSheet("Summary", []exporter.Pair{
		{Key: "Total Records", Value: r.Total},
		{Key: "Email Bounced", Value: r.Bounced},
		{Key: "Percentage of Total", Value: exporter.FormatPercent(r.BouncedPercent)},
	}))
}

func roleSheets(r *leads.RoleReport) []exporter.Sheet {
	summary := exporter.Sheet{
		Name:    "Summary",
		Headers: []string{"Role Category", "Total Count", "Percentage", "Keywords"},
	}
	for _, c := range r.Categories {
		summary.Rows = append(summary.Rows, []interface{}{
			c.Name, c.Count, exporter.RoundPercent(c.Percent), strings.Join(c.Keywords, ", "),
		})
	}

	byCountry := exporter.Sheet{
		Name:    "By Country",
		Headers: []string{"Role Category", "Country", "Count", "Percentage"},
	}
	for _, rc := range r.CountryRows() {
		byCountry.Rows = append(byCountry.Rows, []interface{}{
			rc.Category, rc.Country, rc.Count, exporter.RoundPercent(rc.Percent),
		})
	}

	sheets := []exporter.Sheet{
		summary,
		byCountry,
		exporter.PivotSheet("Country Pivot", r.Pivot, r.TotalRow),
	}
	for _, c := range r.Categories {
		if c.Count > 0 {
			sheets = append(sheets, exporter.TableSheet(c.Name, c.Table))
		}
	}
	for _, c := range r.Categories {
		if c.Count > 0 && c.ByCountry != nil {
			sheets = append(sheets, exporter.AggregateSheet(c.Name+" by Country", "Country", c.ByCountry))
		}
	}
	return sheets
}

func regionLogSheets(u *domain.RegionUpdate, now time.Time) []exporter.Sheet {
	total := 0
	if u.Table != nil {
		total = u.Table.Len()
	}
	summary := exporter.KeyValueSheet("Summary", []exporter.Pair{
		{Key: "Total Records in Dataset", Value: total},
		{Key: "Region Country Records", Value: u.Matched},
		{Key: "Records Updated", Value: u.Updated},
		{Key: "Records Already Correct", Value: u.AlreadyCorrect},
		{Key: "Region Column Created", Value: u.ColumnCreated},
		{Key: "Update Date", Value: now.Format("2006-01-02 15:04:05")},
	})

	countries := exporter.Sheet{
		Name:    "Country Breakdown",
		Headers: []string{"Country", "Region", "Total Records", "In Region", "Success"},
	}
	for _, c := range u.Countries {
		status := "OK"
		if !c.Success {
			status = "INCOMPLETE"
		}
		countries.Rows = append(countries.Rows, []interface{}{c.Country, c.Region, c.Total, c.InRegion, status})
	}

	sheets := []exporter.Sheet{summary, countries}
	if len(u.Changes) > 0 {
		changes := exporter.Sheet{Name: "Changes Detail", Headers: []string{"Row", "Country", "Before", "After"}}
		for _, c := range u.Changes {
			// Spreadsheet row: one for the header, one for 1-based numbering
			changes.Rows = append(changes.Rows, []interface{}{c.Row + 2, c.Country, c.Before, c.After})
		}
		sheets = append(sheets, changes)
	}
	if u.Distribution != nil {
		sheets = append(sheets, exporter.AggregateSheet("Region Distribution", "Region", u.Distribution))
	}
	return sheets
}

func metricPairs(metrics []leads.Metric) []exporter.Pair {
	pairs := make([]exporter.Pair, len(metrics))
	for i, m := range metrics {
		pairs[i] = exporter.Pair{Key: m.Name, Value: m.Value}
	}
	return pairs
}
