package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"leadlens/internal/config"
	"leadlens/internal/dataprocessing"
	"leadlens/internal/errors"
	"leadlens/internal/exporter"
	"leadlens/pkg/contracts/domain"
)

var leadHeaders = []interface{}{
	"Company Name", "Country", "Lead Stage", "Industry Vertical", "Company size",
	"Lead Source", "Last Activity", "Role", "Annual Revenue",
}

// leadRows is the four-lead scenario plus enough columns for every analysis
var leadRows = [][]interface{}{
	{"Acme", "UAE", "Open", "Banking", "51-200", "Web", "Email Bounced", "HR Director", 1200},
	{"Acme", "UAE", "Won", "Banking", "51-200", "Event", "Call", "CEO", 800},
	{"Brit Ltd", "UK", "Open", "Retail", "1-50", "Web", "Email Opened", "IT Manager", 300},
	{"Berlin AG", "Germany", "Lost", "Retail", "201-500", "Referral", "Email Bounced", "Chief Financial Officer", 450},
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeLeadWorkbook saves headers and rows to a single-sheet workbook
func writeLeadWorkbook(t *testing.T, headers []interface{}, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	all := append([][]interface{}{headers}, rows...)
	for r, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "Raw Leads.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// newTestService builds a service over a fresh workbook and reports directory.
// Charts are off unless a test turns them on.
func newTestService(t *testing.T, headers []interface{}, rows [][]interface{}, charts bool) (*AnalysisService, *dataprocessing.Dataset) {
	t.Helper()

	cfg := config.Default()
	cfg.Paths = config.PathsConfig{
		InputFile:  writeLeadWorkbook(t, headers, rows),
		ReportsDir: filepath.Join(t.TempDir(), "reports"),
	}
	cfg.Charts.Enabled = charts

	paths, err := config.NewPaths(cfg.Paths)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	svc := NewAnalysisService(cfg, paths, nil, discardLogger())
	ds, err := svc.Load(context.Background())
	require.NoError(t, err)
	return svc, ds
}

// sheetList opens a written workbook and returns its sheet names in order
func sheetList(t *testing.T, path string) []string {
	t.Helper()

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	return f.GetSheetList()
}

func TestAnalysisService_Aggregate(t *testing.T) {
	svc, ds := newTestService(t, leadHeaders, leadRows, false)
	ctx := context.Background()

	t.Run("active subset by country", func(t *testing.T) {
		agg, err := svc.Aggregate(ctx, ds, domain.ColumnCountry, domain.SubsetActive, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, agg.Total)
		uae, ok := agg.Lookup("UAE")
		require.True(t, ok)
		assert.InDelta(t, 50.0, uae.Percent, 1e-9)
		uk, ok := agg.Lookup("UK")
		require.True(t, ok)
		assert.InDelta(t, 50.0, uk.Percent, 1e-9)
		_, ok = agg.Lookup("Germany")
		assert.False(t, ok)
	})

	t.Run("subset and complement cover the table", func(t *testing.T) {
		active, err := svc.Aggregate(ctx, ds, domain.ColumnCountry, domain.SubsetActive, 0)
		require.NoError(t, err)
		inactive, err := svc.Aggregate(ctx, ds, domain.ColumnCountry, domain.SubsetInactive, 0)
		require.NoError(t, err)
		assert.Equal(t, ds.Table.Len(), active.Total+inactive.Total)
	})

	t.Run("bounced subset", func(t *testing.T) {
		agg, err := svc.Aggregate(ctx, ds, domain.ColumnCountry, domain.SubsetBounced, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, agg.Total)
	})

	t.Run("unknown subset", func(t *testing.T) {
		_, err := svc.Aggregate(ctx, ds, domain.ColumnCountry, domain.Subset("stale"), 0)
		assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := svc.Aggregate(ctx, ds, "Budget", domain.SubsetAll, 0)
		assert.True(t, errors.IsColumnMissing(err))
	})
}

func TestAnalysisService_LoadFile_Rejected(t *testing.T) {
	svc, _ := newTestService(t, leadHeaders, leadRows, false)

	_, err := svc.LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"), "")
	assert.True(t, errors.IsNotFound(err))
}

func TestAnalysisService_LoadFile_Directory(t *testing.T) {
	svc, _ := newTestService(t, leadHeaders, leadRows, false)
	input := writeLeadWorkbook(t, leadHeaders, leadRows)

	ds, err := svc.LoadFile(context.Background(), filepath.Dir(input), "")
	require.NoError(t, err)
	assert.Equal(t, input, ds.Path)
	assert.Equal(t, len(leadRows), ds.Table.Len())

	_, err = svc.LoadFile(context.Background(), t.TempDir(), "")
	assert.True(t, errors.IsNotFound(err))
}

func TestAnalysisService_Active(t *testing.T) {
	svc, ds := newTestService(t, leadHeaders, leadRows, false)

	result, err := svc.Active(context.Background(), ds, Options{CSV: true})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Report.Active)
	require.Len(t, result.Files, 2)

	workbook := svc.Paths().ReportPath(config.ActiveLeadsWorkbook)
	assert.Equal(t, workbook, result.Files[0])
	assert.Equal(t, []string{
		"Active Leads", "Summary", "All Stages",
		"By Lead Stage", "By Country", "By Industry", "By Lead Source",
		"By Company Size", "By Last Activity",
	}, sheetList(t, workbook), "no Region Specific column, so no By Region sheet")

	f, err := excelize.OpenFile(workbook)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Active Leads")
	require.NoError(t, err)
	assert.Len(t, rows, 3, "header plus two active leads")

	exported, err := exporter.ReadCSV(svc.Paths().ReportPath(config.ActiveLeadsCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, exported.Len())
	assert.Equal(t, ds.Table.Columns, exported.Columns)
}

func TestAnalysisService_Bounced(t *testing.T) {
	t.Run("writes workbook", func(t *testing.T) {
		svc, ds := newTestService(t, leadHeaders, leadRows, false)
		result, err := svc.Bounced(context.Background(), ds, Options{})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Report.Bounced)
		assert.Equal(t, []string{
			"Bounced by Country", "Activity Types", "Bounced Records", "Country + Activity", "Summary",
		}, sheetList(t, svc.Paths().ReportPath(config.BouncedWorkbook)))
		assert.NoFileExists(t, svc.Paths().ReportPath(config.BouncedCSV))
	})

	t.Run("column missing", func(t *testing.T) {
		svc, ds := newTestService(t,
			[]interface{}{"Country", "Lead Stage"},
			[][]interface{}{{"UAE", "Open"}},
			false)
		_, err := svc.Bounced(context.Background(), ds, Options{})
		assert.True(t, errors.IsColumnMissing(err))
	})
}

func TestAnalysisService_Roles(t *testing.T) {
	svc, ds := newTestService(t, leadHeaders, leadRows, false)

	result, err := svc.Roles(context.Background(), ds)
	require.NoError(t, err)

	hr, ok := result.Report.Category("HR Leads")
	require.True(t, ok)
	assert.Equal(t, 1, hr.Count)

	path := svc.Paths().ReportPath(config.RoleWorkbook)
	assert.Equal(t, []string{
		"Summary", "By Country", "Country Pivot",
		"HR Leads", "IT Leads", "Finance Leads", "CEO", "CFO",
		"HR Leads by Country", "IT Leads by Country", "Finance Leads by Country",
		"CEO by Country", "CFO by Country",
	}, sheetList(t, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("By Country")
	require.NoError(t, err)
	assert.Equal(t, []string{"Role Category", "Country", "Count", "Percentage"}, rows[0])
	assert.Equal(t, []string{"HR Leads", "UAE", "1", "100"}, rows[1])
}

func TestAnalysisService_Regions(t *testing.T) {
	svc, ds := newTestService(t, leadHeaders, leadRows, false)
	ctx := context.Background()

	first, err := svc.Regions(ctx, ds)
	require.NoError(t, err)
	assert.True(t, first.Update.ColumnCreated)
	assert.Equal(t, 4, first.Update.Updated)

	updatedPath := svc.Paths().UpdatedRegionsPath(ds.Path)
	assert.Equal(t, updatedPath, first.Files[0])
	logPath := svc.Paths().ReportPath(config.RegionLogWorkbook)
	assert.Equal(t, []string{"Summary", "Country Breakdown", "Changes Detail", "Region Distribution"}, sheetList(t, logPath))

	log, err := excelize.OpenFile(logPath)
	require.NoError(t, err)
	summary, err := log.GetRows("Summary")
	require.NoError(t, err)
	require.NoError(t, log.Close())
	require.GreaterOrEqual(t, len(summary), 7)
	assert.Equal(t, []string{"Total Records in Dataset", "4"}, summary[1])
	assert.Equal(t, "Update Date", summary[6][0])

	reloaded, err := svc.LoadFile(ctx, updatedPath, "")
	require.NoError(t, err)
	assert.Equal(t, ds.Table.Len(), reloaded.Table.Len())
	assert.Equal(t, append(append([]string(nil), ds.Table.Columns...), domain.ColumnRegion), reloaded.Table.Columns)

	regions, ok := reloaded.Table.ColumnValues(domain.ColumnRegion)
	require.True(t, ok)
	assert.Equal(t, []string{"ME", "ME", "EU", "EU"}, regions)

	second, err := svc.Regions(ctx, reloaded)
	require.NoError(t, err)
	assert.Zero(t, second.Update.Updated)
	assert.Equal(t, 4, second.Update.AlreadyCorrect)
	assert.Equal(t, updatedPath, second.Files[0], "updating an updated file keeps its name")
	assert.Equal(t, []string{"Summary", "Country Breakdown", "Region Distribution"}, sheetList(t, logPath),
		"no changes, no Changes Detail sheet")
}

func TestAnalysisService_Analyze(t *testing.T) {
	svc, ds := newTestService(t, leadHeaders, leadRows, false)

	result, err := svc.Analyze(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Profile.Info.Rows)
	assert.FileExists(t, svc.Paths().ReportPath(config.AnalysisSummaryXLSX))
	assert.FileExists(t, svc.Paths().ReportPath(config.AnalysisReportHTML))
}

func TestAnalysisService_All(t *testing.T) {
	t.Run("every step", func(t *testing.T) {
		svc, ds := newTestService(t, leadHeaders, leadRows, true)

		result, err := svc.All(context.Background(), ds, Options{CSV: true})
		require.NoError(t, err)
		assert.Empty(t, result.Skipped)
		require.NotNil(t, result.Deck)
		assert.Positive(t, result.Deck.Charts)

		for _, file := range result.Files() {
			assert.FileExists(t, file)
		}
		assert.FileExists(t, svc.Paths().ReportPath(config.PresentationFile))
		assert.FileExists(t, svc.Paths().ReportPath(config.ChartActiveByCountry))

		// Later steps see the reclassified table
		assert.Equal(t, 4, result.Active.Report.Total)
		_, ok := result.Active.Report.Breakdown("Region")
		assert.True(t, ok)
	})

	t.Run("missing columns skip steps", func(t *testing.T) {
		svc, ds := newTestService(t,
			[]interface{}{"Country", "Lead Stage"},
			[][]interface{}{{"UAE", "Open"}, {"UK", "Won"}},
			false)

		result, err := svc.All(context.Background(), ds, Options{})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"bounced", "roles"}, result.Skipped)
		assert.Nil(t, result.Bounced)
		assert.NotNil(t, result.Active)
		assert.FileExists(t, result.Deck.Path)
	})
}

func TestAnalysisService_Deck(t *testing.T) {
	svc, ds := newTestService(t, leadHeaders, leadRows, false)

	result, err := svc.Deck(context.Background(), ds)
	require.NoError(t, err)
	assert.Zero(t, result.Charts)
	assert.Equal(t, svc.Paths().ReportPath(config.PresentationFile), result.Path)
	assert.FileExists(t, result.Path)
	assert.NoFileExists(t, svc.Paths().ReportPath(config.ActiveLeadsWorkbook), "deck writes no workbook")
}

func TestAnalysisService_CancelledContext(t *testing.T) {
	svc, ds := newTestService(t, leadHeaders, leadRows, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Active(ctx, ds, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
