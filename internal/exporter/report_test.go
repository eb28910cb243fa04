package exporter

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadlens/internal/dataprocessing"
	"leadlens/internal/errors"
	"leadlens/pkg/contracts/domain"
)

func sampleProfile(t *testing.T) (*domain.Table, *domain.Profile) {
	t.Helper()
	table := domain.NewTable(
		[]string{"Score", "Employees", "Country"},
		[]domain.Row{{"1", "10", "UAE"}, {"2", "25", "<b>UK</b>"}, {"3", "", "UAE"}},
	)
	profile, err := dataprocessing.NewAnalyzer(nil).Profile(context.Background(),
		&dataprocessing.Dataset{Path: "leads.xlsx", Sheet: "Leads", Table: table})
	require.NoError(t, err)
	return table, profile
}

func TestRenderHTML(t *testing.T) {
	table, profile := sampleProfile(t)

	data, err := RenderHTML(HTMLReport{
		Generated: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Profile:   profile,
		Charts:    []string{"missing_data.png"},
		Preview:   table.Head(PreviewRows),
	})
	require.NoError(t, err)

	html := string(data)
	assert.Contains(t, html, "Lead Data Analysis Report")
	assert.Contains(t, html, "2024-05-01 10:00:00")
	assert.Contains(t, html, `<img src="missing_data.png"`)
	assert.Contains(t, html, "Data Preview (First 3 Rows)")
	assert.Contains(t, html, "&lt;b&gt;UK&lt;/b&gt;", "cell values are escaped")
	assert.NotContains(t, html, "<b>UK</b>")
}

func TestRenderHTML_NeedsProfile(t *testing.T) {
	_, err := RenderHTML(HTMLReport{})
	assert.Error(t, err)
}

func TestWriteHTML(t *testing.T) {
	_, profile := sampleProfile(t)
	path := filepath.Join(t.TempDir(), "reports", "analysis_report.html")

	require.NoError(t, WriteHTML(context.Background(), path, HTMLReport{Profile: profile}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "<!DOCTYPE html>"))
	assert.Contains(t, string(data), "No charts were generated.")
}

func TestProfileSheets(t *testing.T) {
	table, profile := sampleProfile(t)

	sheets := ProfileSheets(table, profile)
	names := make([]string, len(sheets))
	for i, s := range sheets {
		names[i] = s.Name
	}
	assert.Equal(t, []string{
		"Original Data", "Statistical Summary", "Categorical Summary", "Missing Data", "Correlation Matrix",
	}, names)

	stats := sheets[1]
	assert.Equal(t, []string{"Statistic", "Score", "Employees"}, stats.Headers)
	assert.Equal(t, []interface{}{"count", 3.0, 2.0}, stats.Rows[0])

	profile.Correlation = nil
	assert.Len(t, ProfileSheets(table, profile), 4)
}

func TestCSVWriter_Write(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "active_leads.csv")

	require.NoError(t, NewCSVWriter(nil).Write(context.Background(), path, sampleTable()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])

	lines := strings.Split(strings.TrimSpace(string(data[3:])), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Country,Lead Stage,Phone/Mobile,Notes", lines[0])
	assert.Equal(t, "UK,Won,,called twice", lines[2])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp file left behind")
}

func TestCSVWriter_RoundTrip(t *testing.T) {
	table := sampleTable()
	path := filepath.Join(t.TempDir(), "leads.csv")
	require.NoError(t, NewCSVWriter(nil).Write(context.Background(), path, table))

	back, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, table.Columns, back.Columns)
	assert.Equal(t, table.Len(), back.Len())
	assert.Equal(t, table.Rows, back.Rows)
}

func TestCSVWriter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "leads.csv")
	assert.ErrorIs(t, NewCSVWriter(nil).Write(ctx, path, sampleTable()), context.Canceled)
	assert.NoFileExists(t, path)
}

func TestReadCSV(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "plain.csv")
	require.NoError(t, os.WriteFile(plain, []byte("Country,Lead Stage\nUAE\nUK,Won\n"), 0644))
	table, err := ReadCSV(plain)
	require.NoError(t, err)
	assert.Equal(t, []string{"Country", "Lead Stage"}, table.Columns)
	assert.Equal(t, domain.Row{"UAE", ""}, table.Rows[0], "short rows are padded")

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = ReadCSV(empty)
	assert.True(t, errors.IsType(err, errors.ErrTypeParsing))

	_, err = ReadCSV(filepath.Join(dir, "absent.csv"))
	assert.True(t, errors.IsNotFound(err))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, 66.67, RoundPercent(200.0/3))
	assert.Equal(t, "13.40%", FormatPercent(13.4))
	assert.Equal(t, "12,345", FormatCount(12345))
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "1.50", formatFloat(1.5))
	assert.Equal(t, "", formatFloat(math.NaN()))
}
