package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// ExampleLeads is a four-lead sheet with two active rows. Active country
// shares are UAE 50% and UK 50%.
func ExampleLeads() [][]interface{} {
	return [][]interface{}{
		{"Company Name", "Country", "Lead Stage", "Last Activity", "Role"},
		{"Acme", "UAE", "Open", "Email Bounced", "HR Manager"},
		{"Acme", "UAE", "Won", "Call", "CEO"},
		{"Brit Ltd", "UK", "Open", "Email Opened", "IT Director"},
		{"Berlin AG", "Germany", "Lost", "Email Bounced", "CFO"},
	}
}

// WriteWorkbook saves rows to the first sheet of a new workbook at dir/name.
// The first row is the header.
func WriteWorkbook(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}
