package dataprocessing

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"leadlens/pkg/contracts/domain"
)

// writeWorkbook saves rows to a single-sheet workbook under t.TempDir()
func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))

	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}

	path := filepath.Join(t.TempDir(), "leads.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// exampleLeads is the four-row scenario used across the package tests
func exampleLeads() *domain.Table {
	return domain.NewTable(
		[]string{"Country", "Lead Stage"},
		[]domain.Row{
			{"UAE", "Open"},
			{"UAE", "Won"},
			{"UK", "Open"},
			{"Germany", "Lost"},
		},
	)
}
