package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"leadlens/internal/errors"
	"leadlens/pkg/contracts/domain"
)

// Dataset is a table together with where it was read from
type Dataset struct {
	Path  string
	Sheet string
	Table *domain.Table
}

// Loader reads lead workbooks into tables
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "loader"))}
}

// Load reads one sheet of an xlsx file. An empty sheet name selects the first
// sheet. The first non-empty row is the header; blank rows are skipped and
// short rows are padded to the header width.
func (l *Loader) Load(ctx context.Context, path, sheet string) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError(fmt.Sprintf("input file %s", path)).
				WithContext("path", path)
		}
		return nil, errors.NewStorageError("failed to stat input file", err).WithContext("path", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewParsingError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewParsingError("workbook has no sheets", nil).WithContext("path", path)
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if !containsString(sheets, sheet) {
		return nil, errors.NewNotFoundError(fmt.Sprintf("sheet %q", sheet)).
			WithContext("path", path).
			WithContext("available", sheets)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.NewParsingError("failed to read sheet rows", err).
			WithContext("path", path).
			WithContext("sheet", sheet)
	}

	table := buildTable(rows)

	l.logger.InfoContext(ctx, "workbook loaded",
		slog.String("path", path),
		slog.String("sheet", sheet),
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(table.Columns)))

	return &Dataset{Path: path, Sheet: sheet, Table: table}, nil
}

// buildTable turns raw sheet rows into a table with unique column names
func buildTable(rows [][]string) *domain.Table {
	headerRow := -1
	for i, row := range rows {
		if !isBlankRow(row) {
			headerRow = i
			break
		}
	}
	if headerRow < 0 {
		return domain.NewTable(nil, nil)
	}

	width := len(rows[headerRow])
	for _, row := range rows[headerRow+1:] {
		if len(row) > width {
			width = len(row)
		}
	}

	header := make([]string, width)
	copy(header, rows[headerRow])
	columns := HeaderNames(header)

	data := make([]domain.Row, 0, len(rows)-headerRow-1)
	for _, row := range rows[headerRow+1:] {
		if isBlankRow(row) {
			continue
		}
		data = append(data, domain.Row(row))
	}

	return domain.NewTable(columns, data)
}

// HeaderNames trims header cells, names empty ones "Unnamed: <i>" and
// suffixes repeated names with ".1", ".2", ...
func HeaderNames(raw []string) []string {
	names := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	taken := make(map[string]bool, len(raw))

	for i, cell := range raw {
		name := strings.TrimSpace(cell)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		base := name
		for taken[name] {
			seen[base]++
			name = fmt.Sprintf("%s.%d", base, seen[base])
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
