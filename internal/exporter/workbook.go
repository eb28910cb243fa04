package exporter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"leadlens/internal/config"
	"leadlens/internal/errors"
	"leadlens/pkg/contracts/domain"
)

const (
	maxSheetNameLength = 31
	minColumnWidth     = 10
	maxColumnWidth     = 50
	widthSampleRows    = 200
)

// Sheet is one worksheet of a workbook: a header row plus data rows
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// Pair is one labeled value of a key/value sheet
type Pair struct {
	Key   string
	Value interface{}
}

// WorkbookWriter writes multi-sheet xlsx files in one pass
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger.With(slog.String("component", "workbook_writer"))}
}

// Write saves sheets to path, in order. Every sheet gets a styled header,
// an auto filter over its data and a frozen header row. Sheet names are
// sanitized and made unique.
func (w *WorkbookWriter) Write(ctx context.Context, path string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return errors.NewExportError("no sheets to write", nil).WithContext("path", path)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  11,
			Color: "FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "FFFFFF", Style: 1},
			{Type: "top", Color: "FFFFFF", Style: 1},
			{Type: "bottom", Color: "FFFFFF", Style: 1},
			{Type: "right", Color: "FFFFFF", Style: 1},
		},
	})
	if err != nil {
		return errors.NewExportError("failed to create header style", err)
	}

	names := UniqueSheetNames(sheets)
	for i, sheet := range sheets {
		name := names[i]
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return errors.NewExportError("failed to name sheet", err).WithContext("sheet", name)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return errors.NewExportError("failed to create sheet", err).WithContext("sheet", name)
		}

		if err := writeSheet(f, name, sheet, headerStyle); err != nil {
			return errors.NewExportError("failed to write sheet", err).WithContext("sheet", name)
		}
	}
	f.SetActiveSheet(0)

	f.SetDocProps(&excelize.DocProperties{
		Created:        time.Now().Format(time.RFC3339),
		Creator:        config.AppName,
		LastModifiedBy: config.AppName,
		Title:          strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	})

	err = writeAtomic(path, func(out io.Writer) error {
		_, err := f.WriteTo(out)
		return err
	})
	if err != nil {
		return errors.NewExportError("failed to save workbook", err).WithContext("path", path)
	}

	w.logger.InfoContext(ctx, "workbook written",
		slog.String("path", path),
		slog.Int("sheets", len(sheets)))
	return nil
}

func writeSheet(f *excelize.File, name string, sheet Sheet, headerStyle int) error {
	if len(sheet.Headers) == 0 {
		return nil
	}

	header := make([]interface{}, len(sheet.Headers))
	for i, h := range sheet.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(sheet.Headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	for i := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &sheet.Rows[i]); err != nil {
			return err
		}
	}

	for i, width := range columnWidths(sheet) {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(name, col, col, width); err != nil {
			return err
		}
	}

	filterRange := fmt.Sprintf("A1:%s%d", lastCol, len(sheet.Rows)+1)
	if err := f.AutoFilter(name, filterRange, []excelize.AutoFilterOptions{}); err != nil {
		return err
	}

	return f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// columnWidths sizes each column from its header and a sample of values,
// clamped to a readable range
func columnWidths(sheet Sheet) []float64 {
	widths := make([]float64, len(sheet.Headers))
	for i, h := range sheet.Headers {
		widths[i] = float64(utf8.RuneCountInString(h)) * 1.5
	}
	for r, row := range sheet.Rows {
		if r >= widthSampleRows {
			break
		}
		for i, v := range row {
			if i >= len(widths) {
				break
			}
			if w := float64(utf8.RuneCountInString(fmt.Sprint(v))) * 1.2; w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] < minColumnWidth {
			widths[i] = minColumnWidth
		}
		if widths[i] > maxColumnWidth {
			widths[i] = maxColumnWidth
		}
	}
	return widths
}

// SanitizeSheetName applies Excel's sheet name rules: no []:*?/\ characters,
// no leading or trailing apostrophe, at most 31 characters, never empty
func SanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(strings.TrimSpace(name), "'")
	if name == "" {
		name = "Sheet"
	}
	return truncateRunes(name, maxSheetNameLength)
}

// UniqueSheetNames sanitizes every sheet name and suffixes case-insensitive
// repeats with " (2)", " (3)", ...
func UniqueSheetNames(sheets []Sheet) []string {
	names := make([]string, len(sheets))
	used := make(map[string]bool, len(sheets))
	for i, s := range sheets {
		base := SanitizeSheetName(s.Name)
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			suffix := fmt.Sprintf(" (%d)", n)
			name = truncateRunes(base, maxSheetNameLength-len(suffix)) + suffix
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// TableSheet writes a table verbatim; cells stay text so values such as
// phone numbers survive a round trip
func TableSheet(name string, t *domain.Table) Sheet {
	s := Sheet{
		Name:    name,
		Headers: append([]string(nil), t.Columns...),
		Rows:    make([][]interface{}, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out := make([]interface{}, len(row))
		for j, v := range row {
			out[j] = v
		}
		s.Rows[i] = out
	}
	return s
}

// AggregateSheet writes [valueHeader, Count, Percentage] with percentages
// rounded to two places
func AggregateSheet(name, valueHeader string, a *domain.Aggregate) Sheet {
	if valueHeader == "" {
		valueHeader = a.Column
	}
	s := Sheet{
		Name:    name,
		Headers: []string{valueHeader, "Count", "Percentage"},
		Rows:    make([][]interface{}, len(a.Entries)),
	}
	for i, e := range a.Entries {
		s.Rows[i] = []interface{}{e.Value, e.Count, RoundPercent(e.Percent)}
	}
	return s
}

// KeyValueSheet writes labeled values under [Metric, Value]
func KeyValueSheet(name string, pairs []Pair) Sheet {
	s := Sheet{
		Name:    name,
		Headers: []string{"Metric", "Value"},
		Rows:    make([][]interface{}, len(pairs)),
	}
	for i, p := range pairs {
		s.Rows[i] = []interface{}{p.Key, p.Value}
	}
	return s
}

// CrossTabSheet writes grouped counts as [first, second, Count]
func CrossTabSheet(name string, ct *domain.CrossTab) Sheet {
	s := Sheet{
		Name:    name,
		Headers: []string{ct.FirstColumn, ct.SecondColumn, "Count"},
		Rows:    make([][]interface{}, len(ct.Groups)),
	}
	for i, g := range ct.Groups {
		s.Rows[i] = []interface{}{g.First, g.Second, g.Count}
	}
	return s
}

// PivotSheet writes one row per key with a column per label and a Total
// column; extra rows (such as a TOTAL row) are appended after the keys
func PivotSheet(name string, p *domain.Pivot, extra ...domain.PivotRow) Sheet {
	s := Sheet{Name: name, Headers: append(append([]string{p.KeyColumn}, p.Labels...), "Total")}
	rows := append(append([]domain.PivotRow(nil), p.Rows...), extra...)
	for _, r := range rows {
		out := make([]interface{}, 0, len(p.Labels)+2)
		out = append(out, r.Key)
		for _, l := range p.Labels {
			out = append(out, r.Counts[l])
		}
		out = append(out, r.Total)
		s.Rows = append(s.Rows, out)
	}
	return s
}
