package exporter

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"leadlens/internal/errors"
	"leadlens/pkg/contracts/domain"
)

// utf8BOM makes Excel open the file as UTF-8 instead of the system code page
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter exports tables as UTF-8 CSV
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a CSV writer
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// Write saves t to path with a BOM and a header row. The file is written
// next to path and renamed into place, so readers never see half a table.
func (w *CSVWriter) Write(ctx context.Context, path string, t *domain.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := writeAtomic(path, func(out io.Writer) error { return writeTable(out, t) })
	if err != nil {
		return errors.NewExportError("failed to write csv", err).WithContext("path", path)
	}

	w.logger.InfoContext(ctx, "csv written",
		slog.String("path", path),
		slog.Int("rows", t.Len()),
		slog.Int("columns", len(t.Columns)))
	return nil
}

func writeTable(out io.Writer, t *domain.Table) error {
	buf := bufio.NewWriter(out)
	if _, err := buf.Write(utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(buf)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return buf.Flush()
}

// ReadCSV loads a CSV written by Write, or any comma separated file whose
// first record is the header. A leading BOM is dropped.
func ReadCSV(path string) (*domain.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("file " + filepath.Base(path))
		}
		return nil, errors.NewStorageError("failed to read csv", err).WithContext("path", path)
	}

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("malformed csv", err).WithContext("path", path)
	}
	if len(records) == 0 {
		return nil, errors.NewParsingError("csv has no header row", nil).WithContext("path", path)
	}

	rows := make([]domain.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, rec)
	}
	return domain.NewTable(records[0], rows), nil
}
