package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"leadlens/internal/errors"
	"leadlens/pkg/contracts/domain"
)

// Per-cell bookkeeping assumed by the memory estimate (string header + slice slot)
const cellOverheadBytes = 24

// Analyzer computes descriptive statistics over a loaded table
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger.With(slog.String("component", "analyzer"))}
}

// Profile runs every statistic over the dataset. A table with fewer than two
// numeric columns has no correlation matrix; that is logged, not returned.
func (a *Analyzer) Profile(ctx context.Context, ds *Dataset) (*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t := ds.Table

	profile := &domain.Profile{
		Source:      ds.Path,
		Sheet:       ds.Sheet,
		Info:        a.BasicInfo(t),
		Numeric:     a.NumericSummary(t),
		Categorical: a.CategoricalSummary(t),
		Duplicates:  a.Duplicates(t),
		Missing:     a.Missing(t),
	}

	corr, err := a.Correlation(t)
	switch {
	case err == nil:
		profile.Correlation = corr
	case errors.IsType(err, errors.ErrTypeValidation):
		a.logger.InfoContext(ctx, "correlation skipped", slog.String("reason", err.Error()))
	default:
		return nil, err
	}

	a.logger.InfoContext(ctx, "profile computed",
		slog.Int("rows", profile.Info.Rows),
		slog.Int("numeric_columns", len(profile.Numeric)),
		slog.Int("text_columns", len(profile.Categorical)),
		slog.Int("duplicates", profile.Duplicates.Count))

	return profile, nil
}

// BasicInfo reports shape, column kinds, null counts and an approximate memory size
func (a *Analyzer) BasicInfo(t *domain.Table) domain.BasicInfo {
	info := domain.BasicInfo{
		Rows:    t.Len(),
		Columns: len(t.Columns),
		Names:   append([]string(nil), t.Columns...),
		Details: make([]domain.ColumnInfo, 0, len(t.Columns)),
	}

	var bytes int
	for _, row := range t.Rows {
		for _, cell := range row {
			bytes += len(cell) + cellOverheadBytes
		}
	}
	info.MemoryMB = float64(bytes) / (1024 * 1024)

	for i, name := range t.Columns {
		values := columnAt(t, i)
		missing := 0
		for _, v := range values {
			if domain.IsMissing(v) {
				missing++
			}
		}
		info.Details = append(info.Details, domain.ColumnInfo{
			Name:    name,
			Kind:    ColumnKind(values),
			NonNull: len(values) - missing,
			Missing: missing,
		})
	}
	return info
}

// ColumnKind is numeric when every non-missing value parses as a finite
// number, empty when nothing is present, text otherwise
func ColumnKind(values []string) domain.ColumnKind {
	present := 0
	for _, v := range values {
		if domain.IsMissing(v) {
			continue
		}
		present++
		if _, ok := ParseNumber(v); !ok {
			return domain.KindText
		}
	}
	if present == 0 {
		return domain.KindEmpty
	}
	return domain.KindNumeric
}

// ParseNumber parses a finite float from a cell
func ParseNumber(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NumericColumns returns the names of the numeric columns in table order
func NumericColumns(t *domain.Table) []string {
	var names []string
	for i, name := range t.Columns {
		if ColumnKind(columnAt(t, i)) == domain.KindNumeric {
			names = append(names, name)
		}
	}
	return names
}

// NumericSummary describes every numeric column: count, mean, sample std,
// min, linear-interpolated quartiles and max
func (a *Analyzer) NumericSummary(t *domain.Table) []domain.NumericSummary {
	var out []domain.NumericSummary
	for _, name := range NumericColumns(t) {
		values := numericValues(t, t.ColumnIndex(name))
		sort.Float64s(values)

		s := domain.NumericSummary{
			Column: name,
			Count:  len(values),
			Mean:   stat.Mean(values, nil),
			Min:    floats.Min(values),
			Q25:    quantile(values, 0.25),
			Median: quantile(values, 0.5),
			Q75:    quantile(values, 0.75),
			Max:    floats.Max(values),
		}
		// Single observations have no spread
		if len(values) > 1 {
			s.Std = stat.StdDev(values, nil)
		}
		out = append(out, s)
	}
	return out
}

// quantile interpolates linearly between the closest ranks of sorted values
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// CategoricalSummary describes every text column: non-null count, distinct
// values, the most frequent value and its frequency. Ties go to the value seen first.
func (a *Analyzer) CategoricalSummary(t *domain.Table) []domain.CategoricalSummary {
	var out []domain.CategoricalSummary
	for i, name := range t.Columns {
		values := columnAt(t, i)
		if ColumnKind(values) != domain.KindText {
			continue
		}

		counts := make(map[string]int)
		var order []string
		s := domain.CategoricalSummary{Column: name}
		for _, v := range values {
			if domain.IsMissing(v) {
				continue
			}
			s.Count++
			if counts[v] == 0 {
				order = append(order, v)
			}
			counts[v]++
		}
		s.Unique = len(order)
		for _, v := range order {
			if counts[v] > s.Freq {
				s.Top, s.Freq = v, counts[v]
			}
		}
		out = append(out, s)
	}
	return out
}

// Duplicates counts rows identical to an earlier row
func (a *Analyzer) Duplicates(t *domain.Table) domain.DuplicateReport {
	seen := make(map[string]struct{}, t.Len())
	report := domain.DuplicateReport{}
	for _, row := range t.Rows {
		key := strings.Join(row, "\x1f")
		if _, ok := seen[key]; ok {
			report.Count++
			continue
		}
		seen[key] = struct{}{}
	}
	if t.Len() > 0 {
		report.Percent = float64(report.Count) * 100 / float64(t.Len())
	}
	return report
}

// Missing counts null cells per column and over the whole table
func (a *Analyzer) Missing(t *domain.Table) domain.MissingReport {
	report := domain.MissingReport{Columns: make([]domain.MissingColumn, 0, len(t.Columns))}
	for i, name := range t.Columns {
		mc := domain.MissingColumn{Column: name}
		for _, v := range columnAt(t, i) {
			if domain.IsMissing(v) {
				mc.Count++
			}
		}
		if t.Len() > 0 {
			mc.Percent = float64(mc.Count) * 100 / float64(t.Len())
		}
		report.Total += mc.Count
		report.Columns = append(report.Columns, mc)
	}
	if cells := t.Len() * len(t.Columns); cells > 0 {
		report.Percent = float64(report.Total) * 100 / float64(cells)
	}
	return report
}

// Correlation computes the Pearson matrix over numeric columns using
// pairwise-complete observations
func (a *Analyzer) Correlation(t *domain.Table) (*domain.CorrelationMatrix, error) {
	names := NumericColumns(t)
	if len(names) < 2 {
		return nil, errors.NewAppValidationError("correlation needs at least two numeric columns").
			WithContext("numeric_columns", len(names))
	}

	idx := make([]int, len(names))
	for i, name := range names {
		idx[i] = t.ColumnIndex(name)
	}

	m := &domain.CorrelationMatrix{Columns: names, Values: make([][]float64, len(names))}
	for i := range names {
		m.Values[i] = make([]float64, len(names))
	}
	for i := range names {
		for j := i; j < len(names); j++ {
			r := pairwisePearson(t, idx[i], idx[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}

func pairwisePearson(t *domain.Table, ci, cj int) float64 {
	var x, y []float64
	for _, row := range t.Rows {
		a, okA := ParseNumber(row[ci])
		b, okB := ParseNumber(row[cj])
		if okA && okB {
			x = append(x, a)
			y = append(y, b)
		}
	}
	if len(x) < 2 || stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

func columnAt(t *domain.Table, idx int) []string {
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values
}

func numericValues(t *domain.Table, idx int) []float64 {
	var out []float64
	for _, row := range t.Rows {
		if f, ok := ParseNumber(row[idx]); ok {
			out = append(out, f)
		}
	}
	return out
}
