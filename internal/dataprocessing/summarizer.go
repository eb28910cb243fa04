package dataprocessing

import (
	"log/slog"
	"sort"
	"strings"

	"leadlens/pkg/contracts/domain"
)

// Summarizer builds aggregates, cross tabs and pivots from tables.
// It is the single place where value counting and percentage math happen.
type Summarizer struct {
	logger       *slog.Logger
	missingLabel string
	othersLabel  string
}

// SummarizerConfig holds the labels used for synthetic buckets
type SummarizerConfig struct {
	MissingLabel string // bucket for null cells
	OthersLabel  string // bucket for entries folded by OthersAfter
}

// DefaultSummarizerConfig returns the default bucket labels
func DefaultSummarizerConfig() SummarizerConfig {
	return SummarizerConfig{
		MissingLabel: "Missing/Unknown",
		OthersLabel:  "Others",
	}
}

// CountOptions shapes a ValueCounts result
type CountOptions struct {
	// Limit keeps only the first N entries; percentages stay relative to the full table
	Limit int
	// OthersAfter folds every entry after the first N into one Others entry
	OthersAfter int
	// ExcludeMissing drops the missing bucket
	ExcludeMissing bool
}

// NewSummarizer creates a summarizer
func NewSummarizer(logger *slog.Logger, config SummarizerConfig) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultSummarizerConfig()
	if config.MissingLabel == "" {
		config.MissingLabel = defaults.MissingLabel
	}
	if config.OthersLabel == "" {
		config.OthersLabel = defaults.OthersLabel
	}
	return &Summarizer{
		logger:       logger.With(slog.String("component", "summarizer")),
		missingLabel: config.MissingLabel,
		othersLabel:  config.OthersLabel,
	}
}

// MissingLabel returns the label of the null bucket
func (s *Summarizer) MissingLabel() string {
	return s.missingLabel
}

// ValueCounts counts the trimmed values of column. Entries are sorted by
// count descending, then value ascending; nulls are counted under the missing
// label unless excluded. Without Limit the percentages sum to 100.
func (s *Summarizer) ValueCounts(t *domain.Table, column string, opts CountOptions) (*domain.Aggregate, error) {
	idx, err := columnIndex(t, column)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, row := range t.Rows {
		v := strings.TrimSpace(row[idx])
		if v == "" {
			if opts.ExcludeMissing {
				continue
			}
			v = s.missingLabel
		}
		counts[v]++
	}

	entries := make([]domain.ValueCount, 0, len(counts))
	for v, n := range counts {
		entries = append(entries, domain.ValueCount{Value: v, Count: n})
	}
	sortEntries(entries)

	if opts.OthersAfter > 0 && len(entries) > opts.OthersAfter {
		folded := domain.ValueCount{Value: s.othersLabel}
		for _, e := range entries[opts.OthersAfter:] {
			folded.Count += e.Count
		}
		entries = append(entries[:opts.OthersAfter:opts.OthersAfter], folded)
	}
	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}

	total := t.Len()
	for i := range entries {
		entries[i].Percent = percent(entries[i].Count, total)
	}

	return &domain.Aggregate{Column: column, Total: total, Entries: entries}, nil
}

// CrossTab counts rows per (first, second) value pair, sorted by count descending
func (s *Summarizer) CrossTab(t *domain.Table, first, second string) (*domain.CrossTab, error) {
	fi, err := columnIndex(t, first)
	if err != nil {
		return nil, err
	}
	si, err := columnIndex(t, second)
	if err != nil {
		return nil, err
	}

	type pair struct{ a, b string }
	counts := make(map[pair]int)
	for _, row := range t.Rows {
		counts[pair{s.label(row[fi]), s.label(row[si])}]++
	}

	groups := make([]domain.GroupCount, 0, len(counts))
	for p, n := range counts {
		groups = append(groups, domain.GroupCount{First: p.a, Second: p.b, Count: n})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		if groups[i].First != groups[j].First {
			return groups[i].First < groups[j].First
		}
		return groups[i].Second < groups[j].Second
	})

	return &domain.CrossTab{FirstColumn: first, SecondColumn: second, Groups: groups}, nil
}

// LabeledTable is one named subset fed to Pivot
type LabeledTable struct {
	Label string
	Table *domain.Table
}

// Pivot counts keyColumn values in every labeled subset. Rows are sorted by
// total descending and cut to the first limit (0 keeps all). Null keys are skipped.
// A subset lacking keyColumn contributes nothing.
func (s *Summarizer) Pivot(keyColumn string, subsets []LabeledTable, limit int) *domain.Pivot {
	p := &domain.Pivot{KeyColumn: keyColumn, Labels: make([]string, 0, len(subsets))}
	rows := make(map[string]*domain.PivotRow)

	for _, sub := range subsets {
		p.Labels = append(p.Labels, sub.Label)
		idx := sub.Table.ColumnIndex(keyColumn)
		if idx < 0 {
			s.logger.Debug("pivot subset lacks key column",
				slog.String("label", sub.Label),
				slog.String("column", keyColumn))
			continue
		}
		for _, row := range sub.Table.Rows {
			key := strings.TrimSpace(row[idx])
			if key == "" {
				continue
			}
			r, ok := rows[key]
			if !ok {
				r = &domain.PivotRow{Key: key, Counts: make(map[string]int)}
				rows[key] = r
			}
			r.Counts[sub.Label]++
			r.Total++
		}
	}

	p.Rows = make([]domain.PivotRow, 0, len(rows))
	for _, r := range rows {
		p.Rows = append(p.Rows, *r)
	}
	sort.Slice(p.Rows, func(i, j int) bool {
		if p.Rows[i].Total != p.Rows[j].Total {
			return p.Rows[i].Total > p.Rows[j].Total
		}
		return p.Rows[i].Key < p.Rows[j].Key
	})
	if limit > 0 && len(p.Rows) > limit {
		p.Rows = p.Rows[:limit]
	}
	return p
}

func (s *Summarizer) label(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return s.missingLabel
	}
	return v
}

func sortEntries(entries []domain.ValueCount) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Value < entries[j].Value
	})
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}
