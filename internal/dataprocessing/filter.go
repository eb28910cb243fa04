package dataprocessing

import (
	"strings"

	"leadlens/internal/errors"
	"leadlens/pkg/contracts/domain"
)

// Predicate selects rows of the table it was built against
type Predicate func(row domain.Row) bool

// ContainsFold matches rows whose column contains substr, ignoring case.
// Missing cells never match.
func ContainsFold(t *domain.Table, column, substr string) (Predicate, error) {
	return AnyContainsFold(t, column, []string{substr})
}

// AnyContainsFold matches rows whose column contains any of keywords,
// ignoring case. Keywords are not trimmed.
func AnyContainsFold(t *domain.Table, column string, keywords []string) (Predicate, error) {
	idx, err := columnIndex(t, column)
	if err != nil {
		return nil, err
	}
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}
	return func(row domain.Row) bool {
		cell := row[idx]
		if domain.IsMissing(cell) {
			return false
		}
		cell = strings.ToLower(cell)
		for _, k := range lowered {
			if strings.Contains(cell, k) {
				return true
			}
		}
		return false
	}, nil
}

// InSet matches rows whose trimmed column value is exactly one of values
func InSet(t *domain.Table, column string, values []string) (Predicate, error) {
	idx, err := columnIndex(t, column)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.TrimSpace(v)] = struct{}{}
	}
	return func(row domain.Row) bool {
		_, ok := set[strings.TrimSpace(row[idx])]
		return ok && !domain.IsMissing(row[idx])
	}, nil
}

// NotInSet is the negation of InSet; missing cells are not in the set
func NotInSet(t *domain.Table, column string, values []string) (Predicate, error) {
	in, err := InSet(t, column, values)
	if err != nil {
		return nil, err
	}
	return Not(in), nil
}

// Not inverts a predicate
func Not(p Predicate) Predicate {
	return func(row domain.Row) bool { return !p(row) }
}

// Partition splits t into the rows matching pred and the rest, both in
// original order. The two lengths always add up to t.Len().
func Partition(t *domain.Table, pred Predicate) (match, rest *domain.Table) {
	var in, out []int
	for i, row := range t.Rows {
		if pred(row) {
			in = append(in, i)
		} else {
			out = append(out, i)
		}
	}
	return t.Select(in), t.Select(out)
}

// Filter returns the rows matching pred
func Filter(t *domain.Table, pred Predicate) *domain.Table {
	match, _ := Partition(t, pred)
	return match
}

// Count returns how many rows match pred
func Count(t *domain.Table, pred Predicate) int {
	n := 0
	for _, row := range t.Rows {
		if pred(row) {
			n++
		}
	}
	return n
}

// CountPresent returns how many rows have a non-missing value in column
func CountPresent(t *domain.Table, column string) (int, error) {
	idx, err := columnIndex(t, column)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, row := range t.Rows {
		if !domain.IsMissing(row[idx]) {
			n++
		}
	}
	return n, nil
}

// CountUnique returns the number of distinct non-missing values in column
func CountUnique(t *domain.Table, column string) (int, error) {
	idx, err := columnIndex(t, column)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{})
	for _, row := range t.Rows {
		if v := strings.TrimSpace(row[idx]); v != "" {
			seen[v] = struct{}{}
		}
	}
	return len(seen), nil
}

func columnIndex(t *domain.Table, column string) (int, error) {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return -1, errors.NewColumnMissingError(column)
	}
	return idx, nil
}
