package domain

// ValueCount is one category of an aggregate
type ValueCount struct {
	Value   string  `json:"value"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Aggregate is a frequency table over one column. Percent is relative to
// Total, the size of the table it was computed from.
type Aggregate struct {
	Column  string       `json:"column"`
	Total   int          `json:"total"`
	Entries []ValueCount `json:"entries"`
}

// Sum returns the count covered by the entries
func (a *Aggregate) Sum() int {
	n := 0
	for _, e := range a.Entries {
		n += e.Count
	}
	return n
}

// Head returns a copy holding the first n entries. Percentages stay
// relative to Total.
func (a *Aggregate) Head(n int) *Aggregate {
	head := *a
	if n > 0 && len(a.Entries) > n {
		head.Entries = a.Entries[:n:n]
	}
	return &head
}

// Lookup returns the entry for value
func (a *Aggregate) Lookup(value string) (ValueCount, bool) {
	for _, e := range a.Entries {
		if e.Value == value {
			return e, true
		}
	}
	return ValueCount{}, false
}

// Values and Counts split the entries for chart input
func (a *Aggregate) Values() []string {
	out := make([]string, len(a.Entries))
	for i, e := range a.Entries {
		out[i] = e.Value
	}
	return out
}

func (a *Aggregate) Counts() []float64 {
	out := make([]float64, len(a.Entries))
	for i, e := range a.Entries {
		out[i] = float64(e.Count)
	}
	return out
}

// GroupCount is one cell of a two-column cross tab
type GroupCount struct {
	First  string `json:"first"`
	Second string `json:"second"`
	Count  int    `json:"count"`
}

// CrossTab holds grouped counts over two columns, sorted by count descending
type CrossTab struct {
	FirstColumn  string       `json:"first_column"`
	SecondColumn string       `json:"second_column"`
	Groups       []GroupCount `json:"groups"`
}

// PivotRow is one row key of a pivot with a count per column label
type PivotRow struct {
	Key    string         `json:"key"`
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

// Pivot is a count matrix: row keys by ordered column labels
type Pivot struct {
	KeyColumn string     `json:"key_column"`
	Labels    []string   `json:"labels"`
	Rows      []PivotRow `json:"rows"`
}

// Totals sums every label across the rows
func (p *Pivot) Totals() PivotRow {
	total := PivotRow{Key: "TOTAL", Counts: make(map[string]int, len(p.Labels))}
	for _, r := range p.Rows {
		for _, l := range p.Labels {
			total.Counts[l] += r.Counts[l]
		}
		total.Total += r.Total
	}
	return total
}
