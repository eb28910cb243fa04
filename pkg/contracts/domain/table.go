package domain

import "strings"

// Row is one spreadsheet record; cells are positional and aligned with Table.Columns
type Row []string

// Table is an in-memory sheet: ordered column names plus rows of string cells.
// A cell whose trimmed value is empty is missing.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewTable builds a table, padding or truncating every row to the column count
func NewTable(columns []string, rows []Row) *Table {
	t := &Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([]Row, 0, len(rows)),
	}
	for _, r := range rows {
		out := make(Row, len(t.Columns))
		copy(out, r)
		t.Rows = append(t.Rows, out)
	}
	return t
}

// IsMissing reports whether a cell value counts as null
func IsMissing(v string) bool {
	return strings.TrimSpace(v) == ""
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the named column exists
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Value returns the cell at (row, col), or "" when out of range
func (t *Table) Value(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// ColumnValues returns a copy of the named column
func (t *Table) ColumnValues(name string) ([]string, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	values := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		values[i] = r[idx]
	}
	return values, true
}

// Select returns a new table holding copies of the rows at indices, in order
func (t *Table) Select(indices []int) *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, 0, len(indices)),
	}
	for _, i := range indices {
		out.Rows = append(out.Rows, append(Row(nil), t.Rows[i]...))
	}
	return out
}

// Head returns the first n rows as a new table
func (t *Table) Head(n int) *Table {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return t.Select(indices)
}

// Clone returns a deep copy
func (t *Table) Clone() *Table {
	return NewTable(t.Columns, t.Rows)
}

// EnsureColumn returns the index of the named column, appending an empty
// column when it does not exist yet
func (t *Table) EnsureColumn(name string) int {
	if idx := t.ColumnIndex(name); idx >= 0 {
		return idx
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], "")
	}
	return len(t.Columns) - 1
}

// Set writes a cell value
func (t *Table) Set(row, col int, v string) {
	t.Rows[row][col] = v
}
