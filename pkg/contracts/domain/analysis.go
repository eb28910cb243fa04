package domain

import (
	"encoding/json"
	"math"
)

// ColumnKind is the inferred type of a column
type ColumnKind string

const (
	KindNumeric ColumnKind = "numeric"
	KindText    ColumnKind = "text"
	KindEmpty   ColumnKind = "empty"
)

// ColumnInfo describes one column of a loaded table
type ColumnInfo struct {
	Name    string     `json:"name"`
	Kind    ColumnKind `json:"kind"`
	NonNull int        `json:"non_null"`
	Missing int        `json:"missing"`
}

// BasicInfo is the shape of a loaded table
type BasicInfo struct {
	Rows     int          `json:"rows"`
	Columns  int          `json:"columns"`
	Names    []string     `json:"names"`
	Details  []ColumnInfo `json:"details"`
	MemoryMB float64      `json:"memory_mb"`
}

// NumericSummary holds descriptive statistics for a numeric column
type NumericSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// CategoricalSummary holds frequency statistics for a text column
type CategoricalSummary struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
	Unique int    `json:"unique"`
	Top    string `json:"top"`
	Freq   int    `json:"freq"`
}

// DuplicateReport counts rows identical to an earlier row
type DuplicateReport struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// MissingColumn is the missing-value count of one column
type MissingColumn struct {
	Column  string  `json:"column"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// MissingReport summarizes null cells over the whole table
type MissingReport struct {
	Total   int             `json:"total"`
	Percent float64         `json:"percent"`
	Columns []MissingColumn `json:"columns"`
}

// CorrelationMatrix is a square Pearson matrix over numeric columns.
// Values[i][j] is NaN when the pair has fewer than two complete observations.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// MarshalJSON writes NaN coefficients as null
func (m CorrelationMatrix) MarshalJSON() ([]byte, error) {
	values := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		values[i] = make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				values[i][j] = &row[j]
			}
		}
	}
	return json.Marshal(struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}{m.Columns, values})
}

// Profile bundles every descriptive statistic of a table
type Profile struct {
	Source      string               `json:"source"`
	Sheet       string               `json:"sheet"`
	Info        BasicInfo            `json:"info"`
	Numeric     []NumericSummary     `json:"numeric"`
	Categorical []CategoricalSummary `json:"categorical"`
	Duplicates  DuplicateReport      `json:"duplicates"`
	Missing     MissingReport        `json:"missing"`
	Correlation *CorrelationMatrix   `json:"correlation,omitempty"`
}
