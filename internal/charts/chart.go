package charts

import (
	"leadlens/pkg/contracts/domain"
)

// Kind selects how a chart is drawn
type Kind string

const (
	KindBar        Kind = "bar"
	KindHBar       Kind = "hbar"
	KindPie        Kind = "pie"
	KindGroupedBar Kind = "grouped_bar"
	KindHistogram  Kind = "histogram"
	KindHeatMap    Kind = "heatmap"
)

// Series is one named set of values in a grouped bar chart
type Series struct {
	Name   string
	Values []float64
}

// Chart describes one image. Which data fields are read depends on Kind:
// bar, hbar and pie use Labels/Values (and Percents when set), grouped bars
// use Labels/Series, histograms use Samples and heat maps use Labels/Matrix.
type Chart struct {
	Name   string // output file name
	Title  string
	XLabel string
	YLabel string
	Kind   Kind

	Labels   []string
	Values   []float64
	Percents []float64 // bar labels read "count (pct%)" when set
	Series   []Series
	Samples  []float64
	Matrix   [][]float64
}

// Empty reports whether the chart has nothing to draw
func (c Chart) Empty() bool {
	switch c.Kind {
	case KindHistogram:
		return len(c.Samples) == 0
	case KindHeatMap:
		return len(c.Matrix) == 0
	case KindGroupedBar:
		return len(c.Labels) == 0 || len(c.Series) == 0
	default:
		return len(c.Values) == 0
	}
}

// FromAggregate builds a bar or pie chart from the first limit entries of an
// aggregate (0 keeps all). withPercent adds the share to every bar label.
func FromAggregate(name, title string, kind Kind, agg *domain.Aggregate, limit int, withPercent bool) Chart {
	c := Chart{Name: name, Title: title, Kind: kind}
	if agg == nil {
		return c
	}
	entries := agg.Entries
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for _, e := range entries {
		c.Labels = append(c.Labels, e.Value)
		c.Values = append(c.Values, float64(e.Count))
		if withPercent {
			c.Percents = append(c.Percents, e.Percent)
		}
	}
	switch kind {
	case KindHBar:
		c.XLabel, c.YLabel = "Count", agg.Column
	default:
		c.XLabel, c.YLabel = agg.Column, "Count"
	}
	return c
}
