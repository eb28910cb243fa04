package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadlens/internal/config"
	"leadlens/internal/leads"
	"leadlens/pkg/contracts/domain"
)

func TestFoldOthers(t *testing.T) {
	agg := &domain.Aggregate{
		Column: "Lead Stage",
		Total:  10,
		Entries: []domain.ValueCount{
			{Value: "Open", Count: 5, Percent: 50},
			{Value: "Nurture", Count: 3, Percent: 30},
			{Value: "Qualified", Count: 1, Percent: 10},
			{Value: "Missing/Unknown", Count: 1, Percent: 10},
		},
	}

	folded := foldOthers(agg, 2, "Others")
	require.Len(t, folded.Entries, 3)
	assert.Equal(t, "Others", folded.Entries[2].Value)
	assert.Equal(t, 2, folded.Entries[2].Count)
	assert.InDelta(t, 20.0, folded.Entries[2].Percent, 1e-9)
	assert.Equal(t, agg.Sum(), folded.Sum())
	assert.Len(t, agg.Entries, 4, "input is not modified")

	assert.Same(t, agg, foldOthers(agg, 4, "Others"))
	assert.Same(t, agg, foldOthers(agg, 0, "Others"))
	assert.Nil(t, foldOthers(nil, 3, "Others"))
}

func TestFileSafe(t *testing.T) {
	assert.Equal(t, "Annual_Revenue", fileSafe("Annual Revenue"))
	assert.Equal(t, "Deal_Size____", fileSafe("Deal Size (€)"))
	assert.Equal(t, "Größe", fileSafe("Größe"))
}

func TestActiveCharts_MissingBreakdowns(t *testing.T) {
	report := &leads.ActiveReport{
		Breakdowns: []leads.Breakdown{{
			Label:  "Country",
			Column: domain.ColumnCountry,
			Aggregate: &domain.Aggregate{
				Column:  domain.ColumnCountry,
				Total:   2,
				Entries: []domain.ValueCount{{Value: "UAE", Count: 1, Percent: 50}, {Value: "UK", Count: 1, Percent: 50}},
			},
		}},
	}

	set := activeCharts(report, config.Default().Charts, "Others")
	require.Len(t, set, 5)
	assert.Equal(t, config.ChartActiveByCountry, set[0].Name)
	assert.False(t, set[0].Empty())
	assert.True(t, set[3].Empty(), "no industry breakdown")
}

func TestRoleCharts(t *testing.T) {
	report := &leads.RoleReport{
		Categories: []leads.RoleCategoryResult{
			{Name: "HR Leads", Count: 2, Percent: 50},
			{Name: "CEO", Count: 1, Percent: 25},
		},
		Pivot: &domain.Pivot{
			Labels: []string{"HR Leads", "CEO"},
			Rows: []domain.PivotRow{
				{Key: "UAE", Counts: map[string]int{"HR Leads": 2}},
				{Key: "UK", Counts: map[string]int{"CEO": 1}},
			},
		},
	}

	set := roleCharts(report)
	require.Len(t, set, 2)
	assert.Equal(t, []string{"HR Leads", "CEO"}, set[0].Labels)
	assert.Equal(t, []float64{2, 1}, set[0].Values)

	grouped := set[1]
	assert.Equal(t, []string{"UAE", "UK"}, grouped.Labels)
	require.Len(t, grouped.Series, 2)
	assert.Equal(t, []float64{2, 0}, grouped.Series[0].Values)
	assert.Equal(t, []float64{0, 1}, grouped.Series[1].Values)
}
