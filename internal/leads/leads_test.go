package leads

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadlens/internal/config"
	"leadlens/internal/errors"
	"leadlens/pkg/contracts/domain"
)

func newTestAnalyst() *Analyst {
	return NewAnalyst(config.DefaultRules(), nil)
}

func leadsTable() *domain.Table {
	return domain.NewTable(
		[]string{"Country", "Lead Stage", "Industry Vertical", "Last Activity", "Role", "Email", "Region Specific"},
		[]domain.Row{
			{"UAE", "Open", "Banking", "Email Bounced", "HR Manager", "a@x.com", "Others"},
			{"Saudi Arabia", "Won", "Energy", "Email Opened", "CIO", "", "ME"},
			{"United Kingdom", "Open", "Retail", "Page Visited", "Chief Financial Officer", "b@x.com", ""},
			{"Germany", "Lost", "Banking", "Hard Bounce", "IT Director", "", "EU"},
			{"The Netherlands", "", "", "email bounced", "Talent Acquisition", "c@x.com", "USA"},
			{"India", "Closure", "Retail", "", "CEO", "", ""},
		},
	)
}

func TestActive_ExampleScenario(t *testing.T) {
	table := domain.NewTable(
		[]string{"Country", "Lead Stage"},
		[]domain.Row{{"UAE", "Open"}, {"UAE", "Won"}, {"UK", "Open"}, {"Germany", "Lost"}},
	)
	rules := config.DefaultRules()
	rules.InactiveStages = []string{"Won", "Lost"}

	report, err := NewAnalyst(rules, nil).Active(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 2, report.Active)
	assert.Equal(t, 2, report.Inactive)

	byCountry, ok := report.Breakdown("Country")
	require.True(t, ok)
	assert.Equal(t, []domain.ValueCount{
		{Value: "UAE", Count: 1, Percent: 50},
		{Value: "UK", Count: 1, Percent: 50},
	}, byCountry.Entries)

	assert.Contains(t, report.Skipped, "Industry Vertical")
	assert.Contains(t, report.Skipped, "Region Specific")
}

func TestActive_MissingStageIsActive(t *testing.T) {
	report, err := newTestAnalyst().Active(context.Background(), leadsTable())
	require.NoError(t, err)

	// Open, Open and the blank stage
	assert.Equal(t, 3, report.Active)
	assert.Equal(t, report.Total, report.Active+report.Inactive)
	assert.InDelta(t, 50.0, report.ActivePercent, 1e-9)

	metrics := map[string]interface{}{}
	for _, m := range report.Metrics {
		metrics[m.Name] = m.Value
	}
	assert.Equal(t, 3, metrics["Leads with Email"])
	assert.Equal(t, 3, metrics["Countries Represented"])
	assert.Equal(t, "50.00%", metrics["Active % of Total Dataset"])
	assert.NotContains(t, metrics, "Leads with Phone")
}

func manyCountries(n int, role string) *domain.Table {
	rows := make([]domain.Row, n)
	for i := range rows {
		rows[i] = domain.Row{fmt.Sprintf("Country %02d", i), "Open", role}
	}
	return domain.NewTable([]string{"Country", "Lead Stage", "Role"}, rows)
}

func TestActive_CountryBreakdownIsComplete(t *testing.T) {
	rules := config.DefaultRules()
	rules.TopCountries = 25

	report, err := NewAnalyst(rules, nil).Active(context.Background(), manyCountries(30, "CEO"))
	require.NoError(t, err)

	countries, ok := report.Breakdown("Country")
	require.True(t, ok)
	assert.Len(t, countries.Entries, 30)
	assert.Equal(t, report.Active, countries.Sum())

	sum := 0.0
	for _, e := range countries.Entries {
		sum += e.Percent
	}
	assert.InDelta(t, 100, sum, 1e-9)
	assert.Len(t, countries.Head(rules.TopCountries).Entries, 25)
	assert.Len(t, countries.Entries, 30, "Head does not truncate the breakdown")
}

func TestActive_MissingStageColumn(t *testing.T) {
	table := domain.NewTable([]string{"Country"}, []domain.Row{{"UAE"}})

	_, err := newTestAnalyst().Active(context.Background(), table)
	require.Error(t, err)
	assert.True(t, errors.IsColumnMissing(err))
}

func TestBounced(t *testing.T) {
	report, err := newTestAnalyst().Bounced(context.Background(), leadsTable())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Bounced)
	assert.Equal(t, 3, report.Table.Len())
	assert.Equal(t, report.Bounced, report.ByCountry.Sum())

	emailBounced, ok := report.ActivityTypes.Lookup("Email Bounced")
	require.True(t, ok)
	assert.Equal(t, 1, emailBounced.Count)

	require.NotNil(t, report.CountryActivity)
	assert.Len(t, report.CountryActivity.Groups, 3)
}

func TestBounced_WithoutCountry(t *testing.T) {
	table := domain.NewTable([]string{"Last Activity"}, []domain.Row{{"Bounced"}, {"Opened"}})

	report, err := newTestAnalyst().Bounced(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Bounced)
	assert.Nil(t, report.ByCountry)
	assert.Nil(t, report.CountryActivity)

	_, err = newTestAnalyst().Bounced(context.Background(), domain.NewTable([]string{"Country"}, nil))
	assert.True(t, errors.IsColumnMissing(err))
}

func TestRoles(t *testing.T) {
	report, err := newTestAnalyst().Roles(context.Background(), leadsTable())
	require.NoError(t, err)

	counts := map[string]int{}
	for _, c := range report.Categories {
		counts[c.Name] = c.Count
	}
	assert.Equal(t, map[string]int{
		"HR Leads":      2, // HR Manager, Talent Acquisition
		"IT Leads":      2, // CIO, IT Director
		"Finance Leads": 1,
		"CEO":           1,
		"CFO":           1,
	}, counts)

	assert.Equal(t, 7, report.TotalRow.Total)
	assert.Equal(t, []string{"HR Leads", "IT Leads", "Finance Leads", "CEO", "CFO"}, report.Pivot.Labels)
	assert.Equal(t, "United Kingdom", report.Pivot.Rows[0].Key)
	assert.Equal(t, 2, report.Pivot.Rows[0].Total)

	_, err = newTestAnalyst().Roles(context.Background(), domain.NewTable([]string{"Country"}, nil))
	assert.True(t, errors.IsColumnMissing(err))
}

func TestRoles_CountryRows(t *testing.T) {
	report, err := newTestAnalyst().Roles(context.Background(), manyCountries(25, "CEO"))
	require.NoError(t, err)

	ceo, ok := report.Category("CEO")
	require.True(t, ok)
	assert.Len(t, ceo.ByCountry.Entries, 25)

	rows := report.CountryRows()
	require.Len(t, rows, roleCountryLimit)
	assert.Equal(t, "CEO", rows[0].Category)
	assert.Equal(t, 1, rows[0].Count)
	assert.InDelta(t, 4.0, rows[0].Percent, 1e-9)
}

func TestRegions_Reclassify(t *testing.T) {
	update, err := newTestAnalyst().Regions(context.Background(), leadsTable())
	require.NoError(t, err)

	regions, _ := update.Table.ColumnValues("Region Specific")
	assert.Equal(t, []string{"ME", "ME", "EU", "EU", "EU", ""}, regions)

	assert.Equal(t, 5, update.Matched)
	assert.Equal(t, 3, update.Updated)
	assert.Equal(t, 2, update.AlreadyCorrect)
	assert.False(t, update.ColumnCreated)
	assert.Equal(t, domain.RegionChange{Row: 0, Country: "UAE", Before: "Others", After: "ME"}, update.Changes[0])

	for _, status := range update.Countries {
		assert.True(t, status.Success, status.Country)
	}

	eu, ok := update.Distribution.Lookup("EU")
	require.True(t, ok)
	assert.Equal(t, 3, eu.Count)

	original, _ := leadsTable().ColumnValues("Region Specific")
	assert.Equal(t, "Others", original[0], "input table is not modified")
}

func TestRegions_Idempotent(t *testing.T) {
	a := newTestAnalyst()

	once, err := a.Regions(context.Background(), leadsTable())
	require.NoError(t, err)
	twice, err := a.Regions(context.Background(), once.Table)
	require.NoError(t, err)

	assert.Equal(t, once.Table, twice.Table)
	assert.Equal(t, 0, twice.Updated)
	assert.Empty(t, twice.Changes)
	assert.Equal(t, once.Matched, twice.AlreadyCorrect)
}

func TestRegions_OnlySelected(t *testing.T) {
	update, err := newTestAnalyst().Regions(context.Background(), leadsTable(), "me")
	require.NoError(t, err)

	regions, _ := update.Table.ColumnValues("Region Specific")
	assert.Equal(t, []string{"ME", "ME", "", "EU", "USA", ""}, regions)

	_, err = newTestAnalyst().Regions(context.Background(), leadsTable(), "APAC")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestRegions_CreatesColumn(t *testing.T) {
	table := domain.NewTable([]string{"Country"}, []domain.Row{{"Qatar"}, {"Brazil"}})

	update, err := newTestAnalyst().Regions(context.Background(), table)
	require.NoError(t, err)

	assert.True(t, update.ColumnCreated)
	regions, _ := update.Table.ColumnValues("Region Specific")
	assert.Equal(t, []string{"ME", ""}, regions)
	assert.False(t, table.HasColumn("Region Specific"))
}

func TestRegionClassifier_Classify(t *testing.T) {
	c, err := NewRegionClassifier(config.DefaultRules())
	require.NoError(t, err)

	tests := []struct {
		country string
		want    string
		ok      bool
	}{
		{"UAE", "ME", true},
		{"united arab emirates", "ME", true},
		{" KSA ", "ME", true},
		{"Holland", "EU", true},
		{"UK", "EU", true},
		{"United States", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			got, ok := c.Classify(tt.country)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, []string{"ME", "EU"}, c.Labels())
}
