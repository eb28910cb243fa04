package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadlens/internal/errors"
	"leadlens/pkg/contracts/domain"
)

func TestPartition_CoversTable(t *testing.T) {
	table := domain.NewTable(
		[]string{"Country", "Lead Stage", "Last Activity"},
		[]domain.Row{
			{"UAE", "Open", "Email Bounced"},
			{"UAE", "Won", ""},
			{"UK", "", "Email Opened"},
			{"Germany", "Lost", "EMAIL BOUNCE"},
			{"", "Closure", "Page Visited"},
		},
	)

	stages := []string{"Won", "Lost", "Closure"}
	builders := map[string]func() (Predicate, error){
		"in set":       func() (Predicate, error) { return InSet(table, "Lead Stage", stages) },
		"not in set":   func() (Predicate, error) { return NotInSet(table, "Lead Stage", stages) },
		"contains":     func() (Predicate, error) { return ContainsFold(table, "Last Activity", "bounce") },
		"any contains": func() (Predicate, error) { return AnyContainsFold(table, "Country", []string{"u", "many"}) },
	}

	for name, build := range builders {
		t.Run(name, func(t *testing.T) {
			pred, err := build()
			require.NoError(t, err)

			match, rest := Partition(table, pred)
			assert.Equal(t, table.Len(), match.Len()+rest.Len())
			assert.Equal(t, Count(table, pred), match.Len())
			assert.Equal(t, table.Columns, match.Columns)
			assert.Equal(t, table.Columns, rest.Columns)
		})
	}
}

func TestNotInSet_ExampleScenario(t *testing.T) {
	table := exampleLeads()

	pred, err := NotInSet(table, "Lead Stage", []string{"Won", "Lost"})
	require.NoError(t, err)

	active := Filter(table, pred)
	require.Equal(t, 2, active.Len())
	countries, _ := active.ColumnValues("Country")
	assert.Equal(t, []string{"UAE", "UK"}, countries)
}

func TestNotInSet_MissingCountsAsOutside(t *testing.T) {
	table := domain.NewTable([]string{"Lead Stage"}, []domain.Row{{""}, {" Won "}, {"Open"}})

	pred, err := NotInSet(table, "Lead Stage", []string{"Won"})
	require.NoError(t, err)

	assert.True(t, pred(table.Rows[0]))
	assert.False(t, pred(table.Rows[1]), "set membership trims cells")
	assert.True(t, pred(table.Rows[2]))
}

func TestContainsFold(t *testing.T) {
	table := domain.NewTable([]string{"Role"}, []domain.Row{
		{"IT Manager"},
		{"Digital Marketing"},
		{"Head of IT"},
		{""},
	})

	pred, err := AnyContainsFold(table, "Role", []string{"it "})
	require.NoError(t, err)

	assert.True(t, pred(table.Rows[0]))
	assert.False(t, pred(table.Rows[1]), "keywords keep their trailing space")
	assert.False(t, pred(table.Rows[2]))
	assert.False(t, pred(table.Rows[3]))
}

func TestPredicates_MissingColumn(t *testing.T) {
	table := exampleLeads()

	_, err := ContainsFold(table, "Last Activity", "bounce")
	require.Error(t, err)
	assert.True(t, errors.IsColumnMissing(err))

	_, err = NotInSet(table, "Role", nil)
	assert.True(t, errors.IsColumnMissing(err))

	_, err = CountUnique(table, "Industry Vertical")
	assert.True(t, errors.IsColumnMissing(err))
}

func TestCountPresentAndUnique(t *testing.T) {
	table := domain.NewTable([]string{"Email"}, []domain.Row{{"a@x.com"}, {""}, {"a@x.com"}, {"b@x.com"}})

	present, err := CountPresent(table, "Email")
	require.NoError(t, err)
	assert.Equal(t, 3, present)

	unique, err := CountUnique(table, "Email")
	require.NoError(t, err)
	assert.Equal(t, 2, unique)
}
