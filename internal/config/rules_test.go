package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesConfig_NormalizeCountry(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		in   string
		want string
	}{
		{"UAE", "United Arab Emirates"},
		{" uae ", "United Arab Emirates"},
		{"United Arab Emirates", "United Arab Emirates"},
		{"The Netherlands", "Netherlands"},
		{"uk", "United Kingdom"},
		{"Germany", "Germany"},
		{"  France ", "France"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.NormalizeCountry(tt.in))
		})
	}
}

func TestRulesConfig_NormalizeCountry_CaseCollision(t *testing.T) {
	rules := DefaultRules()
	rules.CountryAliases = map[string]string{
		"Uk": "Ukraine",
		"UK": "United Kingdom",
	}

	assert.Equal(t, "United Kingdom", rules.NormalizeCountry("UK"))
	assert.Equal(t, "Ukraine", rules.NormalizeCountry("Uk"))
	for i := 0; i < 20; i++ {
		assert.Equal(t, "United Kingdom", rules.NormalizeCountry("uk"), "folded match picks the smallest alias")
	}
}

func TestRulesConfig_RegionsFor(t *testing.T) {
	rules := DefaultRules()

	all, err := rules.RegionsFor()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	eu, err := rules.RegionsFor("eu")
	require.NoError(t, err)
	require.Len(t, eu, 1)
	assert.Equal(t, "EU", eu[0].Label)

	_, err = rules.RegionsFor("LATAM")
	assert.Error(t, err)
}

func TestRulesConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *RulesConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(r *RulesConfig) {}},
		{name: "no inactive stages", mutate: func(r *RulesConfig) { r.InactiveStages = nil }, wantErr: true},
		{name: "blank bounce keyword", mutate: func(r *RulesConfig) { r.BounceKeyword = "  " }, wantErr: true},
		{name: "region without countries", mutate: func(r *RulesConfig) {
			r.Regions = append(r.Regions, RegionRule{Label: "USA"})
		}, wantErr: true},
		{name: "alias collides across regions", mutate: func(r *RulesConfig) {
			r.Regions[1].Countries = append(r.Regions[1].Countries, "UAE")
		}, wantErr: true},
		{name: "aliases differing by case disagree", mutate: func(r *RulesConfig) {
			r.CountryAliases["uae"] = "Uganda"
		}, wantErr: true},
		{name: "aliases differing by case agree", mutate: func(r *RulesConfig) {
			r.CountryAliases["uae"] = "united arab emirates"
		}},
		{name: "role category without keywords", mutate: func(r *RulesConfig) {
			r.RoleCategories = append(r.RoleCategories, RoleCategory{Name: "COO"})
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := DefaultRules()
			tt.mutate(&rules)
			err := rules.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
