package config

import (
	"fmt"
	"strings"
)

// RegionRule assigns Label to every lead whose country is in Countries
type RegionRule struct {
	Label     string   `yaml:"label"`
	Countries []string `yaml:"countries"`
}

// RoleCategory matches leads whose Role contains any of Keywords.
// Keywords are matched verbatim, so trailing spaces ("it ") are significant.
type RoleCategory struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Breakdown names a column to tabulate and the label used for its sheet and chart
type Breakdown struct {
	Column string `yaml:"column"`
	Label  string `yaml:"label"`
}

// RulesConfig is the single home of the business-rule lists used by the
// lead analyses. Nothing else in the module hardcodes country sets, stage
// names or role keywords.
type RulesConfig struct {
	InactiveStages []string          `yaml:"inactive_stages" envconfig:"INACTIVE_STAGES"`
	BounceKeyword  string            `yaml:"bounce_keyword" envconfig:"BOUNCE_KEYWORD"`
	MissingLabel   string            `yaml:"missing_label" envconfig:"MISSING_LABEL"`
	OthersLabel    string            `yaml:"others_label" envconfig:"OTHERS_LABEL"`
	CountryAliases map[string]string `yaml:"country_aliases" envconfig:"COUNTRY_ALIASES"`
	TopCountries   int               `yaml:"top_countries" envconfig:"TOP_COUNTRIES" validate:"gt=0"`
	PivotCountries int               `yaml:"pivot_countries" envconfig:"PIVOT_COUNTRIES" validate:"gt=0"`

	// Structured lists are file-only
	Regions        []RegionRule   `yaml:"regions" ignored:"true"`
	RoleCategories []RoleCategory `yaml:"role_categories" ignored:"true"`
	Breakdowns     []Breakdown    `yaml:"breakdowns" ignored:"true"`
}

// DefaultRules returns the rule lists used when no config file overrides them
func DefaultRules() RulesConfig {
	return RulesConfig{
		InactiveStages: []string{"Disqualified", "Lost", "Won", "Closure - Customer", "Closure"},
		BounceKeyword:  "bounce",
		MissingLabel:   "Missing/Unknown",
		OthersLabel:    "Others",
		CountryAliases: map[string]string{
			"UAE":             "United Arab Emirates",
			"U.A.E.":          "United Arab Emirates",
			"KSA":             "Saudi Arabia",
			"UK":              "United Kingdom",
			"Great Britain":   "United Kingdom",
			"The Netherlands": "Netherlands",
			"Holland":         "Netherlands",
		},
		TopCountries:   25,
		PivotCountries: 30,
		Regions: []RegionRule{
			{
				Label:     "ME",
				Countries: []string{"Saudi Arabia", "Bahrain", "Oman", "Kuwait", "United Arab Emirates", "Qatar"},
			},
			{
				Label: "EU",
				Countries: []string{
					"Germany", "Switzerland", "Austria", "Belgium", "Netherlands", "Luxembourg",
					"Denmark", "Sweden", "Norway", "Finland", "United Kingdom",
				},
			},
		},
		RoleCategories: []RoleCategory{
			{Name: "HR Leads", Keywords: []string{"hr", "human resource", "human capital", "people", "talent"}},
			{Name: "IT Leads", Keywords: []string{"it ", "information technology", "technology", "tech ", "cio", "chief information"}},
			{Name: "Finance Leads", Keywords: []string{"finance", "financial", "cfo", "chief financial"}},
			{Name: "CEO", Keywords: []string{"ceo", "chief executive"}},
			{Name: "CFO", Keywords: []string{"cfo", "chief financial officer"}},
		},
		Breakdowns: []Breakdown{
			{Column: "Lead Stage", Label: "Lead Stage"},
			{Column: "Country", Label: "Country"},
			{Column: "Industry Vertical", Label: "Industry"},
			{Column: "Lead Source", Label: "Lead Source"},
			{Column: "Company size", Label: "Company Size"},
			{Column: "Last Activity", Label: "Last Activity"},
			{Column: "Region Specific", Label: "Region"},
		},
	}
}

// NormalizeCountry maps a raw country value to its canonical name using the
// configured aliases. Matching is case-insensitive; an exact alias wins over
// a case-folded one, and among case-folded aliases the smallest sorts first.
// Unknown names are returned trimmed.
func (r RulesConfig) NormalizeCountry(country string) string {
	country = strings.TrimSpace(country)
	if canonical, ok := r.CountryAliases[country]; ok {
		return canonical
	}

	match, found := "", false
	for alias := range r.CountryAliases {
		if strings.EqualFold(alias, country) && (!found || alias < match) {
			match, found = alias, true
		}
	}
	if !found {
		return country
	}
	return r.CountryAliases[match]
}

// RegionsFor returns the region rules whose labels are listed, in configured
// order. No labels means all rules.
func (r RulesConfig) RegionsFor(labels ...string) ([]RegionRule, error) {
	if len(labels) == 0 {
		return r.Regions, nil
	}

	var selected []RegionRule
	for _, label := range labels {
		found := false
		for _, rule := range r.Regions {
			if strings.EqualFold(rule.Label, label) {
				selected = append(selected, rule)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown region %q", label)
		}
	}
	return selected, nil
}

// Validate checks the rule lists for gaps and contradictions
func (r RulesConfig) Validate() error {
	if len(r.InactiveStages) == 0 {
		return fmt.Errorf("rules: at least one inactive stage is required")
	}
	if strings.TrimSpace(r.BounceKeyword) == "" {
		return fmt.Errorf("rules: bounce keyword is required")
	}
	if r.MissingLabel == "" {
		return fmt.Errorf("rules: missing label is required")
	}

	aliases := make(map[string]string, len(r.CountryAliases))
	for alias, canonical := range r.CountryAliases {
		key := strings.ToLower(strings.TrimSpace(alias))
		if prev, ok := aliases[key]; ok && !strings.EqualFold(prev, canonical) {
			return fmt.Errorf("rules: alias %q maps to both %q and %q", alias, prev, canonical)
		}
		aliases[key] = canonical
	}

	owner := make(map[string]string)
	for _, rule := range r.Regions {
		if rule.Label == "" {
			return fmt.Errorf("rules: region without label")
		}
		if len(rule.Countries) == 0 {
			return fmt.Errorf("rules: region %s has no countries", rule.Label)
		}
		for _, country := range rule.Countries {
			key := strings.ToLower(r.NormalizeCountry(country))
			if prev, ok := owner[key]; ok && prev != rule.Label {
				return fmt.Errorf("rules: country %q assigned to both %s and %s", country, prev, rule.Label)
			}
			owner[key] = rule.Label
		}
	}

	for _, cat := range r.RoleCategories {
		if cat.Name == "" || len(cat.Keywords) == 0 {
			return fmt.Errorf("rules: role category %q needs a name and keywords", cat.Name)
		}
	}

	for _, b := range r.Breakdowns {
		if b.Column == "" {
			return fmt.Errorf("rules: breakdown without column")
		}
	}

	return nil
}

// normalize trims the controlled-vocabulary entries read from files or env
func (r *RulesConfig) normalize() {
	for i, stage := range r.InactiveStages {
		r.InactiveStages[i] = strings.TrimSpace(stage)
	}
	for i := range r.Regions {
		for j, country := range r.Regions[i].Countries {
			r.Regions[i].Countries[j] = strings.TrimSpace(country)
		}
	}
	for i := range r.Breakdowns {
		if r.Breakdowns[i].Label == "" {
			r.Breakdowns[i].Label = r.Breakdowns[i].Column
		}
	}
	if r.OthersLabel == "" {
		r.OthersLabel = "Others"
	}
}
