package leads

import (
	"context"
	"log/slog"
	"strings"

	"leadlens/internal/config"
	"leadlens/internal/dataprocessing"
	"leadlens/internal/errors"
	"leadlens/pkg/contracts/domain"
)

// RegionClassifier maps countries to region labels. Lookups normalize the
// configured aliases and ignore case.
type RegionClassifier struct {
	rules  config.RulesConfig
	active []config.RegionRule
	index  map[string]string
}

// NewRegionClassifier builds a classifier over the region rules named by
// labels, in configured order. No labels selects every rule.
func NewRegionClassifier(rules config.RulesConfig, labels ...string) (*RegionClassifier, error) {
	active, err := rules.RegionsFor(labels...)
	if err != nil {
		return nil, errors.NewConfigError("invalid region selection", err)
	}

	c := &RegionClassifier{rules: rules, active: active, index: make(map[string]string)}
	for _, rule := range active {
		for _, country := range rule.Countries {
			key := c.key(country)
			if _, taken := c.index[key]; !taken {
				c.index[key] = rule.Label
			}
		}
	}
	return c, nil
}

func (c *RegionClassifier) key(country string) string {
	return strings.ToLower(c.rules.NormalizeCountry(country))
}

// Classify returns the region label for a country
func (c *RegionClassifier) Classify(country string) (string, bool) {
	if domain.IsMissing(country) {
		return "", false
	}
	label, ok := c.index[c.key(country)]
	return label, ok
}

// Labels returns the active region labels in order
func (c *RegionClassifier) Labels() []string {
	labels := make([]string, len(c.active))
	for i, r := range c.active {
		labels[i] = r.Label
	}
	return labels
}

// Apply returns a copy of t with Region Specific set for every row whose
// country belongs to an active region. Other rows are untouched, so applying
// the result again changes nothing. The region column is created when absent.
func (c *RegionClassifier) Apply(ctx context.Context, t *domain.Table) (*domain.RegionUpdate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	countryIdx := t.ColumnIndex(domain.ColumnCountry)
	if countryIdx < 0 {
		return nil, errors.NewColumnMissingError(domain.ColumnCountry)
	}

	updated := t.Clone()
	update := &domain.RegionUpdate{
		Table:         updated,
		ColumnCreated: !updated.HasColumn(domain.ColumnRegion),
	}
	regionIdx := updated.EnsureColumn(domain.ColumnRegion)

	for i, row := range updated.Rows {
		label, ok := c.Classify(row[countryIdx])
		if !ok {
			continue
		}
		update.Matched++
		before := row[regionIdx]
		if strings.TrimSpace(before) == label {
			update.AlreadyCorrect++
			continue
		}
		updated.Set(i, regionIdx, label)
		update.Updated++
		update.Changes = append(update.Changes, domain.RegionChange{
			Row:     i,
			Country: row[countryIdx],
			Before:  before,
			After:   label,
		})
	}

	update.Countries = c.countryStatus(updated, countryIdx, regionIdx)

	return update, nil
}

// countryStatus reports, for every configured country of the active rules,
// how many rows it has and how many now carry its region
func (c *RegionClassifier) countryStatus(t *domain.Table, countryIdx, regionIdx int) []domain.CountryRegionStatus {
	var out []domain.CountryRegionStatus
	for _, rule := range c.active {
		for _, country := range rule.Countries {
			status := domain.CountryRegionStatus{Country: country, Region: rule.Label}
			key := c.key(country)
			for _, row := range t.Rows {
				if domain.IsMissing(row[countryIdx]) || c.key(row[countryIdx]) != key {
					continue
				}
				status.Total++
				if strings.TrimSpace(row[regionIdx]) == rule.Label {
					status.InRegion++
				}
			}
			status.Success = status.Total == status.InRegion
			out = append(out, status)
		}
	}
	return out
}

// Regions applies the region rules named by labels (all when empty) and
// tabulates the resulting region distribution
func (a *Analyst) Regions(ctx context.Context, t *domain.Table, labels ...string) (*domain.RegionUpdate, error) {
	classifier, err := NewRegionClassifier(a.rules, labels...)
	if err != nil {
		return nil, err
	}

	update, err := classifier.Apply(ctx, t)
	if err != nil {
		return nil, err
	}

	update.Distribution, err = a.summarizer.ValueCounts(update.Table, domain.ColumnRegion, dataprocessing.CountOptions{})
	if err != nil {
		return nil, err
	}

	a.logger.InfoContext(ctx, "regions reclassified",
		slog.Any("regions", classifier.Labels()),
		slog.Int("matched", update.Matched),
		slog.Int("updated", update.Updated),
		slog.Int("already_correct", update.AlreadyCorrect),
		slog.Bool("column_created", update.ColumnCreated))

	return update, nil
}
