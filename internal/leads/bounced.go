package leads

import (
	"context"
	"log/slog"

	"leadlens/internal/dataprocessing"
	"leadlens/internal/errors"
	"leadlens/pkg/contracts/domain"
)

// BouncedReport is the outcome of the bounced e-mail analysis
type BouncedReport struct {
	Total           int               `json:"total"`
	Bounced         int               `json:"bounced"`
	BouncedPercent  float64           `json:"bounced_percent"`
	ByCountry       *domain.Aggregate `json:"by_country,omitempty"`
	ActivityTypes   *domain.Aggregate `json:"activity_types"`
	CountryActivity *domain.CrossTab  `json:"country_activity,omitempty"`
	Table           *domain.Table     `json:"-"`
}

// Bounced keeps the rows whose Last Activity mentions the bounce keyword.
// Without a Country column the per-country outputs are left nil.
func (a *Analyst) Bounced(ctx context.Context, t *domain.Table) (*BouncedReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pred, err := dataprocessing.ContainsFold(t, domain.ColumnLastActivity, a.rules.BounceKeyword)
	if err != nil {
		return nil, err
	}
	bounced := dataprocessing.Filter(t, pred)

	report := &BouncedReport{
		Total:   t.Len(),
		Bounced: bounced.Len(),
		Table:   bounced,
	}
	if report.Total > 0 {
		report.BouncedPercent = float64(report.Bounced) * 100 / float64(report.Total)
	}

	report.ActivityTypes, err = a.summarizer.ValueCounts(bounced, domain.ColumnLastActivity, dataprocessing.CountOptions{})
	if err != nil {
		return nil, err
	}

	report.ByCountry, err = a.summarizer.ValueCounts(bounced, domain.ColumnCountry, dataprocessing.CountOptions{})
	switch {
	case errors.IsColumnMissing(err):
		a.logger.WarnContext(ctx, "country breakdown skipped, column not found",
			slog.String("column", domain.ColumnCountry))
		report.ByCountry = nil
	case err != nil:
		return nil, err
	default:
		report.CountryActivity, err = a.summarizer.CrossTab(bounced, domain.ColumnCountry, domain.ColumnLastActivity)
		if err != nil {
			return nil, err
		}
	}

	a.logger.InfoContext(ctx, "bounced e-mails analyzed",
		slog.Int("total", report.Total),
		slog.Int("bounced", report.Bounced))

	return report, nil
}
