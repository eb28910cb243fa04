package services

import (
	"context"
	"log/slog"
	"os"
	"time"

	"leadlens/internal/charts"
	"leadlens/internal/config"
	"leadlens/internal/dataprocessing"
	"leadlens/internal/deck"
	"leadlens/internal/errors"
	"leadlens/internal/leads"
	"leadlens/pkg/contracts/domain"
)

// DeckResult is the written presentation
type DeckResult struct {
	Path   string `json:"path"`
	Charts int    `json:"charts"`
}

// RunResult collects every step of a full run. A step whose required
// column is absent is nil and named in Skipped.
type RunResult struct {
	Regions  *RegionsResult `json:"regions,omitempty"`
	Analyze  *AnalyzeResult `json:"analyze,omitempty"`
	Active   *ActiveResult  `json:"active,omitempty"`
	Bounced  *BouncedResult `json:"bounced,omitempty"`
	Roles    *RolesResult   `json:"roles,omitempty"`
	Deck     *DeckResult    `json:"deck,omitempty"`
	Skipped  []string       `json:"skipped,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// Files lists every file the run wrote, in step order
func (r *RunResult) Files() []string {
	var files []string
	if r.Regions != nil {
		files = append(files, r.Regions.Files...)
	}
	if r.Analyze != nil {
		files = append(files, r.Analyze.Files...)
	}
	if r.Active != nil {
		files = append(files, r.Active.Files...)
	}
	if r.Bounced != nil {
		files = append(files, r.Bounced.Files...)
	}
	if r.Roles != nil {
		files = append(files, r.Roles.Files...)
	}
	if r.Deck != nil {
		files = append(files, r.Deck.Path)
	}
	return files
}

// deckInputs are the computed reports a presentation is assembled from
type deckInputs struct {
	profile *domain.Profile
	active  *leads.ActiveReport
	bounced *leads.BouncedReport
	roles   *leads.RoleReport
	charts  []charts.Chart
	images  []*charts.Image
}

// All runs every analysis: regions first, then the profile, the active,
// bounced and role reports over the reclassified table, and finally the
// presentation. Steps whose columns are missing are skipped with a warning.
func (s *AnalysisService) All(ctx context.Context, ds *dataprocessing.Dataset, opts Options) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{}
	in := deckInputs{}

	regions, err := s.Regions(ctx, ds)
	switch {
	case err == nil:
		result.Regions = regions
		ds = regions.Dataset
	case s.skippable(ctx, "regions", err):
		result.Skipped = append(result.Skipped, "regions")
	default:
		return nil, err
	}

	analyze, err := s.Analyze(ctx, ds)
	if err != nil {
		return nil, err
	}
	result.Analyze = analyze
	in.profile = analyze.Profile

	active, err := s.Active(ctx, ds, opts)
	switch {
	case err == nil:
		result.Active = active
		in.active = active.Report
		in.charts = append(in.charts, activeCharts(active.Report, s.cfg.Charts, s.cfg.Rules.OthersLabel)...)
	case s.skippable(ctx, "active", err):
		result.Skipped = append(result.Skipped, "active")
	default:
		return nil, err
	}

	bounced, err := s.Bounced(ctx, ds, opts)
	switch {
	case err == nil:
		result.Bounced = bounced
		in.bounced = bounced.Report
		in.charts = append(in.charts, bouncedCharts(bounced.Report, s.cfg.Charts, s.cfg.Rules.OthersLabel)...)
	case s.skippable(ctx, "bounced", err):
		result.Skipped = append(result.Skipped, "bounced")
	default:
		return nil, err
	}

	roles, err := s.Roles(ctx, ds)
	switch {
	case err == nil:
		result.Roles = roles
		in.roles = roles.Report
		in.charts = append(in.charts, roleCharts(roles.Report)...)
	case s.skippable(ctx, "roles", err):
		result.Skipped = append(result.Skipped, "roles")
	default:
		return nil, err
	}

	// The charts were already written by the steps above; read them back
	// rather than drawing them twice.
	in.images = s.readImages(ctx, in.charts)

	deckResult, err := s.writeDeck(ctx, ds, in)
	if err != nil {
		return nil, err
	}
	result.Deck = deckResult
	result.Duration = time.Since(start)

	s.logger.InfoContext(ctx, "full run completed",
		slog.Int("files", len(result.Files())),
		slog.Any("skipped", result.Skipped),
		slog.Duration("duration", result.Duration))
	return result, nil
}

// Deck computes the reports in memory, draws their charts and writes the
// presentation. No workbook is written.
func (s *AnalysisService) Deck(ctx context.Context, ds *dataprocessing.Dataset) (*DeckResult, error) {
	in := deckInputs{}

	profile, err := s.Profile(ctx, ds)
	if err != nil {
		return nil, err
	}
	in.profile = profile

	if r, err := s.analyst.Active(ctx, ds.Table); err == nil {
		in.active = r
		in.charts = append(in.charts, activeCharts(r, s.cfg.Charts, s.cfg.Rules.OthersLabel)...)
	} else if !s.skippable(ctx, "active", err) {
		return nil, err
	}
	if r, err := s.analyst.Bounced(ctx, ds.Table); err == nil {
		in.bounced = r
		in.charts = append(in.charts, bouncedCharts(r, s.cfg.Charts, s.cfg.Rules.OthersLabel)...)
	} else if !s.skippable(ctx, "bounced", err) {
		return nil, err
	}
	if r, err := s.analyst.Roles(ctx, ds.Table); err == nil {
		in.roles = r
		in.charts = append(in.charts, roleCharts(r)...)
	} else if !s.skippable(ctx, "roles", err) {
		return nil, err
	}

	images, err := s.renderCharts(ctx, in.charts)
	if err != nil {
		return nil, err
	}
	in.images = images

	return s.writeDeck(ctx, ds, in)
}

func (s *AnalysisService) writeDeck(ctx context.Context, ds *dataprocessing.Dataset, in deckInputs) (*DeckResult, error) {
	var result *DeckResult
	err := s.track(ctx, "deck", func(ctx context.Context) error {
		data := deck.DeckData{
			Title:        "Lead Analysis Report",
			Subtitle:     "Comprehensive Sales Lead Analysis",
			Generated:    time.Now(),
			Profile:      in.profile,
			Active:       in.active,
			Bounced:      in.bounced,
			Roles:        in.roles,
			RegionRules:  s.cfg.Rules.Regions,
			Countries:    uniqueOrAbsent(ds.Table, domain.ColumnCountry),
			Companies:    uniqueOrAbsent(ds.Table, domain.ColumnCompanyName),
			MissingLabel: s.cfg.Rules.MissingLabel,
			Charts:       chartSlides(in.charts, in.images),
			Logo:         s.readLogo(ctx),
		}
		if ds.Table.HasColumn(domain.ColumnRegion) {
			agg, err := s.analyst.Summarizer().ValueCounts(ds.Table, domain.ColumnRegion, dataprocessing.CountOptions{ExcludeMissing: true})
			if err != nil {
				return err
			}
			data.Regions = agg
		}

		path := s.paths.ReportPath(config.PresentationFile)
		if err := s.deck.Save(ctx, path, data); err != nil {
			return err
		}
		s.metrics.RecordFile(ctx, "pptx")
		result = &DeckResult{Path: path, Charts: len(data.Charts)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// skippable reports whether err only means the step's columns are absent
func (s *AnalysisService) skippable(ctx context.Context, step string, err error) bool {
	if !errors.IsColumnMissing(err) {
		return false
	}
	s.logger.WarnContext(ctx, "analysis skipped, required column not found",
		slog.String("analysis", step),
		slog.String("error", err.Error()))
	return true
}

// readImages loads already rendered charts from the reports directory.
// Charts that were not drawn, such as empty ones, are left out.
func (s *AnalysisService) readImages(ctx context.Context, set []charts.Chart) []*charts.Image {
	if !s.cfg.Charts.Enabled {
		return nil
	}
	var images []*charts.Image
	for _, c := range set {
		if c.Empty() {
			continue
		}
		path := s.paths.ReportPath(c.Name)
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.WarnContext(ctx, "chart image not readable",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		images = append(images, &charts.Image{Name: c.Name, Path: path, Data: data})
	}
	return images
}

func (s *AnalysisService) readLogo(ctx context.Context) []byte {
	if s.paths.LogoFile == "" {
		return nil
	}
	data, err := os.ReadFile(s.paths.LogoFile)
	if err != nil {
		s.logger.WarnContext(ctx, "logo not readable, using placeholder",
			slog.String("path", s.paths.LogoFile),
			slog.String("error", err.Error()))
		return nil
	}
	return data
}

// chartSlides pairs rendered images with the titles of their charts
func chartSlides(set []charts.Chart, images []*charts.Image) []deck.ChartSlide {
	titles := make(map[string]string, len(set))
	for _, c := range set {
		titles[c.Name] = c.Title
	}
	slides := make([]deck.ChartSlide, 0, len(images))
	for _, img := range images {
		slides = append(slides, deck.ChartSlide{Title: titles[img.Name], Image: img.Data})
	}
	return slides
}

func uniqueOrAbsent(t *domain.Table, column string) int {
	n, err := dataprocessing.CountUnique(t, column)
	if err != nil {
		return -1
	}
	return n
}
