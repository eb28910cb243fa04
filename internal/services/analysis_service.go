package services

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"leadlens/internal/charts"
	"leadlens/internal/config"
	"leadlens/internal/dataprocessing"
	"leadlens/internal/deck"
	"leadlens/internal/errors"
	"leadlens/internal/exporter"
	"leadlens/internal/files"
	"leadlens/internal/infrastructure"
	"leadlens/internal/leads"
	"leadlens/internal/validation"
	"leadlens/pkg/contracts/domain"
)

// Options adjusts what a run writes besides its workbook
type Options struct {
	// CSV also writes the subset rows as CSV
	CSV bool
}

// AnalysisService runs the lead analyses over a workbook and writes their
// reports. The CLI subcommands and the HTTP API both go through it.
type AnalysisService struct {
	cfg       *config.Config
	paths     *config.Paths
	loader    *dataprocessing.Loader
	analyzer  *dataprocessing.Analyzer
	analyst   *leads.Analyst
	validator *validation.FileValidator
	discovery *files.Discovery
	workbooks *exporter.WorkbookWriter
	csv       *exporter.CSVWriter
	renderer  *charts.Renderer
	deck      *deck.Builder
	metrics   *infrastructure.AnalysisMetrics
	logger    *slog.Logger
}

// NewAnalysisService wires the analysis pipeline. metrics may be nil.
func NewAnalysisService(cfg *config.Config, paths *config.Paths, metrics *infrastructure.AnalysisMetrics, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("AnalysisService initialized with paths",
		slog.String("input_file", paths.InputFile),
		slog.String("sheet", paths.Sheet),
		slog.String("reports_dir", paths.ReportsDir))

	return &AnalysisService{
		cfg:       cfg,
		paths:     paths,
		loader:    dataprocessing.NewLoader(logger),
		analyzer:  dataprocessing.NewAnalyzer(logger),
		analyst:   leads.NewAnalyst(cfg.Rules, logger),
		validator: validation.NewFileValidator(logger),
		discovery: files.NewDiscovery(logger),
		workbooks: exporter.NewWorkbookWriter(logger),
		csv:       exporter.NewCSVWriter(logger),
		renderer:  charts.NewRenderer(cfg.Charts, paths.ReportsDir, logger),
		deck:      deck.NewBuilder(logger),
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "analysis_service")),
	}
}

// Paths returns the resolved input and output locations
func (s *AnalysisService) Paths() *config.Paths {
	return s.paths
}

// Load reads the configured input workbook
func (s *AnalysisService) Load(ctx context.Context) (*dataprocessing.Dataset, error) {
	return s.LoadFile(ctx, s.paths.InputFile, s.paths.Sheet)
}

// LoadFile validates and reads a workbook. A directory path selects its newest
// workbook and an empty sheet selects the first one.
func (s *AnalysisService) LoadFile(ctx context.Context, path, sheet string) (*dataprocessing.Dataset, error) {
	path, err := s.discovery.ResolveInput(path)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateWorkbook(path); err != nil {
		return nil, err
	}

	var ds *dataprocessing.Dataset
	err = s.track(ctx, "load", func(ctx context.Context) error {
		var err error
		ds, err = s.loader.Load(ctx, path, sheet)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordRows(ctx, ds.Table.Len())
	return ds, nil
}

// Aggregate counts the values of one column over a subset of the rows
func (s *AnalysisService) Aggregate(ctx context.Context, ds *dataprocessing.Dataset, column string, subset domain.Subset, top int) (*domain.Aggregate, error) {
	if !subset.Valid() {
		return nil, errors.NewAppValidationError("unknown subset").WithContext("subset", string(subset))
	}

	var agg *domain.Aggregate
	err := s.track(ctx, "aggregate", func(ctx context.Context) error {
		t, err := s.subset(ctx, ds.Table, subset)
		if err != nil {
			return err
		}
		agg, err = s.analyst.Summarizer().ValueCounts(t, column, dataprocessing.CountOptions{Limit: top})
		return err
	})
	return agg, err
}

func (s *AnalysisService) subset(ctx context.Context, t *domain.Table, subset domain.Subset) (*domain.Table, error) {
	switch subset {
	case domain.SubsetActive, domain.SubsetInactive:
		pred, err := dataprocessing.NotInSet(t, domain.ColumnLeadStage, s.cfg.Rules.InactiveStages)
		if err != nil {
			return nil, err
		}
		active, inactive := dataprocessing.Partition(t, pred)
		if subset == domain.SubsetActive {
			return active, nil
		}
		return inactive, nil
	case domain.SubsetBounced:
		report, err := s.analyst.Bounced(ctx, t)
		if err != nil {
			return nil, err
		}
		return report.Table, nil
	default:
		return t, nil
	}
}

// track runs one analysis step inside a span and records its duration and outcome
func (s *AnalysisService) track(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := infrastructure.StartSpan(ctx, "analysis."+name, attribute.String("analysis.name", name))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)
	s.metrics.RecordAnalysis(ctx, name, duration, err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "analysis step failed",
			slog.String("analysis", name),
			slog.String("error", err.Error()),
			slog.Duration("duration", duration))
		return err
	}

	s.logger.DebugContext(ctx, "analysis step completed",
		slog.String("analysis", name),
		slog.Duration("duration", duration))
	return nil
}

// writeWorkbook saves sheets under the reports directory and returns the path
func (s *AnalysisService) writeWorkbook(ctx context.Context, name string, sheets []exporter.Sheet) (string, error) {
	path := s.paths.ReportPath(name)
	if err := s.workbooks.Write(ctx, path, sheets); err != nil {
		return "", err
	}
	s.metrics.RecordFile(ctx, "xlsx")
	return path, nil
}

func (s *AnalysisService) writeCSV(ctx context.Context, name string, t *domain.Table) (string, error) {
	path := s.paths.ReportPath(name)
	if err := s.csv.Write(ctx, path, t); err != nil {
		return "", err
	}
	s.metrics.RecordFile(ctx, "csv")
	return path, nil
}

// renderCharts draws the charts unless charts are disabled in the config
func (s *AnalysisService) renderCharts(ctx context.Context, set []charts.Chart) ([]*charts.Image, error) {
	if !s.cfg.Charts.Enabled {
		return nil, nil
	}
	images, err := s.renderer.RenderAll(ctx, set)
	if err != nil {
		return nil, err
	}
	for range images {
		s.metrics.RecordFile(ctx, "png")
	}
	return images, nil
}

func imagePaths(images []*charts.Image) []string {
	paths := make([]string, len(images))
	for i, img := range images {
		paths[i] = img.Path
	}
	return paths
}
