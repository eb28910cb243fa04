package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"leadlens/internal/config"
	"leadlens/internal/dataprocessing"
	apperrors "leadlens/internal/errors"
	"leadlens/internal/infrastructure"
	"leadlens/internal/services"
	"leadlens/pkg/contracts"
)

// cliOptions are the flags shared by every subcommand
type cliOptions struct {
	configPath string
	input      string
	reports    string
	sheet      string
	logo       string
	csv        bool
	noCharts   bool
}

// session is what one command invocation works with
type session struct {
	cfg       *config.Config
	paths     *config.Paths
	service   *services.AnalysisService
	providers *infrastructure.OTelProviders
	logger    *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "leadlens",
		Short: "Ad hoc analysis of sales lead spreadsheets",
		Long: `leadlens reads a lead workbook and writes Excel, CSV, PNG, HTML and
PowerPoint reports into the reports directory.

Configuration comes from defaults, an optional YAML file (--config or
leadlens.yaml) and LEADLENS_* environment variables. Flags win over both.`,
		Version:       contracts.NewBuildInfo(config.AppName, config.AppVersion).String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file")
	flags.StringVarP(&opts.input, "input", "i", "", "lead workbook to analyse")
	flags.StringVarP(&opts.reports, "reports", "o", "", "directory for generated reports")
	flags.StringVar(&opts.sheet, "sheet", "", "worksheet name (default: first sheet)")
	flags.StringVar(&opts.logo, "logo", "", "logo image for the title slide")
	flags.BoolVar(&opts.noCharts, "no-charts", false, "skip PNG chart rendering")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newAggregateCmd(opts),
		newActiveCmd(opts),
		newBouncedCmd(opts),
		newRolesCmd(opts),
		newRegionsCmd(opts),
		newDeckCmd(opts),
		newAllCmd(opts),
		newReportsCmd(opts),
		newServeCmd(opts),
	)
	return root
}

// loadConfig reads the configuration and applies the flag overrides
func loadConfig(opts *cliOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.input != "" {
		cfg.Paths.InputFile = opts.input
	}
	if opts.reports != "" {
		cfg.Paths.ReportsDir = opts.reports
	}
	if opts.sheet != "" {
		cfg.Paths.Sheet = opts.sheet
	}
	if opts.logo != "" {
		cfg.Paths.LogoFile = opts.logo
	}
	if opts.noCharts {
		cfg.Charts.Enabled = false
	}
	return cfg, nil
}

// newLogger logs JSON to the command's stderr unless the config sends logs to a file
func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	if strings.EqualFold(cfg.Logging.Output, "console") {
		return infrastructure.NewLogger(cmd.ErrOrStderr(), cfg.Logging), nil
	}
	return infrastructure.InitializeLogger(cfg.Logging)
}

func newSession(cmd *cobra.Command, opts *cliOptions) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, err
	}

	// A batch run has nobody to scrape it; traces still follow the config
	otelCfg := infrastructure.OTelConfigFrom(cfg.Telemetry)
	otelCfg.MetricExporter = "none"
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, err
	}
	metrics, err := infrastructure.NewAnalysisMetrics(providers.Meter)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:       cfg,
		paths:     paths,
		service:   services.NewAnalysisService(cfg, paths, metrics, logger),
		providers: providers,
		logger:    logger,
	}, nil
}

func (rt *session) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.providers.Shutdown(ctx); err != nil {
		rt.logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
	}
}

// withDataset builds the session, loads the workbook and hands both to fn
// under a fresh run id
func withDataset(cmd *cobra.Command, opts *cliOptions, fn func(ctx context.Context, rt *session, ds *dataprocessing.Dataset) error) error {
	rt, err := newSession(cmd, opts)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, runID := infrastructure.NewRunContext(cmd.Context())
	rt.logger.InfoContext(ctx, "run started",
		slog.String("command", cmd.Name()),
		slog.String("input", rt.paths.InputFile),
		slog.String("reports_dir", rt.paths.ReportsDir))

	start := time.Now()
	ds, err := rt.service.Load(ctx)
	if err == nil {
		err = fn(ctx, rt, ds)
	}
	if err != nil {
		rt.logger.ErrorContext(ctx, "run failed",
			slog.String("command", cmd.Name()),
			slog.String("error_type", string(apperrors.TypeOf(err))),
			slog.String("error", err.Error()))
		return err
	}

	rt.logger.InfoContext(ctx, "run finished",
		slog.String("command", cmd.Name()),
		slog.Duration("duration", time.Since(start)))
	status(cmd.OutOrStdout(), "Run %s finished in %s", shortID(runID), time.Since(start).Round(time.Millisecond))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// exactlyNoArgs rejects positional arguments with a hint about --input
func exactlyNoArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%s takes no arguments; pass the workbook with --input", cmd.Name())
	}
	return nil
}
