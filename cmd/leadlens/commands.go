package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"leadlens/internal/app"
	"leadlens/internal/dataprocessing"
	"leadlens/internal/services"
	"leadlens/internal/validation"
	"leadlens/pkg/contracts/domain"
)

func newAnalyzeCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Profile the workbook: summary workbook, charts and HTML report",
		Args:  exactlyNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDataset(cmd, opts, func(ctx context.Context, rt *session, ds *dataprocessing.Dataset) error {
				result, err := rt.service.Analyze(ctx, ds)
				if err != nil {
					return err
				}
				printProfile(cmd.OutOrStdout(), result.Profile)
				printFiles(cmd.OutOrStdout(), result.Files)
				return nil
			})
		},
	}
}

func newAggregateCmd(opts *cliOptions) *cobra.Command {
	var q validation.AggregateQuery
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Print value counts of one column over a subset of the leads",
		Example: `  leadlens aggregate --column Country --subset active
  leadlens aggregate --column "Lead Source" --top 10`,
		Args: exactlyNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.Struct(q); err != nil {
				return err
			}
			return withDataset(cmd, opts, func(ctx context.Context, rt *session, ds *dataprocessing.Dataset) error {
				subset := domain.Subset(q.Subset)
				if subset == "" {
					subset = domain.SubsetAll
				}
				agg, err := rt.service.Aggregate(ctx, ds, q.Column, subset, q.Top)
				if err != nil {
					return err
				}
				printAggregate(cmd.OutOrStdout(), agg)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&q.Column, "column", "", "column to count (required)")
	cmd.Flags().StringVar(&q.Subset, "subset", "all", "rows to count: all, active, inactive or bounced")
	cmd.Flags().IntVar(&q.Top, "top", 0, "keep only the N most frequent values (0 keeps all)")
	return cmd
}

func newActiveCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "active",
		Short: "Active lead workbook, breakdowns and charts",
		Args:  exactlyNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDataset(cmd, opts, func(ctx context.Context, rt *session, ds *dataprocessing.Dataset) error {
				result, err := rt.service.Active(ctx, ds, services.Options{CSV: opts.csv})
				if err != nil {
					return err
				}
				printActive(cmd.OutOrStdout(), result.Report, rt.cfg.Rules.TopCountries)
				printFiles(cmd.OutOrStdout(), result.Files)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&opts.csv, "csv", false, "also write the active leads as CSV")
	return cmd
}

func newBouncedCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bounced",
		Short: "Bounced e-mail workbook and charts",
		Args:  exactlyNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDataset(cmd, opts, func(ctx context.Context, rt *session, ds *dataprocessing.Dataset) error {
				result, err := rt.service.Bounced(ctx, ds, services.Options{CSV: opts.csv})
				if err != nil {
					return err
				}
				printBounced(cmd.OutOrStdout(), result.Report)
				printFiles(cmd.OutOrStdout(), result.Files)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&opts.csv, "csv", false, "also write the bounced records as CSV")
	return cmd
}

func newRolesCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "Role category workbook and charts",
		Args:  exactlyNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDataset(cmd, opts, func(ctx context.Context, rt *session, ds *dataprocessing.Dataset) error {
				result, err := rt.service.Roles(ctx, ds)
				if err != nil {
					return err
				}
				printRoles(cmd.OutOrStdout(), result.Report)
				printFiles(cmd.OutOrStdout(), result.Files)
				return nil
			})
		},
	}
}

func newRegionsCmd(opts *cliOptions) *cobra.Command {
	var only []string
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "Write a copy of the workbook with the Region Specific column filled in",
		Example: `  leadlens regions
  leadlens regions --only ME`,
		Args: exactlyNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.Struct(validation.RegionsRequest{Labels: only}); err != nil {
				return err
			}
			return withDataset(cmd, opts, func(ctx context.Context, rt *session, ds *dataprocessing.Dataset) error {
				result, err := rt.service.Regions(ctx, ds, only...)
				if err != nil {
					return err
				}
				printRegions(cmd.OutOrStdout(), result.Update)
				printFiles(cmd.OutOrStdout(), result.Files)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&only, "only", nil, "apply only these region labels (default: all rules)")
	return cmd
}

func newDeckCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "deck",
		Short: "Build the PowerPoint deck from freshly rendered charts",
		Args:  exactlyNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDataset(cmd, opts, func(ctx context.Context, rt *session, ds *dataprocessing.Dataset) error {
				result, err := rt.service.Deck(ctx, ds)
				if err != nil {
					return err
				}
				printFiles(cmd.OutOrStdout(), []string{result.Path})
				status(cmd.OutOrStdout(), "Deck written with %d chart slides", result.Charts)
				return nil
			})
		},
	}
}

func newAllCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Regions, profile, active, bounced and roles, then the deck",
		Args:  exactlyNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDataset(cmd, opts, func(ctx context.Context, rt *session, ds *dataprocessing.Dataset) error {
				result, err := rt.service.All(ctx, ds, services.Options{CSV: opts.csv})
				if err != nil {
					return err
				}
				printRun(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&opts.csv, "csv", false, "also write the active and bounced CSV files")
	return cmd
}

func newReportsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "List the generated reports, newest first",
		Args:  exactlyNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newSession(cmd, opts)
			if err != nil {
				return err
			}
			defer rt.close()

			reports, err := services.NewReportService(rt.paths, rt.logger).List(cmd.Context())
			if err != nil {
				return err
			}
			printReports(cmd.OutOrStdout(), rt.paths.ReportsDir, reports)
			return nil
		},
	}
}

func newServeCmd(opts *cliOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyses over HTTP until interrupted",
		Args:  exactlyNoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}

			application, err := app.NewApplication(cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			status(cmd.OutOrStdout(), "Serving on http://localhost:%d (Ctrl+C to stop)", cfg.Server.Port)
			return application.Run(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "listen port")
	return cmd
}
