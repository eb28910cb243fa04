// Package services implements the analysis layer shared by the leadlens CLI
// and its HTTP API. It sits between the transports and the packages that do
// the work: loading, lead analysis, workbook and CSV export, charts and the
// presentation deck.
//
// # Services
//
//	- AnalysisService: loads a workbook and runs analyze, active, bounced,
//	  roles, regions, deck and the full pipeline, writing every report
//	- ReportService: lists the generated reports and resolves download paths
//	- HealthService: liveness and readiness checks
//
// # Steps
//
// Every analysis step runs inside AnalysisService.track, which opens a trace
// span, records duration and outcome metrics, and logs failures:
//
//	ds, err := svc.Load(ctx)
//	if err != nil {
//	    return err
//	}
//	result, err := svc.Active(ctx, ds, services.Options{CSV: true})
//
// # Error Handling
//
// Services return the typed errors of the errors package unchanged so the
// HTTP layer can map them to problem responses. A COLUMN error from one step
// of All skips that step instead of failing the run.
package services
