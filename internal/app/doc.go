// Package app wires the lead analysis API together: resolved paths,
// OpenTelemetry providers, the services and the chi router.
//
// # Initialization Flow
//
//	1. Resolve input and reports paths and create the reports directory
//	2. Initialize tracing and metrics (stdout traces, Prometheus metrics)
//	3. Create the analysis, report and health services
//	4. Build the router and its middleware chain
//	5. Create the HTTP server
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	app, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return app.Run(ctx)
//
// Run serves until ctx is cancelled and then shuts the server down within
// Server.ShutdownTimeout, flushing telemetry last. The package never calls
// os.Exit; the command decides how to exit.
package app
