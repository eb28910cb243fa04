// Package http implements the HTTP handlers of the lead analysis API.
// Handlers stay thin: they parse and validate the request, call a service
// and render the result. Business rules live in the services package.
//
// # Routes
//
//	GET  /api/health              liveness
//	GET  /api/health/ready        readiness (503 when the input or reports dir is unusable)
//	GET  /api/version             build information
//	GET  /api/leads/profile       descriptive profile of the workbook
//	GET  /api/leads/aggregate     value counts: ?column=Country&subset=active&top=10
//	POST /api/leads/analyze       profile workbook, charts and HTML report
//	POST /api/leads/active        active lead workbook (?csv=true adds the CSV)
//	POST /api/leads/bounced       bounced e-mail workbook (?csv=true adds the CSV)
//	POST /api/leads/roles         role category workbook
//	POST /api/leads/regions       region reclassification; body {"labels": ["ME"]} is optional
//	POST /api/leads/deck          presentation deck
//	POST /api/leads/all           every analysis followed by the deck
//	GET  /api/reports             generated files, newest first
//	GET  /api/reports/{name}      download one generated file
//
// Routes that write files are POST. Every run reads the configured input
// workbook afresh.
//
// # Errors
//
// Failures are rendered as RFC 7807 problem details by errors.ErrorHandler:
//
//	{
//	    "type": "/errors/data/column-missing",
//	    "title": "Unprocessable Entity",
//	    "status": 422,
//	    "detail": "column \"Last Activity\" not found",
//	    "instance": "/api/leads/bounced",
//	    "trace_id": "9f1c..."
//	}
//
// # Testing
//
// Handlers are tested with httptest against testify mocks of
// AnalysisServiceInterface and ReportServiceInterface.
package http
