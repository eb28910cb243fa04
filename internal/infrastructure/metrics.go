package infrastructure

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AnalysisMetrics are the instruments of the analysis pipeline and the HTTP
// API. Every Record method is a no-op on a nil receiver.
type AnalysisMetrics struct {
	runs          metric.Int64Counter
	runDuration   metric.Float64Histogram
	rows          metric.Int64Counter
	files         metric.Int64Counter
	requests      metric.Int64Counter
	requestLength metric.Float64Histogram
}

// NewAnalysisMetrics creates the instruments on meter. A nil meter uses the
// global provider, which is a no-op until InitializeOTel has run.
func NewAnalysisMetrics(meter metric.Meter) (*AnalysisMetrics, error) {
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(ServiceName)
	}

	var (
		m    AnalysisMetrics
		errs [6]error
	)
	m.runs, errs[0] = meter.Int64Counter("leadlens_analysis_runs_total",
		metric.WithDescription("Analysis steps executed, by step and outcome"))
	m.runDuration, errs[1] = meter.Float64Histogram("leadlens_analysis_duration_seconds",
		metric.WithDescription("Duration of one analysis step"),
		metric.WithUnit("s"))
	m.rows, errs[2] = meter.Int64Counter("leadlens_rows_loaded_total",
		metric.WithDescription("Data rows read from lead workbooks"))
	m.files, errs[3] = meter.Int64Counter("leadlens_files_written_total",
		metric.WithDescription("Report files written, by kind"))
	m.requests, errs[4] = meter.Int64Counter("http_requests_total",
		metric.WithDescription("HTTP requests served, by route and status"))
	m.requestLength, errs[5] = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"))

	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordAnalysis counts one analysis step and its duration
func (m *AnalysisMetrics) RecordAnalysis(ctx context.Context, step string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("analysis", step),
		attribute.String("status", outcome),
	)
	m.runs.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRows counts rows read from a workbook
func (m *AnalysisMetrics) RecordRows(ctx context.Context, rows int) {
	if m == nil {
		return
	}
	m.rows.Add(ctx, int64(rows))
}

// RecordFile counts one written report of kind xlsx, csv, png, html or pptx
func (m *AnalysisMetrics) RecordFile(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.files.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordHTTPRequest counts one served request. route is the router pattern,
// not the raw path.
func (m *AnalysisMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.requests.Add(ctx, 1, attrs)
	m.requestLength.Record(ctx, duration.Seconds(), attrs)
}
