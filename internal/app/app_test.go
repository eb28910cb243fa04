package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"leadlens/internal/config"
	apierrors "leadlens/internal/errors"
)

// createTestLogger creates a logger that discards output for testing
func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// writeTestWorkbook saves the four-lead example as the input workbook
func writeTestWorkbook(t *testing.T, dir string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	rows := [][]interface{}{
		{"Company Name", "Country", "Lead Stage", "Last Activity", "Role"},
		{"Acme", "UAE", "Open", "Email Bounced", "HR Manager"},
		{"Acme", "UAE", "Won", "Call", "CEO"},
		{"Brit Ltd", "UK", "Open", "Email Opened", "IT Director"},
		{"Berlin AG", "Germany", "Lost", "Email Bounced", "CFO"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(dir, "leads.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

// testConfig points the application at a temporary workbook and reports dir
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Server.RateLimit.Enabled = false
	cfg.Telemetry.TraceExporter = "none"
	cfg.Telemetry.MetricExporter = "none"
	cfg.Charts.Enabled = false
	cfg.Paths = config.PathsConfig{
		InputFile:  writeTestWorkbook(t, dir),
		ReportsDir: filepath.Join(dir, "reports"),
	}
	return cfg
}

func newTestApplication(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	app, err := NewApplication(cfg, createTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = app.OTelProviders.Shutdown(ctx)
	})
	return app
}

func serve(app *Application, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestNewApplication(t *testing.T) {
	cfg := testConfig(t)
	app := newTestApplication(t, cfg)

	assert.NotNil(t, app.Config)
	assert.NotNil(t, app.Logger)
	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.Metrics)
	require.NotNil(t, app.Services)
	assert.NotNil(t, app.Services.Analysis)
	assert.NotNil(t, app.Services.Reports)
	assert.NotNil(t, app.Services.Health)

	assert.DirExists(t, cfg.Paths.ReportsDir, "reports directory is created at startup")
	assert.True(t, filepath.IsAbs(app.Paths.InputFile))
}

func TestNewApplication_MissingInput(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.InputFile = filepath.Join(t.TempDir(), "absent.xlsx")

	app := newTestApplication(t, cfg)

	rec := serve(app, http.MethodGet, "/api/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = serve(app, http.MethodGet, "/api/leads/profile")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewApplication_InvalidTelemetry(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.MetricExporter = "statsd"

	app, err := NewApplication(cfg, createTestLogger())
	assert.Error(t, err)
	assert.Nil(t, app)
}

func TestApplication_createServer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Port = 9191
	app := newTestApplication(t, cfg)

	assert.Equal(t, ":9191", app.Server.Addr)
	assert.Equal(t, cfg.Server.ReadTimeout, app.Server.ReadTimeout)
	assert.Equal(t, cfg.Server.WriteTimeout, app.Server.WriteTimeout)
	assert.Equal(t, app.Router, app.Server.Handler)
}

func TestApplication_Routes(t *testing.T) {
	app := newTestApplication(t, testConfig(t))

	t.Run("health", func(t *testing.T) {
		rec := serve(app, http.MethodGet, "/api/health")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", decode(t, rec)["status"])
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	})

	t.Run("ready", func(t *testing.T) {
		rec := serve(app, http.MethodGet, "/api/health/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("version", func(t *testing.T) {
		rec := serve(app, http.MethodGet, "/api/version")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, config.AppVersion, decode(t, rec)["version"])
	})

	t.Run("aggregate of active leads", func(t *testing.T) {
		rec := serve(app, http.MethodGet, "/api/leads/aggregate?column=Country&subset=active")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		body := decode(t, rec)
		assert.Equal(t, float64(2), body["total"])
		percents := map[string]float64{}
		for _, e := range body["entries"].([]interface{}) {
			entry := e.(map[string]interface{})
			percents[entry["value"].(string)] = entry["percent"].(float64)
		}
		assert.Equal(t, map[string]float64{"UAE": 50, "UK": 50}, percents)
	})

	t.Run("aggregate validation", func(t *testing.T) {
		rec := serve(app, http.MethodGet, "/api/leads/aggregate?subset=active")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apierrors.TypeValidation, decode(t, rec)["type"])
	})

	t.Run("aggregate unknown column", func(t *testing.T) {
		rec := serve(app, http.MethodGet, "/api/leads/aggregate?column=Budget")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, apierrors.TypeColumnMissing, decode(t, rec)["type"])
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := serve(app, http.MethodGet, "/api/nothing")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, apierrors.TypeNotFound, decode(t, rec)["type"])
	})

	t.Run("metrics disabled", func(t *testing.T) {
		rec := serve(app, http.MethodGet, "/metrics")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestApplication_ActiveThenDownload(t *testing.T) {
	app := newTestApplication(t, testConfig(t))

	rec := serve(app, http.MethodPost, "/api/leads/active?csv=true")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode(t, rec)["report"].(map[string]interface{})
	assert.Equal(t, float64(2), report["active"])

	rec = serve(app, http.MethodGet, "/api/reports")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(2), body["count"])

	rec = serve(app, http.MethodGet, "/api/reports/"+config.ActiveLeadsCSV)
	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), config.ActiveLeadsCSV)

	t.Run("traversal is rejected", func(t *testing.T) {
		rec := serve(app, http.MethodGet, "/api/reports/..%5Cleads.xlsx")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("absent report", func(t *testing.T) {
		rec := serve(app, http.MethodGet, "/api/reports/"+config.RoleWorkbook)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestApplication_Metrics(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.MetricExporter = "prometheus"
	app := newTestApplication(t, cfg)

	require.Equal(t, http.StatusOK, serve(app, http.MethodGet, "/api/health").Code)

	rec := serve(app, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestApplication_RateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.RateLimit.Enabled = true
	cfg.Server.RateLimit.RPS = 0.0001
	cfg.Server.RateLimit.Burst = 1
	app := newTestApplication(t, cfg)

	assert.Equal(t, http.StatusOK, serve(app, http.MethodGet, "/api/health").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(app, http.MethodGet, "/api/health").Code)
}

func TestApplication_RunAndStop(t *testing.T) {
	cfg := testConfig(t)
	app := newTestApplication(t, cfg)
	app.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() {
		runErr <- app.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-runErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("application did not shut down within timeout")
	}
}
