package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadlens/internal/config"
	"leadlens/pkg/contracts"
)

var testBuild = contracts.NewBuildInfo(config.AppName, "1.0.0")

func TestHealthService_HealthCheck(t *testing.T) {
	paths, err := config.NewPaths(config.PathsConfig{ReportsDir: t.TempDir()})
	require.NoError(t, err)
	hs := NewHealthService(contracts.BuildInfo{Version: "1.2.3"}, paths, discardLogger())

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.Contains(t, status.Runtime, "go_version")
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		input := writeLeadWorkbook(t, leadHeaders, leadRows)
		paths, err := config.NewPaths(config.PathsConfig{InputFile: input, ReportsDir: t.TempDir()})
		require.NoError(t, err)

		status := NewHealthService(testBuild, paths, discardLogger()).ReadinessCheck(context.Background())
		assert.Equal(t, "ready", status.Status)
		assert.Equal(t, "ready", status.Services["input"].Status)
		assert.Equal(t, "ready", status.Services["reports"].Status)
	})

	t.Run("missing input and reports directory", func(t *testing.T) {
		dir := t.TempDir()
		paths, err := config.NewPaths(config.PathsConfig{
			InputFile:  filepath.Join(dir, "absent.xlsx"),
			ReportsDir: filepath.Join(dir, "reports"),
		})
		require.NoError(t, err)

		status := NewHealthService(testBuild, paths, discardLogger()).ReadinessCheck(context.Background())
		assert.Equal(t, "not_ready", status.Status)
		assert.Equal(t, "not_ready", status.Services["input"].Status)
		assert.Equal(t, "not_ready", status.Services["reports"].Status)
		_, err = os.Stat(paths.ReportsDir)
		assert.True(t, os.IsNotExist(err), "readiness must not create the reports directory")
	})
}

func TestHealthService_Version(t *testing.T) {
	paths, err := config.NewPaths(config.PathsConfig{ReportsDir: t.TempDir()})
	require.NoError(t, err)

	build := contracts.NewBuildInfo(config.AppName, "1.0.0")
	build.BuildTime = "2026-01-01T00:00:00Z"

	v := NewHealthService(build, paths, discardLogger()).Version()
	assert.Equal(t, config.AppName, v.Name)
	assert.Equal(t, "2026-01-01T00:00:00Z", v.BuildTime)
	assert.False(t, v.StartTime.IsZero())
}
