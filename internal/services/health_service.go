package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"leadlens/internal/config"
	"leadlens/internal/validation"
	"leadlens/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	build     contracts.BuildInfo
	paths     *config.Paths
	validator *validation.FileValidator
	startTime time.Time
	logger    *slog.Logger
}

// Probe results
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual dependency health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// VersionInfo is the build of the running server and when it started
type VersionInfo struct {
	contracts.BuildInfo
	StartTime time.Time `json:"start_time"`
}

// NewHealthService creates a health service over the resolved paths
func NewHealthService(build contracts.BuildInfo, paths *config.Paths, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", build.Version),
		slog.String("commit", build.Commit))

	return &HealthService{
		build:     build,
		paths:     paths,
		validator: validation.NewFileValidator(logger),
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.build.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// ReadinessCheck reports ready when the input workbook is readable and the
// reports directory is writable
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.build.Version,
		Services: map[string]ServiceHealth{
			"input":   hs.checkInput(),
			"reports": hs.checkReports(),
		},
	}

	for name, service := range status.Services {
		if service.Status != StatusReady {
			status.Status = StatusNotReady
			hs.logger.WarnContext(ctx, "ReadinessCheck: dependency not ready",
				slog.String("dependency", name),
				slog.String("message", service.Message))
		}
	}
	return status
}

// Version reports the build and the start time of this process
func (hs *HealthService) Version() VersionInfo {
	return VersionInfo{BuildInfo: hs.build, StartTime: hs.startTime}
}

func (hs *HealthService) checkInput() ServiceHealth {
	if err := hs.validator.ValidateWorkbook(hs.paths.InputFile); err != nil {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("Input workbook unavailable: %v", err),
		}
	}
	return ServiceHealth{Status: StatusReady, Message: hs.paths.InputFile}
}

func (hs *HealthService) checkReports() ServiceHealth {
	dir := hs.paths.ReportsDir
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("Reports directory not found: %s", dir),
		}
	}
	if err := hs.validator.ValidateOutputDirectory(dir); err != nil {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("Cannot write to reports directory: %v", err),
		}
	}
	return ServiceHealth{Status: StatusReady, Message: dir}
}
