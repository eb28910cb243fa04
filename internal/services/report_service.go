package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"leadlens/internal/config"
	"leadlens/internal/errors"
	"leadlens/internal/files"
	"leadlens/internal/validation"
)

// ReportFile describes one generated report in the reports directory
type ReportFile struct {
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// ReportService lists and resolves the files a run has written
type ReportService struct {
	paths     *config.Paths
	validator *validation.FileValidator
	discovery *files.Discovery
	logger    *slog.Logger
}

// NewReportService creates a report catalogue over the configured reports directory
func NewReportService(paths *config.Paths, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		paths:     paths,
		validator: validation.NewFileValidator(logger),
		discovery: files.NewDiscovery(logger),
		logger:    logger.With(slog.String("component", "report_service")),
	}
}

// List returns the reports, newest first. A missing reports directory is an
// empty list.
func (rs *ReportService) List(ctx context.Context) ([]ReportFile, error) {
	dir := rs.paths.ReportsDir
	rs.logger.DebugContext(ctx, "listing reports", slog.String("reports_dir", dir))

	found, err := rs.discovery.List(dir, validation.IsReportFile)
	if err != nil {
		if os.IsNotExist(err) {
			return []ReportFile{}, nil
		}
		return nil, errors.NewStorageError("failed to read reports directory", err).WithContext("dir", dir)
	}

	reports := make([]ReportFile, 0, len(found))
	for _, f := range found {
		reports = append(reports, ReportFile{
			Name:     f.Name,
			Category: reportCategory(f.Name),
			Size:     f.Size,
			Modified: f.ModTime,
		})
	}

	rs.logger.DebugContext(ctx, "reports listed", slog.Int("count", len(reports)))
	return reports, nil
}

// Resolve returns the absolute path of a report for download. The name must
// be a bare file name of a report type that exists in the reports directory.
func (rs *ReportService) Resolve(ctx context.Context, name string) (string, error) {
	if err := rs.validator.ValidateReportName(name); err != nil {
		rs.logger.WarnContext(ctx, "rejected report name",
			slog.String("name", name),
			slog.String("error", err.Error()))
		return "", err
	}

	absDir, err := filepath.Abs(rs.paths.ReportsDir)
	if err != nil {
		return "", errors.NewStorageError("invalid reports directory", err)
	}
	path := filepath.Join(absDir, name)
	if filepath.Dir(path) != filepath.Clean(absDir) {
		return "", errors.NewPermissionError("report must be inside the reports directory").WithContext("name", name)
	}

	if err := rs.validator.ValidateFile(path); err != nil {
		return "", err
	}
	return path, nil
}

// reportCategory groups a report by the analysis that writes it
func reportCategory(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "active_leads"):
		return "active"
	case strings.HasPrefix(lower, "email_bounced"), strings.HasPrefix(lower, "bounced_"):
		return "bounced"
	case strings.HasPrefix(lower, "role"):
		return "roles"
	case strings.HasPrefix(lower, "region"), strings.Contains(lower, "updated_regions"):
		return "regions"
	case strings.HasSuffix(lower, ".pptx"):
		return "presentation"
	case strings.HasPrefix(lower, "analysis_"), strings.HasPrefix(lower, config.ChartDistributionPrefix),
		lower == config.ChartMissingData, lower == config.ChartCorrelation:
		return "profile"
	}
	return "other"
}
