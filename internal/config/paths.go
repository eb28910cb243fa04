package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains the resolved locations the analyses read from and write to.
// This is the single source of truth for output file locations.
type Paths struct {
	InputFile  string
	Sheet      string
	ReportsDir string
	LogoFile   string
}

// NewPaths resolves the configured paths to absolute locations
func NewPaths(cfg PathsConfig) (*Paths, error) {
	reportsDir, err := filepath.Abs(cfg.ReportsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reports directory: %w", err)
	}

	p := &Paths{
		Sheet:      cfg.Sheet,
		ReportsDir: reportsDir,
	}

	if cfg.InputFile != "" {
		if p.InputFile, err = filepath.Abs(cfg.InputFile); err != nil {
			return nil, fmt.Errorf("failed to resolve input file: %w", err)
		}
	}
	if cfg.LogoFile != "" {
		if p.LogoFile, err = filepath.Abs(cfg.LogoFile); err != nil {
			return nil, fmt.Errorf("failed to resolve logo file: %w", err)
		}
	}

	return p, nil
}

// EnsureDirectories creates the reports directory if it doesn't exist
func (p *Paths) EnsureDirectories() error {
	if err := os.MkdirAll(p.ReportsDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.ReportsDir, err)
	}
	return nil
}

// ReportPath returns the path for a report file
func (p *Paths) ReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// UpdatedRegionsPath returns the output path of a region update applied to
// input, e.g. "Raw File.xlsx" becomes "<reports>/Raw File_Updated_Regions.xlsx".
// Applying the update to an already updated file keeps the same name.
func (p *Paths) UpdatedRegionsPath(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if !strings.HasSuffix(base, UpdatedRegionsSuffix) {
		base += UpdatedRegionsSuffix
	}
	return filepath.Join(p.ReportsDir, base+DefaultInputExtension)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Path resolution",
		slog.String("input_file", p.InputFile),
		slog.Bool("input_exists", FileExists(p.InputFile)),
		slog.String("sheet", p.Sheet),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("logo_file", p.LogoFile),
		slog.Bool("logo_exists", FileExists(p.LogoFile)))
}
