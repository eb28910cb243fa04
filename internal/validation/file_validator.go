package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"leadlens/internal/errors"
)

// Workbook formats excelize can open
var workbookExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

// Generated report formats that may be served back to clients
var reportExtensions = map[string]bool{
	".xlsx": true,
	".csv":  true,
	".png":  true,
	".pptx": true,
	".html": true,
}

// FileValidator checks input workbooks, output directories and report names
// before the analyses touch them
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateFile checks that path exists, is a regular file and can be opened
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return errors.NewNotFoundError(fmt.Sprintf("file %s", path))
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return errors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return errors.NewPermissionError(fmt.Sprintf("file %s is not readable", path))
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateWorkbook checks that path is a readable Excel workbook. Office
// lock files ("~$name.xlsx") are rejected.
func (v *FileValidator) ValidateWorkbook(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.NewAppValidationError("no input workbook given")
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !workbookExtensions[ext] {
		v.logger.Error("File is not an Excel workbook",
			slog.String("file", path),
			slog.String("extension", ext))
		return errors.NewAppValidationError(fmt.Sprintf("file %s is not an Excel workbook (extension: %s)", path, ext))
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Rejecting temporary Excel file",
			slog.String("file", path))
		return errors.NewAppValidationError(fmt.Sprintf("file %s is a temporary Excel file", path))
	}

	return v.ValidateFile(path)
}

// ValidateOutputDirectory ensures dir exists, creating it if needed, and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewPermissionError(fmt.Sprintf("output directory %s is not writable", dir))
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateReportName accepts a bare file name with a generated-report
// extension. Anything that could leave the reports directory is rejected.
func (v *FileValidator) ValidateReportName(name string) error {
	if name == "" || name == "." || name == ".." {
		return errors.NewAppValidationError("report name is required")
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name || strings.HasPrefix(name, ".") {
		v.logger.Warn("Rejected report name",
			slog.String("name", name))
		return errors.NewPermissionError(fmt.Sprintf("invalid report name %q", name))
	}
	if ext := strings.ToLower(filepath.Ext(name)); !reportExtensions[ext] {
		return errors.NewAppValidationError(fmt.Sprintf("unsupported report type %q", ext))
	}
	return nil
}

// IsWorkbookFile reports whether name is an Excel workbook and not an
// Office lock file
func IsWorkbookFile(name string) bool {
	return workbookExtensions[strings.ToLower(filepath.Ext(name))] && !strings.HasPrefix(name, "~$")
}

// IsReportFile reports whether name has a generated-report extension
func IsReportFile(name string) bool {
	return reportExtensions[strings.ToLower(filepath.Ext(name))]
}
