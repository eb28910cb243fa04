package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"leadlens/internal/errors"
	"leadlens/internal/validation"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds input workbooks and generated reports on disk
type Discovery struct {
	logger *slog.Logger
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{logger: logger.With(slog.String("component", "file_discovery"))}
}

// List returns the regular files in dir whose names pass keep, newest first.
// Ties are broken by name so the order is stable. Subdirectories are ignored.
func (d *Discovery) List(dir string, keep func(name string) bool) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || (keep != nil && !keep(entry.Name())) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			d.logger.Debug("skipping unreadable file",
				slog.String("name", entry.Name()),
				slog.String("error", err.Error()))
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(dir, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

// NewestWorkbook returns the most recently modified workbook in dir.
// Office lock files are never picked.
func (d *Discovery) NewestWorkbook(dir string) (FileInfo, error) {
	workbooks, err := d.List(dir, validation.IsWorkbookFile)
	if err != nil {
		if os.IsNotExist(err) {
			return FileInfo{}, errors.NewNotFoundError(fmt.Sprintf("directory %s", dir))
		}
		return FileInfo{}, errors.NewStorageError("failed to read input directory", err).WithContext("dir", dir)
	}
	if len(workbooks) == 0 {
		return FileInfo{}, errors.NewNotFoundError(fmt.Sprintf("workbook in %s", dir))
	}

	d.logger.Info("input workbook discovered",
		slog.String("dir", dir),
		slog.String("workbook", workbooks[0].Name),
		slog.Int("candidates", len(workbooks)))
	return workbooks[0], nil
}

// ResolveInput returns path unchanged when it names a file, or the newest
// workbook inside it when it names a directory
func (d *Discovery) ResolveInput(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return path, nil
	}
	newest, err := d.NewestWorkbook(path)
	if err != nil {
		return "", err
	}
	return newest.Path, nil
}
