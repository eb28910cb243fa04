package contracts

import (
	"fmt"
	"runtime"
	"strings"
)

// ReportSchema versions the JSON reports served over HTTP and the sheet
// layout of exported workbooks. Bump it when a field or sheet is renamed.
const ReportSchema = "v1"

// Stamped at link time:
//
//	go build -ldflags "-X leadlens/pkg/contracts.Commit=$(git rev-parse --short HEAD) -X leadlens/pkg/contracts.BuildTime=$(date -u +%FT%TZ)"
var (
	Commit    = ""
	BuildTime = ""
)

// BuildInfo identifies the running binary
type BuildInfo struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	Commit       string `json:"commit,omitempty"`
	BuildTime    string `json:"build_time,omitempty"`
	GoVersion    string `json:"go_version"`
	Platform     string `json:"platform"`
	ReportSchema string `json:"report_schema"`
}

// NewBuildInfo combines the release name and version with the link-time stamps
func NewBuildInfo(name, version string) BuildInfo {
	return BuildInfo{
		Name:         name,
		Version:      version,
		Commit:       Commit,
		BuildTime:    BuildTime,
		GoVersion:    runtime.Version(),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
		ReportSchema: ReportSchema,
	}
}

// String renders the version line printed by --version, e.g.
// "1.0.0 (commit 3f2a9c1, built 2026-03-01T10:00:00Z, go1.23.4 linux/amd64)".
// Unstamped fields are left out.
func (b BuildInfo) String() string {
	details := make([]string, 0, 3)
	if b.Commit != "" {
		details = append(details, "commit "+b.Commit)
	}
	if b.BuildTime != "" {
		details = append(details, "built "+b.BuildTime)
	}
	details = append(details, b.GoVersion+" "+b.Platform)
	return fmt.Sprintf("%s (%s)", b.Version, strings.Join(details, ", "))
}
