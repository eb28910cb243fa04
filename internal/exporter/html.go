package exporter

import (
	"bytes"
	"context"
	"html/template"
	"io"
	"log/slog"
	"time"

	"leadlens/internal/errors"
	"leadlens/pkg/contracts/domain"
)

// PreviewRows is how many data rows the HTML report shows
const PreviewRows = 10

// HTMLReport is everything the analysis report page renders
type HTMLReport struct {
	Title     string
	Generated time.Time
	Profile   *domain.Profile
	Charts    []string // image file names relative to the report
	Preview   *domain.Table
}

var reportFuncs = template.FuncMap{
	"pct":   FormatPercent,
	"count": FormatCount,
	"num":   formatFloat,
	"add":   func(a, b int) int { return a + b },
}

var reportTemplate = template.Must(template.New("report").Funcs(reportFuncs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 20px; background: #f5f5f5; }
.container { max-width: 1200px; margin: 0 auto; background: #fff; padding: 30px; border-radius: 8px; }
h1 { color: #2c3e50; border-bottom: 3px solid #3498db; padding-bottom: 10px; }
h2 { color: #34495e; margin-top: 30px; border-left: 4px solid #3498db; padding-left: 10px; }
.metric { display: inline-block; margin: 10px 20px 10px 0; padding: 15px; background: #ecf0f1; border-radius: 5px; }
.metric-value { font-size: 24px; font-weight: bold; color: #3498db; }
.metric-label { font-size: 12px; color: #7f8c8d; }
table { border-collapse: collapse; width: 100%; margin: 15px 0; font-size: 13px; }
th { background: #3498db; color: #fff; padding: 8px; text-align: left; }
td { padding: 6px 8px; border-bottom: 1px solid #ddd; }
img { max-width: 100%; margin: 15px 0; border: 1px solid #ddd; }
.preview { overflow-x: auto; }
</style>
</head>
<body>
<div class="container">
<h1>{{.Title}}</h1>
<p>Generated {{.Generated.Format "2006-01-02 15:04:05"}} from {{.Profile.Source}}{{with .Profile.Sheet}} (sheet {{.}}){{end}}</p>

<h2>1. Dataset Overview</h2>
<div class="metric"><div class="metric-value">{{count .Profile.Info.Rows}}</div><div class="metric-label">Rows</div></div>
<div class="metric"><div class="metric-value">{{count .Profile.Info.Columns}}</div><div class="metric-label">Columns</div></div>
<div class="metric"><div class="metric-value">{{count .Profile.Duplicates.Count}}</div><div class="metric-label">Duplicate Rows</div></div>
<div class="metric"><div class="metric-value">{{num .Profile.Info.MemoryMB}} MB</div><div class="metric-label">Memory</div></div>
<h3>Column Information</h3>
<table>
<tr><th>#</th><th>Column</th><th>Type</th><th>Non-Null</th><th>Missing</th></tr>
{{range $i, $c := .Profile.Info.Details}}<tr><td>{{add $i 1}}</td><td>{{$c.Name}}</td><td>{{$c.Kind}}</td><td>{{count $c.NonNull}}</td><td>{{count $c.Missing}}</td></tr>
{{end}}</table>

<h2>2. Statistical Summary</h2>
{{if .Profile.Numeric}}<h3>Numerical Columns</h3>
<table>
<tr><th>Column</th><th>Count</th><th>Mean</th><th>Std</th><th>Min</th><th>25%</th><th>50%</th><th>75%</th><th>Max</th></tr>
{{range .Profile.Numeric}}<tr><td>{{.Column}}</td><td>{{count .Count}}</td><td>{{num .Mean}}</td><td>{{num .Std}}</td><td>{{num .Min}}</td><td>{{num .Q25}}</td><td>{{num .Median}}</td><td>{{num .Q75}}</td><td>{{num .Max}}</td></tr>
{{end}}</table>{{else}}<p>No numerical columns.</p>{{end}}
{{if .Profile.Categorical}}<h3>Categorical Columns</h3>
<table>
<tr><th>Column</th><th>Unique Values</th><th>Most Frequent</th><th>Frequency</th></tr>
{{range .Profile.Categorical}}<tr><td>{{.Column}}</td><td>{{count .Unique}}</td><td>{{.Top}}</td><td>{{count .Freq}}</td></tr>
{{end}}</table>{{end}}

<h2>3. Data Quality</h2>
<div class="metric"><div class="metric-value">{{count .Profile.Missing.Total}}</div><div class="metric-label">Missing Cells</div></div>
<div class="metric"><div class="metric-value">{{pct .Profile.Missing.Percent}}</div><div class="metric-label">Missing Overall</div></div>
<div class="metric"><div class="metric-value">{{pct .Profile.Duplicates.Percent}}</div><div class="metric-label">Duplicates</div></div>
<table>
<tr><th>Column</th><th>Missing</th><th>Percentage</th></tr>
{{range .Profile.Missing.Columns}}{{if .Count}}<tr><td>{{.Column}}</td><td>{{count .Count}}</td><td>{{pct .Percent}}</td></tr>
{{end}}{{end}}</table>

<h2>4. Visualizations</h2>
{{range .Charts}}<img src="{{.}}" alt="{{.}}">
{{else}}<p>No charts were generated.</p>
{{end}}

<h2>5. Data Preview (First {{len .Preview.Rows}} Rows)</h2>
<div class="preview">
<table>
<tr>{{range .Preview.Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Preview.Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
</div>
</div>
</body>
</html>
`))

// RenderHTML renders the report page
func RenderHTML(report HTMLReport) ([]byte, error) {
	if report.Profile == nil {
		return nil, errors.NewExportError("html report needs a profile", nil)
	}
	if report.Preview == nil {
		report.Preview = domain.NewTable(nil, nil)
	}
	if report.Title == "" {
		report.Title = "Lead Data Analysis Report"
	}
	if report.Generated.IsZero() {
		report.Generated = time.Now()
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, report); err != nil {
		return nil, errors.NewExportError("failed to render html report", err)
	}
	return buf.Bytes(), nil
}

// WriteHTML renders the report page to path
func WriteHTML(ctx context.Context, path string, report HTMLReport) error {
	data, err := RenderHTML(report)
	if err != nil {
		return err
	}
	err = writeAtomic(path, func(out io.Writer) error {
		_, err := out.Write(data)
		return err
	})
	if err != nil {
		return errors.NewStorageError("failed to write html report", err).WithContext("path", path)
	}
	slog.InfoContext(ctx, "html report written", slog.String("path", path))
	return nil
}
