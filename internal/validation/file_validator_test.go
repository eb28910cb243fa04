package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadlens/internal/errors"
)

func TestFileValidator_ValidateWorkbook(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantType  errors.ErrorType
	}{
		{
			name: "valid workbook",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "leads.xlsx")
				require.NoError(t, os.WriteFile(file, []byte("test"), 0644))
				return file
			},
		},
		{
			name: "upper case extension",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "LEADS.XLSX")
				require.NoError(t, os.WriteFile(file, []byte("test"), 0644))
				return file
			},
		},
		{
			name:      "empty path",
			setupFunc: func(t *testing.T) string { return "" },
			wantType:  errors.ErrTypeValidation,
		},
		{
			name:      "non-existent file",
			setupFunc: func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.xlsx") },
			wantType:  errors.ErrTypeNotFound,
		},
		{
			name: "csv is not a workbook",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "leads.csv")
				require.NoError(t, os.WriteFile(file, []byte("a,b"), 0644))
				return file
			},
			wantType: errors.ErrTypeValidation,
		},
		{
			name: "office lock file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "~$leads.xlsx")
				require.NoError(t, os.WriteFile(file, []byte("lock"), 0644))
				return file
			},
			wantType: errors.ErrTypeValidation,
		},
		{
			name: "directory with workbook extension",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "folder.xlsx")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			wantType: errors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := NewFileValidator(slog.Default())
			err := validator.ValidateWorkbook(tt.setupFunc(t))

			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantType, errors.TypeOf(err))
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	validator := NewFileValidator(nil)

	dir := filepath.Join(t.TempDir(), "reports", "nested")
	require.NoError(t, validator.ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Stat(filepath.Join(dir, ".write_test"))
	assert.True(t, os.IsNotExist(err), "probe file is removed")
}

func TestFileValidator_ValidateReportName(t *testing.T) {
	tests := []struct {
		name     string
		report   string
		wantType errors.ErrorType
	}{
		{"workbook", "active_leads_comprehensive.xlsx", ""},
		{"chart", "bounced_by_country.png", ""},
		{"deck", "Lead_Analysis_Presentation.pptx", ""},
		{"empty", "", errors.ErrTypeValidation},
		{"parent traversal", "../config.yaml", errors.ErrTypePermission},
		{"nested path", "sub/report.xlsx", errors.ErrTypePermission},
		{"windows separator", `..\report.xlsx`, errors.ErrTypePermission},
		{"hidden file", ".write_test.csv", errors.ErrTypePermission},
		{"unsupported type", "notes.txt", errors.ErrTypeValidation},
	}

	validator := NewFileValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateReportName(tt.report)
			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantType, errors.TypeOf(err))
		})
	}
}

func TestStruct_AggregateQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   AggregateQuery
		wantErr string
	}{
		{"column only", AggregateQuery{Column: "Country"}, ""},
		{"subset and top", AggregateQuery{Column: "Country", Subset: "active", Top: 10}, ""},
		{"missing column", AggregateQuery{}, "column failed 'required'"},
		{"unknown subset", AggregateQuery{Column: "Country", Subset: "stale"}, "subset failed 'oneof'"},
		{"negative top", AggregateQuery{Column: "Country", Top: -1}, "top failed 'gte'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.query)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStruct_RegionsRequest(t *testing.T) {
	assert.NoError(t, Struct(RegionsRequest{}))
	assert.NoError(t, Struct(RegionsRequest{Labels: []string{"GCC"}}))

	err := Struct(RegionsRequest{Labels: []string{"GCC", ""}})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
}

func TestIsReportFile(t *testing.T) {
	assert.True(t, IsReportFile("a.PNG"))
	assert.True(t, IsReportFile("report.html"))
	assert.False(t, IsReportFile("leadlens.log"))
}
