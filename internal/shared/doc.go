// Package shared holds helpers used by more than one package.
//
// The testutil subpackage captures slog output and writes small lead
// workbooks so package tests can assert on logs and feed the loader real
// .xlsx files:
//
//	logger, logs := testutil.NewTestLogger(t)
//	input := testutil.WriteWorkbook(t, t.TempDir(), "leads.xlsx", testutil.ExampleLeads())
//	...
//	testutil.AssertLogContains(t, logs, slog.LevelInfo, "input workbook discovered")
//
// Nothing here may import business packages.
package shared
