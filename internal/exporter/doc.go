// Package exporter writes analysis results to disk.
//
// This package contains three main components:
//
// WorkbookWriter: multi-sheet xlsx output through excelize. Each sheet gets a
// styled header, an auto filter and a frozen header row. Helpers turn tables,
// aggregates, cross tabs, pivots and key/value summaries into sheets.
//
// CSVWriter: UTF-8 CSV with a BOM so Excel detects the encoding, written to
// a temp file and renamed into place. ReadCSV reads such files back.
//
// HTML report: a single page rendering a table profile, chart references and
// a preview of the first rows.
//
// Example usage:
//
//	w := exporter.NewWorkbookWriter(logger)
//	err := w.Write(ctx, "reports/active_leads_comprehensive.xlsx", []exporter.Sheet{
//	    exporter.TableSheet("Active Leads", active),
//	    exporter.AggregateSheet("By Country", "Country", byCountry),
//	})
package exporter
