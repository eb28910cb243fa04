// Package files discovers workbooks and reports on disk.
//
// Discovery lists a directory newest first and picks the input workbook when
// the configured input is a directory rather than a file:
//
//	discovery := files.NewDiscovery(logger)
//	input, err := discovery.ResolveInput("exports/")
//	// input is the newest .xlsx in exports/, lock files excluded
package files
