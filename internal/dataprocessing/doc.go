// Package dataprocessing loads lead workbooks into tables and computes
// everything derived from them without touching disk: descriptive statistics,
// row predicates and partitions, value counts, cross tabs and pivots.
//
// # Usage
//
//	ds, err := dataprocessing.NewLoader(logger).Load(ctx, "leads.xlsx", "")
//	if err != nil {
//	    return err
//	}
//	pred, err := dataprocessing.NotInSet(ds.Table, "Lead Stage", []string{"Won", "Lost"})
//	if errors.IsColumnMissing(err) {
//	    // skip the steps that need the column
//	}
//	active, inactive := dataprocessing.Partition(ds.Table, pred)
//	byCountry, err := summarizer.ValueCounts(active, "Country", dataprocessing.CountOptions{})
//
// # Missing values
//
// A cell whose trimmed value is empty is missing. Predicates never match a
// missing cell, except NotInSet which treats it as outside the set. Value
// counts put missing cells in a labeled bucket so percentages sum to 100.
//
// # Errors
//
// Loading returns typed errors from internal/errors: NOT_FOUND for an absent
// file or sheet, PARSING for an unreadable workbook. Building a predicate or
// aggregate on an absent column returns a COLUMN error.
package dataprocessing
