// Package deck assembles the lead analysis presentation with GoPPT.
//
// Slides are derived from the analysis reports passed in DeckData: summary
// figures, stage and region counts, role and data quality tables, the
// rendered charts, and insight and recommendation lines built from the top
// values of each report. Tables show at most 12 rows.
package deck
