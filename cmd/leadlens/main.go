// Command leadlens analyses a sales lead workbook: active leads, bounced
// e-mails, role categories, region reclassification, charts and a
// presentation deck. "leadlens serve" exposes the same analyses over HTTP.
package main

import (
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
