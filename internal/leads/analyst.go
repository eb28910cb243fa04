package leads

import (
	"log/slog"

	"leadlens/internal/config"
	"leadlens/internal/dataprocessing"
)

// Analyst runs the lead analyses against the configured business rules
type Analyst struct {
	rules      config.RulesConfig
	summarizer *dataprocessing.Summarizer
	logger     *slog.Logger
}

// NewAnalyst creates an analyst for the given rule set
func NewAnalyst(rules config.RulesConfig, logger *slog.Logger) *Analyst {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyst{
		rules: rules,
		summarizer: dataprocessing.NewSummarizer(logger, dataprocessing.SummarizerConfig{
			MissingLabel: rules.MissingLabel,
			OthersLabel:  rules.OthersLabel,
		}),
		logger: logger.With(slog.String("component", "leads")),
	}
}

// Rules returns the rule set the analyst was built with
func (a *Analyst) Rules() config.RulesConfig {
	return a.rules
}

// Summarizer exposes the shared summarizer so callers aggregate with the same labels
func (a *Analyst) Summarizer() *dataprocessing.Summarizer {
	return a.summarizer
}

// Metric is one labeled figure of a report summary
type Metric struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}
