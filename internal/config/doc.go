// Package config provides centralized configuration management for leadlens.
// It loads configuration from multiple sources, validates it, and owns the
// business-rule lists (inactive stages, region country sets, role keywords)
// that the lead analyses apply.
//
// # Configuration Sources
//
// Configuration is resolved in the following order, later sources winning:
//
//	1. Default() values
//	2. A YAML file (explicit path, or leadlens.yaml / config.yaml / configs/*.yaml)
//	3. Environment variables prefixed with LEADLENS_
//
// # Environment Variables
//
//	LEADLENS_PATHS_INPUT_FILE=/data/leads.xlsx
//	LEADLENS_PATHS_REPORTS_DIR=reports
//	LEADLENS_LOGGING_LEVEL=debug
//	LEADLENS_RULES_INACTIVE_STAGES=Won,Lost,Disqualified
//	LEADLENS_RULES_COUNTRY_ALIASES=UAE:United Arab Emirates,UK:United Kingdom
//
// Region rules, role categories and breakdowns are lists of structs and can
// only be set from the YAML file:
//
//	rules:
//	  regions:
//	    - label: ME
//	      countries: [Saudi Arabia, Qatar, United Arab Emirates]
//	  role_categories:
//	    - name: HR Leads
//	      keywords: [hr, talent]
//
// # Path Management
//
// Paths resolves the configured input workbook and reports directory and names
// every output file:
//
//	paths, err := config.NewPaths(cfg.Paths)
//	out := paths.ReportPath(config.ActiveLeadsWorkbook)
package config
