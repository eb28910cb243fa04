package config

// Application constants
const (
	AppName    = "LeadLens"
	AppVersion = "1.0.0"
	AppVendor  = "LeadLens"
)

// Well-known report file names, written under the reports directory
const (
	ActiveLeadsWorkbook   = "active_leads_comprehensive.xlsx"
	ActiveLeadsCSV        = "active_leads.csv"
	BouncedWorkbook       = "email_bounced_analysis.xlsx"
	BouncedCSV            = "email_bounced_records.csv"
	RoleWorkbook          = "role_analysis_by_country.xlsx"
	RegionLogWorkbook     = "region_update_log.xlsx"
	AnalysisSummaryXLSX   = "analysis_summary.xlsx"
	AnalysisReportHTML    = "analysis_report.html"
	PresentationFile      = "Lead_Analysis_Presentation.pptx"
	UpdatedRegionsSuffix  = "_Updated_Regions"
	DefaultInputExtension = ".xlsx"
)

// Chart image names
const (
	ChartActiveByCountry      = "active_leads_by_country.png"
	ChartActiveByStage        = "active_leads_by_stage.png"
	ChartActiveByStageBar     = "active_leads_by_stage_bar.png"
	ChartActiveByIndustry     = "active_leads_by_industry.png"
	ChartActiveByCompanySize  = "active_leads_by_company_size.png"
	ChartBouncedByCountry     = "bounced_by_country.png"
	ChartBouncedCountryPie    = "bounced_country_pie.png"
	ChartBouncedActivityTypes = "bounced_activity_types.png"
	ChartRoleTotals           = "role_category_totals.png"
	ChartRolesByCountry       = "roles_by_country_top15.png"
	ChartMissingData          = "missing_data.png"
	ChartCorrelation          = "correlation_heatmap.png"
	ChartDistributionPrefix   = "distribution_"
)
