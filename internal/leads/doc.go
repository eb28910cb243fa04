// Package leads implements the lead analyses on top of dataprocessing:
// active leads, bounced e-mails, role categories and region reclassification.
// Every list they depend on (inactive stages, bounce keyword, role keywords,
// region countries and aliases) comes from config.RulesConfig.
package leads
