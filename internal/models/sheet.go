package models

import "time"

// Sheet is one uploaded batch of advisory entries for a reporting period.
type Sheet struct {
	ID               int       `json:"id"`
	Title            string    `json:"title"`
	ReportingPeriod  string    `json:"reporting_period"` // e.g. '2026-Q1'
	UploadedByUserID int       `json:"uploaded_by_user_id"`
	EntryCount       int       `json:"entry_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// CreateSheetRequest represents the request body for registering a sheet
type CreateSheetRequest struct {
	Title           string `json:"title"`
	ReportingPeriod string `json:"reporting_period"`
}

// ParsedDataset is the normalized tabular payload handed over by the
// ingestion collaborator. Rows are keyed by column header; this core
// never parses spreadsheets itself.
type ParsedDataset struct {
	Headers []string            `json:"headers"`
	Rows    []map[string]string `json:"rows"`
}
