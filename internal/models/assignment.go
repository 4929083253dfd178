package models

import "time"

// Assignment lifecycle statuses. The only legal transitions are
// assigned -> in_progress -> completed, plus the administrative
// completed -> in_progress reopen.
const (
	AssignmentAssigned   = "assigned"
	AssignmentInProgress = "in_progress"
	AssignmentCompleted  = "completed"
)

// Assignment records a sheet being distributed to one team.
type Assignment struct {
	ID           int        `json:"id"`
	SheetID      int        `json:"sheet_id"`
	TeamID       int        `json:"team_id"`
	Status       string     `json:"status"`
	AssignedAt   time.Time  `json:"assigned_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	AssignedBy   int        `json:"assigned_by"`
	StartedBy    *int       `json:"started_by,omitempty"`
	CompletedBy  *int       `json:"completed_by,omitempty"`
	UnlockReason *string    `json:"unlock_reason,omitempty"`
}

// DistributeRequest represents the request body for distributing a sheet
type DistributeRequest struct {
	TeamIDs []int `json:"team_ids"`
}

type DistributeResult struct {
	AssignmentsCreated int `json:"assignments_created"`
	ResponsesCreated   int `json:"responses_created"`
}

// UnlockRequest reopens a completed assignment. Reason is mandatory.
type UnlockRequest struct {
	Reason   string `json:"reason"`
	TOTPCode string `json:"totp_code,omitempty"`
}

// AssignmentProgress is a reporting-only metric. It must never gate the
// completed transition; Submit uses the strict all-or-nothing predicate.
type AssignmentProgress struct {
	SheetID      int     `json:"sheet_id"`
	TeamID       int     `json:"team_id"`
	Status       string  `json:"status"`
	Total        int     `json:"total"`
	Done         int     `json:"done"`
	PercentDone  float64 `json:"percent_done"`
}
