package models

import "time"

// Entry is one canonical advisory/vulnerability finding within a sheet.
// Identity fields (vendor, CVE, source, risk level) are immutable after
// ingestion. The lock and completion columns are a mutable overlay
// managed by the lock service; at most one non-null locked_by_user_id
// exists per entry at any time.
type Entry struct {
	ID             int        `json:"id"`
	SheetID        int        `json:"sheet_id"`
	VendorName     string     `json:"vendor_name"`
	ProductName    string     `json:"product_name"`
	CVEID          string     `json:"cve_id"`
	RiskLevel      string     `json:"risk_level"` // 'critical', 'high', 'medium', 'low'
	Source         string     `json:"source"`     // advisory feed the finding came from
	AdvisoryRef    string     `json:"advisory_ref"`
	Description    string     `json:"description"`
	LockedByUserID *int       `json:"locked_by_user_id,omitempty"`
	LockedAt       *time.Time `json:"locked_at,omitempty"`
	IsCompleted    bool       `json:"is_completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	AssignedTeamID *int       `json:"assigned_team_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// LockStatus is returned by a successful acquire
type LockStatus struct {
	Locked   bool      `json:"locked"`
	LockedAt time.Time `json:"locked_at"`
}
