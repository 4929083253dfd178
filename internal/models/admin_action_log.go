package models

import "time"

// Administrative action types recorded for accountability.
const (
	ActionForceRelease  = "force_release_lock"
	ActionUnlockSheet   = "unlock_assignment"
	ActionResetTracking = "reset_edit_tracking"
	ActionReopenEntry   = "reopen_entry"
)

type AdminActionLog struct {
	ID          int       `json:"id"`
	AdminUserID int       `json:"admin_user_id"`
	ActionType  string    `json:"action_type"`
	TargetType  string    `json:"target_type"` // 'entry', 'assignment', 'sheet'
	TargetID    *int      `json:"target_id,omitempty"`
	Description string    `json:"description"`
	Reason      *string   `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
