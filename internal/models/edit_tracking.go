package models

import "time"

// EditTrackingRecord captures which user touched which entry in which
// sheet. One row per (user, sheet, entry); edit_count increments on
// every subsequent edit. Independent of the entry lock.
type EditTrackingRecord struct {
	ID            int       `json:"id"`
	UserID        int       `json:"user_id"`
	SheetID       int       `json:"sheet_id"`
	EntryID       int       `json:"entry_id"`
	ResponseID    *int      `json:"response_id,omitempty"`
	FirstEditedAt time.Time `json:"first_edited_at"`
	LastEditedAt  time.Time `json:"last_edited_at"`
	EditCount     int       `json:"edit_count"`
}
