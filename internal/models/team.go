package models

import "time"

// Team is an operational group that remediates assigned advisories.
// Teams are always referenced by numeric id; names are display-only
// and never persisted into assignment or entry fields.
type Team struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"` // e.g. 'Distribution', 'Transmission', 'Generation'
	CreatedAt time.Time `json:"created_at"`
}
