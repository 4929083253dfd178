package models

import "time"

// Yes/No flag values used by the deployment and vendor-contact columns.
const (
	FlagYes = "Y"
	FlagNo  = "N"
)

// Response is one team's mutable copy of the fields it may edit for one
// entry. Canonical identity fields (vendor, CVE, risk level, source) are
// never duplicated here; they are read via join to the entry. The pair
// (assignment_id, original_entry_id) is unique.
type Response struct {
	ID                           int        `json:"id"`
	AssignmentID                 int        `json:"assignment_id"`
	OriginalEntryID              int        `json:"original_entry_id"`
	CurrentStatus                string     `json:"current_status"`
	DeployedInKE                 string     `json:"deployed_in_ke"` // 'Y', 'N' or '' when unanswered
	Site                         string     `json:"site"`
	VendorContacted              string     `json:"vendor_contacted"` // 'Y', 'N' or ''
	VendorContactDate            *time.Time `json:"vendor_contact_date,omitempty"`
	VendorResponse               string     `json:"vendor_response"`
	CompensatoryControlsProvided string     `json:"compensatory_controls_provided"`
	TargetDate                   *time.Time `json:"target_date,omitempty"`
	Comments                     string     `json:"comments"`
	UpdatedBy                    *int       `json:"updated_by,omitempty"`
	CreatedAt                    time.Time  `json:"created_at"`
	UpdatedAt                    time.Time  `json:"updated_at"`
}

// MeetsCompletionPredicate reports whether this response counts as done:
// current_status set AND vendor_contacted set AND (not deployed in KE, or
// deployed with compensatory controls provided).
func (r *Response) MeetsCompletionPredicate() bool {
	if r.CurrentStatus == "" || r.VendorContacted == "" {
		return false
	}
	switch r.DeployedInKE {
	case FlagNo:
		return true
	case FlagYes:
		return r.CompensatoryControlsProvided != ""
	default:
		return false
	}
}

// UpdateResponseRequest carries a field-by-field edit of a response.
// Nil pointers mean "leave unchanged" so fields can be set out of order.
type UpdateResponseRequest struct {
	CurrentStatus                *string    `json:"current_status,omitempty"`
	DeployedInKE                 *string    `json:"deployed_in_ke,omitempty"`
	Site                         *string    `json:"site,omitempty"`
	VendorContacted              *string    `json:"vendor_contacted,omitempty"`
	VendorContactDate            *time.Time `json:"vendor_contact_date,omitempty"`
	VendorResponse               *string    `json:"vendor_response,omitempty"`
	CompensatoryControlsProvided *string    `json:"compensatory_controls_provided,omitempty"`
	TargetDate                   *time.Time `json:"target_date,omitempty"`
	Comments                     *string    `json:"comments,omitempty"`
}

// IsEmpty reports whether the request carries no field at all. An empty
// edit is rejected upstream so it cannot grab a lock, bump updated_at or
// count as an edit in the tracking ledger.
func (r *UpdateResponseRequest) IsEmpty() bool {
	return r.CurrentStatus == nil && r.DeployedInKE == nil && r.Site == nil &&
		r.VendorContacted == nil && r.VendorContactDate == nil && r.VendorResponse == nil &&
		r.CompensatoryControlsProvided == nil && r.TargetDate == nil && r.Comments == nil
}

// CompletionPayload is the final set of values applied when a user
// completes an entry.
type CompletionPayload struct {
	CurrentStatus                string     `json:"current_status"`
	DeployedInKE                 string     `json:"deployed_in_ke"`
	Site                         string     `json:"site"`
	VendorContacted              string     `json:"vendor_contacted"`
	VendorContactDate            *time.Time `json:"vendor_contact_date,omitempty"`
	VendorResponse               string     `json:"vendor_response"`
	CompensatoryControlsProvided string     `json:"compensatory_controls_provided"`
	TargetDate                   *time.Time `json:"target_date,omitempty"`
	Comments                     string     `json:"comments"`
}

// MissingFields applies the conditional-requirement rules at completion
// time: site and compensatory controls only matter when deployed_in_ke
// is 'Y', the vendor contact date only when vendor_contacted is 'Y'.
// Returns the field names that are required but unset.
func (p *CompletionPayload) MissingFields() []string {
	var missing []string
	if p.CurrentStatus == "" {
		missing = append(missing, "current_status")
	}
	if p.DeployedInKE != FlagYes && p.DeployedInKE != FlagNo {
		missing = append(missing, "deployed_in_ke")
	}
	if p.VendorContacted != FlagYes && p.VendorContacted != FlagNo {
		missing = append(missing, "vendor_contacted")
	}
	if p.DeployedInKE == FlagYes {
		if p.Site == "" {
			missing = append(missing, "site")
		}
		if p.CompensatoryControlsProvided == "" {
			missing = append(missing, "compensatory_controls_provided")
		}
	}
	if p.VendorContacted == FlagYes && p.VendorContactDate == nil {
		missing = append(missing, "vendor_contact_date")
	}
	return missing
}

// TeamViewRow is a response joined with the read-only canonical fields
// of its source entry, as served to a team's worksheet view.
type TeamViewRow struct {
	Response
	EntryID     int        `json:"entry_id"`
	VendorName  string     `json:"vendor_name"`
	ProductName string     `json:"product_name"`
	CVEID       string     `json:"cve_id"`
	RiskLevel   string     `json:"risk_level"`
	Source      string     `json:"source"`
	AdvisoryRef string     `json:"advisory_ref"`
	Description string     `json:"description"`
	IsCompleted bool       `json:"is_completed"`
	LockedBy    *int       `json:"locked_by_user_id,omitempty"`
	LockedAt    *time.Time `json:"locked_at,omitempty"`
}

// TeamView bundles assignment metadata with the joined rows.
type TeamView struct {
	Assignment *Assignment   `json:"assignment"`
	Responses  []*TeamViewRow `json:"responses"`
}
