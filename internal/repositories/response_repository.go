package repositories

import (
	"context"
	"fmt"
	"strings"

	"advisory-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// completionPredicateSQL is the SQL form of the response completion
// predicate. It must stay in lockstep with
// models.Response.MeetsCompletionPredicate.
const completionPredicateSQL = `(
	r.current_status <> '' AND r.vendor_contacted <> ''
	AND (r.deployed_in_ke = 'N'
	     OR (r.deployed_in_ke = 'Y' AND r.compensatory_controls_provided <> ''))
)`

type ResponseRepository struct {
	DB *pgxpool.Pool
}

func NewResponseRepository(db *pgxpool.Pool) *ResponseRepository {
	return &ResponseRepository{DB: db}
}

const responseColumns = `r.id, r.assignment_id, r.original_entry_id, r.current_status,
	r.deployed_in_ke, r.site, r.vendor_contacted, r.vendor_contact_date, r.vendor_response,
	r.compensatory_controls_provided, r.target_date, r.comments, r.updated_by,
	r.created_at, r.updated_at`

func scanResponse(row pgx.Row) (*models.Response, error) {
	var resp models.Response
	err := row.Scan(&resp.ID, &resp.AssignmentID, &resp.OriginalEntryID, &resp.CurrentStatus,
		&resp.DeployedInKE, &resp.Site, &resp.VendorContacted, &resp.VendorContactDate,
		&resp.VendorResponse, &resp.CompensatoryControlsProvided, &resp.TargetDate,
		&resp.Comments, &resp.UpdatedBy, &resp.CreatedAt, &resp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateForAssignment fans one response out per entry of the sheet.
// ON CONFLICT makes a second distribution of the same team a no-op
// rather than a duplicate set of rows.
func (r *ResponseRepository) CreateForAssignment(ctx context.Context, assignmentID, sheetID int) (int, error) {
	tag, err := r.DB.Exec(ctx,
		`INSERT INTO responses (assignment_id, original_entry_id)
		 SELECT $1, e.id FROM entries e WHERE e.sheet_id = $2
		 ON CONFLICT (assignment_id, original_entry_id) DO NOTHING`,
		assignmentID, sheetID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// BackfillForSheet creates responses for entries added to the sheet
// after distribution, across every assignment of the sheet. Existing
// (assignment, entry) pairs are untouched.
func (r *ResponseRepository) BackfillForSheet(ctx context.Context, sheetID int) (int, error) {
	tag, err := r.DB.Exec(ctx,
		`INSERT INTO responses (assignment_id, original_entry_id)
		 SELECT a.id, e.id
		 FROM assignments a
		 JOIN entries e ON e.sheet_id = a.sheet_id
		 WHERE a.sheet_id = $1
		 ON CONFLICT (assignment_id, original_entry_id) DO NOTHING`,
		sheetID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *ResponseRepository) Get(ctx context.Context, id int) (*models.Response, error) {
	return scanResponse(r.DB.QueryRow(ctx,
		`SELECT `+responseColumns+` FROM responses r WHERE r.id=$1`, id))
}

func (r *ResponseRepository) GetByAssignmentAndEntry(ctx context.Context, assignmentID, entryID int) (*models.Response, error) {
	return scanResponse(r.DB.QueryRow(ctx,
		`SELECT `+responseColumns+` FROM responses r
		 WHERE r.assignment_id=$1 AND r.original_entry_id=$2`,
		assignmentID, entryID))
}

// ListTeamView returns the team's responses joined with the read-only
// canonical entry fields.
func (r *ResponseRepository) ListTeamView(ctx context.Context, assignmentID int) ([]*models.TeamViewRow, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+responseColumns+`,
		        e.id, e.vendor_name, e.product_name, e.cve_id, e.risk_level, e.source,
		        e.advisory_ref, e.description, e.is_completed, e.locked_by_user_id, e.locked_at
		 FROM responses r
		 JOIN entries e ON e.id = r.original_entry_id
		 WHERE r.assignment_id = $1
		 ORDER BY e.id`,
		assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var view []*models.TeamViewRow
	for rows.Next() {
		var row models.TeamViewRow
		err := rows.Scan(&row.ID, &row.AssignmentID, &row.OriginalEntryID, &row.CurrentStatus,
			&row.DeployedInKE, &row.Site, &row.VendorContacted, &row.VendorContactDate,
			&row.VendorResponse, &row.CompensatoryControlsProvided, &row.TargetDate,
			&row.Comments, &row.UpdatedBy, &row.CreatedAt, &row.UpdatedAt,
			&row.EntryID, &row.VendorName, &row.ProductName, &row.CVEID, &row.RiskLevel,
			&row.Source, &row.AdvisoryRef, &row.Description, &row.IsCompleted,
			&row.LockedBy, &row.LockedAt)
		if err != nil {
			return nil, err
		}
		view = append(view, &row)
	}
	return view, rows.Err()
}

// UpdateFields applies a partial, field-by-field edit. Only the fields
// present in the request are touched so team members can fill the
// worksheet in any order.
func (r *ResponseRepository) UpdateFields(ctx context.Context, responseID int, req *models.UpdateResponseRequest, userID int) (*models.Response, error) {
	sets := []string{"updated_by = $2", "updated_at = NOW()"}
	args := []interface{}{responseID, userID}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.CurrentStatus != nil {
		add("current_status", *req.CurrentStatus)
	}
	if req.DeployedInKE != nil {
		add("deployed_in_ke", *req.DeployedInKE)
	}
	if req.Site != nil {
		add("site", *req.Site)
	}
	if req.VendorContacted != nil {
		add("vendor_contacted", *req.VendorContacted)
	}
	if req.VendorContactDate != nil {
		add("vendor_contact_date", *req.VendorContactDate)
	}
	if req.VendorResponse != nil {
		add("vendor_response", *req.VendorResponse)
	}
	if req.CompensatoryControlsProvided != nil {
		add("compensatory_controls_provided", *req.CompensatoryControlsProvided)
	}
	if req.TargetDate != nil {
		add("target_date", *req.TargetDate)
	}
	if req.Comments != nil {
		add("comments", *req.Comments)
	}

	query := fmt.Sprintf(
		`UPDATE responses SET %s WHERE id = $1 RETURNING `+strings.ReplaceAll(responseColumns, "r.", ""),
		strings.Join(sets, ", "))
	return scanResponse(r.DB.QueryRow(ctx, query, args...))
}

// ApplyCompletionTx writes the final completion payload in the caller's
// transaction.
func (r *ResponseRepository) ApplyCompletionTx(ctx context.Context, tx pgx.Tx, responseID int, p *models.CompletionPayload, userID int) error {
	_, err := tx.Exec(ctx,
		`UPDATE responses
		 SET current_status = $2, deployed_in_ke = $3, site = $4, vendor_contacted = $5,
		     vendor_contact_date = $6, vendor_response = $7,
		     compensatory_controls_provided = $8, target_date = $9, comments = $10,
		     updated_by = $11, updated_at = NOW()
		 WHERE id = $1`,
		responseID, p.CurrentStatus, p.DeployedInKE, p.Site, p.VendorContacted,
		p.VendorContactDate, p.VendorResponse, p.CompensatoryControlsProvided,
		p.TargetDate, p.Comments, userID)
	return err
}

// PendingEntryIDsTx lists entries whose response still fails the
// completion predicate, inside the submit transaction.
func (r *ResponseRepository) PendingEntryIDsTx(ctx context.Context, tx pgx.Tx, assignmentID int) ([]int, error) {
	rows, err := tx.Query(ctx,
		`SELECT r.original_entry_id
		 FROM responses r
		 WHERE r.assignment_id = $1 AND NOT `+completionPredicateSQL+`
		 ORDER BY r.original_entry_id`,
		assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountProgress returns total responses and how many satisfy the
// completion predicate. Reporting only.
func (r *ResponseRepository) CountProgress(ctx context.Context, assignmentID int) (total, done int, err error) {
	err = r.DB.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE `+completionPredicateSQL+`)
		 FROM responses r
		 WHERE r.assignment_id = $1`,
		assignmentID).Scan(&total, &done)
	return total, done, err
}
