package repositories

import (
	"context"
	"errors"

	"advisory-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AssignmentRepository struct {
	DB *pgxpool.Pool
}

func NewAssignmentRepository(db *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

const assignmentColumns = `id, sheet_id, team_id, status, assigned_at, started_at, completed_at,
	assigned_by, started_by, completed_by, unlock_reason`

func scanAssignment(row pgx.Row) (*models.Assignment, error) {
	var a models.Assignment
	err := row.Scan(&a.ID, &a.SheetID, &a.TeamID, &a.Status, &a.AssignedAt, &a.StartedAt,
		&a.CompletedAt, &a.AssignedBy, &a.StartedBy, &a.CompletedBy, &a.UnlockReason)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts the assignment in 'assigned' status. Returns the id
// and false when the (sheet, team) pair already existed, which makes
// re-distribution idempotent.
func (r *AssignmentRepository) Create(ctx context.Context, sheetID, teamID, assignedBy int) (int, bool, error) {
	var id int
	err := r.DB.QueryRow(ctx,
		`INSERT INTO assignments (sheet_id, team_id, status, assigned_by)
		 VALUES ($1, $2, 'assigned', $3)
		 ON CONFLICT (sheet_id, team_id) DO NOTHING
		 RETURNING id`,
		sheetID, teamID, assignedBy).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// Already distributed to this team
		err = r.DB.QueryRow(ctx,
			`SELECT id FROM assignments WHERE sheet_id=$1 AND team_id=$2`,
			sheetID, teamID).Scan(&id)
		if err != nil {
			return 0, false, err
		}
		return id, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (r *AssignmentRepository) GetBySheetAndTeam(ctx context.Context, sheetID, teamID int) (*models.Assignment, error) {
	return scanAssignment(r.DB.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE sheet_id=$1 AND team_id=$2`,
		sheetID, teamID))
}

func (r *AssignmentRepository) ListBySheet(ctx context.Context, sheetID int) ([]*models.Assignment, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE sheet_id=$1 ORDER BY team_id`,
		sheetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []*models.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// MarkStarted flips assigned -> in_progress on the first response edit.
// The status guard in the WHERE clause means only the first edit wins;
// later edits are no-ops.
func (r *AssignmentRepository) MarkStarted(ctx context.Context, assignmentID, userID int) (bool, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE assignments
		 SET status = 'in_progress', started_by = $2, started_at = NOW()
		 WHERE id = $1 AND status = 'assigned'`,
		assignmentID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// LockForUpdateTx re-reads the assignment inside the caller's
// transaction with FOR UPDATE, so two concurrent submits serialize.
func (r *AssignmentRepository) LockForUpdateTx(ctx context.Context, tx pgx.Tx, sheetID, teamID int) (*models.Assignment, error) {
	return scanAssignment(tx.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignments
		 WHERE sheet_id=$1 AND team_id=$2
		 FOR UPDATE`,
		sheetID, teamID))
}

// CompleteTx records the completed transition in the caller's
// transaction.
func (r *AssignmentRepository) CompleteTx(ctx context.Context, tx pgx.Tx, assignmentID, userID int) error {
	_, err := tx.Exec(ctx,
		`UPDATE assignments
		 SET status = 'completed', completed_by = $2, completed_at = NOW(), unlock_reason = NULL
		 WHERE id = $1`,
		assignmentID, userID)
	return err
}

// Unlock reopens a completed assignment, clearing completion metadata
// and recording why. Conditional on current status so it cannot clobber
// an assignment that was never completed.
func (r *AssignmentRepository) Unlock(ctx context.Context, sheetID, teamID int, reason string) (bool, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE assignments
		 SET status = 'in_progress', completed_by = NULL, completed_at = NULL, unlock_reason = $3
		 WHERE sheet_id = $1 AND team_id = $2 AND status = 'completed'`,
		sheetID, teamID, reason)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
