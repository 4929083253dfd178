package repositories

import (
	"context"

	"advisory-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EditTrackingRepository struct {
	DB *pgxpool.Pool
}

func NewEditTrackingRepository(db *pgxpool.Pool) *EditTrackingRepository {
	return &EditTrackingRepository{DB: db}
}

// Upsert records one edit. The unique (user_id, sheet_id, entry_id)
// constraint turns concurrent edits by the same user from two tabs into
// serialized increments instead of lost updates.
func (r *EditTrackingRepository) Upsert(ctx context.Context, userID, sheetID, entryID int, responseID *int) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO edit_tracking_records (user_id, sheet_id, entry_id, response_id)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, sheet_id, entry_id) DO UPDATE
		 SET edit_count = edit_tracking_records.edit_count + 1,
		     last_edited_at = NOW(),
		     response_id = COALESCE(EXCLUDED.response_id, edit_tracking_records.response_id)`,
		userID, sheetID, entryID, responseID)
	return err
}

func (r *EditTrackingRepository) Get(ctx context.Context, userID, sheetID, entryID int) (*models.EditTrackingRecord, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, user_id, sheet_id, entry_id, response_id, first_edited_at, last_edited_at, edit_count
		 FROM edit_tracking_records
		 WHERE user_id=$1 AND sheet_id=$2 AND entry_id=$3`,
		userID, sheetID, entryID)

	var rec models.EditTrackingRecord
	err := row.Scan(&rec.ID, &rec.UserID, &rec.SheetID, &rec.EntryID, &rec.ResponseID,
		&rec.FirstEditedAt, &rec.LastEditedAt, &rec.EditCount)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// EntryIDsForUser returns the distinct entries a user has touched in a
// sheet, used for "already worked on" highlighting.
func (r *EditTrackingRepository) EntryIDsForUser(ctx context.Context, userID, sheetID int) ([]int, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT DISTINCT entry_id FROM edit_tracking_records
		 WHERE user_id=$1 AND sheet_id=$2
		 ORDER BY entry_id`,
		userID, sheetID)
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

// EntryIDsForTeam returns the distinct entries any member of the team
// has touched in a sheet.
func (r *EditTrackingRepository) EntryIDsForTeam(ctx context.Context, teamID, sheetID int) ([]int, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT DISTINCT t.entry_id
		 FROM edit_tracking_records t
		 JOIN users u ON u.id = t.user_id
		 WHERE u.team_id=$1 AND t.sheet_id=$2
		 ORDER BY t.entry_id`,
		teamID, sheetID)
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

// Remove cascades tracking when an entry is deleted or reset.
func (r *EditTrackingRepository) Remove(ctx context.Context, sheetID, entryID int) error {
	_, err := r.DB.Exec(ctx,
		`DELETE FROM edit_tracking_records WHERE sheet_id=$1 AND entry_id=$2`,
		sheetID, entryID)
	return err
}
