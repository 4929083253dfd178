package repositories

import (
	"context"
	"errors"
	"time"

	"advisory-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EntryRepository struct {
	DB *pgxpool.Pool
}

func NewEntryRepository(db *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{DB: db}
}

const entryColumns = `id, sheet_id, vendor_name, product_name, cve_id, risk_level, source,
	advisory_ref, description, locked_by_user_id, locked_at, is_completed, completed_at,
	assigned_team_id, created_at, updated_at`

func scanEntry(row pgx.Row) (*models.Entry, error) {
	var e models.Entry
	err := row.Scan(&e.ID, &e.SheetID, &e.VendorName, &e.ProductName, &e.CVEID, &e.RiskLevel,
		&e.Source, &e.AdvisoryRef, &e.Description, &e.LockedByUserID, &e.LockedAt,
		&e.IsCompleted, &e.CompletedAt, &e.AssignedTeamID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EntryRepository) Create(ctx context.Context, e *models.Entry) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO entries (sheet_id, vendor_name, product_name, cve_id, risk_level, source, advisory_ref, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		e.SheetID, e.VendorName, e.ProductName, e.CVEID, e.RiskLevel, e.Source, e.AdvisoryRef, e.Description,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *EntryRepository) Get(ctx context.Context, id int) (*models.Entry, error) {
	return scanEntry(r.DB.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id=$1`, id))
}

func (r *EntryRepository) ListBySheet(ctx context.Context, sheetID int) ([]*models.Entry, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE sheet_id=$1 ORDER BY id`, sheetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// TryLock attempts to claim the entry for userID with one conditional
// update. The WHERE clause is the whole concurrency story: two racing
// acquires can both see "unlocked" at the application layer, but only
// one of these statements matches the row. A lock older than
// staleCutoff counts as abandoned and is taken over; the current holder
// re-acquiring just refreshes locked_at. Completed entries never match.
func (r *EntryRepository) TryLock(ctx context.Context, entryID, userID int, staleCutoff time.Time) (time.Time, bool, error) {
	var lockedAt time.Time
	err := r.DB.QueryRow(ctx,
		`UPDATE entries
		 SET locked_by_user_id = $2, locked_at = NOW(), updated_at = NOW()
		 WHERE id = $1
		   AND is_completed = FALSE
		   AND (locked_by_user_id IS NULL OR locked_by_user_id = $2 OR locked_at < $3)
		 RETURNING locked_at`,
		entryID, userID, staleCutoff,
	).Scan(&lockedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return lockedAt, true, nil
}

// Unlock clears the lock only when userID is the current holder.
func (r *EntryRepository) Unlock(ctx context.Context, entryID, userID int) (bool, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE entries
		 SET locked_by_user_id = NULL, locked_at = NULL, updated_at = NOW()
		 WHERE id = $1 AND locked_by_user_id = $2`,
		entryID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ForceUnlock clears the lock regardless of holder. Administrative.
func (r *EntryRepository) ForceUnlock(ctx context.Context, entryID int) (bool, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE entries
		 SET locked_by_user_id = NULL, locked_at = NULL, updated_at = NOW()
		 WHERE id = $1 AND locked_by_user_id IS NOT NULL`,
		entryID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CompleteTx marks the entry done and releases the lock in the caller's
// transaction, guarded on userID still holding the lock.
func (r *EntryRepository) CompleteTx(ctx context.Context, tx pgx.Tx, entryID, userID int) (bool, error) {
	tag, err := tx.Exec(ctx,
		`UPDATE entries
		 SET is_completed = TRUE, completed_at = NOW(),
		     locked_by_user_id = NULL, locked_at = NULL, updated_at = NOW()
		 WHERE id = $1 AND locked_by_user_id = $2`,
		entryID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Reopen clears the completion flag so the entry is lockable again.
func (r *EntryRepository) Reopen(ctx context.Context, entryID int) (bool, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE entries
		 SET is_completed = FALSE, completed_at = NULL, updated_at = NOW()
		 WHERE id = $1 AND is_completed = TRUE`,
		entryID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// LockStats reports currently held and stale lock counts, used by the
// monitoring dashboard.
func (r *EntryRepository) LockStats(ctx context.Context, staleCutoff time.Time) (active, stale int, err error) {
	err = r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE locked_at >= $1),
		        COUNT(*) FILTER (WHERE locked_at < $1)
		 FROM entries WHERE locked_by_user_id IS NOT NULL`,
		staleCutoff).Scan(&active, &stale)
	return active, stale, err
}

func (r *EntryRepository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM entries WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
