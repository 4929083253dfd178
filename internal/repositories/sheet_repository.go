package repositories

import (
	"context"

	"advisory-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SheetRepository struct {
	DB *pgxpool.Pool
}

func NewSheetRepository(db *pgxpool.Pool) *SheetRepository {
	return &SheetRepository{DB: db}
}

func (r *SheetRepository) Create(ctx context.Context, s *models.Sheet) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO sheets (title, reporting_period, uploaded_by_user_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		s.Title, s.ReportingPeriod, s.UploadedByUserID,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *SheetRepository) Get(ctx context.Context, id int) (*models.Sheet, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT s.id, s.title, s.reporting_period, s.uploaded_by_user_id, s.created_at,
		        COALESCE(ec.cnt, 0) AS entry_count
		 FROM sheets s
		 LEFT JOIN (
		     SELECT sheet_id, COUNT(*) AS cnt FROM entries GROUP BY sheet_id
		 ) ec ON ec.sheet_id = s.id
		 WHERE s.id=$1`, id)

	var s models.Sheet
	if err := row.Scan(&s.ID, &s.Title, &s.ReportingPeriod, &s.UploadedByUserID, &s.CreatedAt, &s.EntryCount); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SheetRepository) List(ctx context.Context) ([]*models.Sheet, error) {
	// Single query with a JOIN aggregate instead of per-sheet count subqueries
	rows, err := r.DB.Query(ctx,
		`SELECT s.id, s.title, s.reporting_period, s.uploaded_by_user_id, s.created_at,
		        COALESCE(ec.cnt, 0) AS entry_count
		 FROM sheets s
		 LEFT JOIN (
		     SELECT sheet_id, COUNT(*) AS cnt FROM entries GROUP BY sheet_id
		 ) ec ON ec.sheet_id = s.id
		 ORDER BY s.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sheets []*models.Sheet
	for rows.Next() {
		var s models.Sheet
		if err := rows.Scan(&s.ID, &s.Title, &s.ReportingPeriod, &s.UploadedByUserID, &s.CreatedAt, &s.EntryCount); err != nil {
			return nil, err
		}
		sheets = append(sheets, &s)
	}
	return sheets, rows.Err()
}

func (r *SheetRepository) EntryCount(ctx context.Context, sheetID int) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM entries WHERE sheet_id=$1`, sheetID).Scan(&count)
	return count, err
}
