package repositories

import (
	"context"

	"advisory-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminActionLogRepository struct {
	DB *pgxpool.Pool
}

func NewAdminActionLogRepository(db *pgxpool.Pool) *AdminActionLogRepository {
	return &AdminActionLogRepository{DB: db}
}

func (r *AdminActionLogRepository) Create(ctx context.Context, log *models.AdminActionLog) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO admin_action_logs (admin_user_id, action_type, target_type, target_id, description, reason)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		log.AdminUserID, log.ActionType, log.TargetType, log.TargetID, log.Description, log.Reason,
	).Scan(&log.ID, &log.CreatedAt)
}

func (r *AdminActionLogRepository) List(ctx context.Context, limit int) ([]*models.AdminActionLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Query(ctx,
		`SELECT id, admin_user_id, action_type, target_type, target_id, description, reason, created_at
		 FROM admin_action_logs
		 ORDER BY created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.AdminActionLog
	for rows.Next() {
		var l models.AdminActionLog
		if err := rows.Scan(&l.ID, &l.AdminUserID, &l.ActionType, &l.TargetType, &l.TargetID,
			&l.Description, &l.Reason, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
