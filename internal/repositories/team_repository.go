package repositories

import (
	"context"

	"advisory-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TeamRepository struct {
	DB *pgxpool.Pool
}

func NewTeamRepository(db *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{DB: db}
}

func (r *TeamRepository) Get(ctx context.Context, id int) (*models.Team, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, created_at FROM teams WHERE id=$1`, id)

	var team models.Team
	if err := row.Scan(&team.ID, &team.Name, &team.CreatedAt); err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *TeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, created_at FROM teams ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, &team)
	}
	return teams, rows.Err()
}
