package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerflow/assessment-backend/internal/model"
)

// CareerRepository handles career catalog data access.
type CareerRepository struct {
	pool *pgxpool.Pool
}

// NewCareerRepository creates a new CareerRepository.
func NewCareerRepository(pool *pgxpool.Pool) *CareerRepository {
	return &CareerRepository{pool: pool}
}

// List retrieves all career paths in display order.
func (r *CareerRepository) List(ctx context.Context) ([]model.Career, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, subtitle, bank_slug FROM careers ORDER BY sort_order ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var careers []model.Career
	for rows.Next() {
		var c model.Career
		if err := rows.Scan(&c.ID, &c.Title, &c.Subtitle, &c.BankSlug); err != nil {
			return nil, err
		}
		careers = append(careers, c)
	}
	return careers, rows.Err()
}

// GetByID retrieves one career path.
func (r *CareerRepository) GetByID(ctx context.Context, id string) (*model.Career, error) {
	c := &model.Career{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, subtitle, bank_slug FROM careers WHERE id = $1`, id,
	).Scan(&c.ID, &c.Title, &c.Subtitle, &c.BankSlug)
	if err != nil {
		return nil, err
	}
	return c, nil
}
