package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerflow/assessment-backend/internal/model"
)

// TrainingRepository persists per-user roadmap progress.
type TrainingRepository struct {
	pool *pgxpool.Pool
}

// NewTrainingRepository creates a new TrainingRepository.
func NewTrainingRepository(pool *pgxpool.Pool) *TrainingRepository {
	return &TrainingRepository{pool: pool}
}

// GetSelectedCareer returns the user's confirmed career path, or "" when
// none has been selected yet.
func (r *TrainingRepository) GetSelectedCareer(ctx context.Context, userID int) (string, error) {
	var careerID *string
	err := r.pool.QueryRow(ctx,
		`SELECT selected_career_id FROM users WHERE id = $1`, userID,
	).Scan(&careerID)
	if err != nil {
		return "", err
	}
	if careerID == nil {
		return "", nil
	}
	return *careerID, nil
}

// SetSelectedCareer stores the user's confirmed career path.
func (r *TrainingRepository) SetSelectedCareer(ctx context.Context, userID int, careerID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET selected_career_id = $1 WHERE id = $2`, careerID, userID)
	return err
}

// GetProgress retrieves the persisted module states for a user, keyed by
// module ID. Modules without a row are in their default state.
func (r *TrainingRepository) GetProgress(ctx context.Context, userID int) (map[string]model.TrainingModule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT module_id, status, score
		 FROM training_progress
		 WHERE user_id = $1`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	progress := make(map[string]model.TrainingModule)
	for rows.Next() {
		var m model.TrainingModule
		if err := rows.Scan(&m.ID, &m.Status, &m.Score); err != nil {
			return nil, err
		}
		progress[m.ID] = m
	}
	return progress, rows.Err()
}

// UpsertModule writes one module's state for a user.
func (r *TrainingRepository) UpsertModule(ctx context.Context, userID int, moduleID string, status model.ModuleStatus, score *int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO training_progress (user_id, module_id, status, score)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, module_id)
		 DO UPDATE SET status = EXCLUDED.status, score = COALESCE(EXCLUDED.score, training_progress.score), updated_at = NOW()`,
		userID, moduleID, status, score)
	return err
}

// Reset clears a user's roadmap progress and selected career.
func (r *TrainingRepository) Reset(ctx context.Context, userID int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM training_progress WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE users SET selected_career_id = NULL WHERE id = $1`, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
