package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerflow/assessment-backend/internal/model"
)

// AssessmentSessionRepository handles persisted assessment attempts.
type AssessmentSessionRepository struct {
	pool *pgxpool.Pool
}

// NewAssessmentSessionRepository creates a new AssessmentSessionRepository.
func NewAssessmentSessionRepository(pool *pgxpool.Pool) *AssessmentSessionRepository {
	return &AssessmentSessionRepository{pool: pool}
}

// Create inserts a new running session row.
func (r *AssessmentSessionRepository) Create(ctx context.Context, s *model.AssessmentSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO assessment_sessions (id, user_id, career_id, module_id, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING started_at`,
		s.ID, s.UserID, s.CareerID, s.ModuleID, model.SessionStatusRunning,
	).Scan(&s.StartedAt)
}

// GetByID retrieves one session.
func (r *AssessmentSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.AssessmentSession, error) {
	s := &model.AssessmentSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, career_id, module_id, status, started_at, finished_at,
		        final_score, violation_count, finish_reason
		 FROM assessment_sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.UserID, &s.CareerID, &s.ModuleID, &s.Status, &s.StartedAt,
		&s.FinishedAt, &s.FinalScore, &s.ViolationCount, &s.FinishReason)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListByUser retrieves a user's sessions, newest first.
func (r *AssessmentSessionRepository) ListByUser(ctx context.Context, userID, limit int) ([]model.AssessmentSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, career_id, module_id, status, started_at, finished_at,
		        final_score, violation_count, finish_reason
		 FROM assessment_sessions
		 WHERE user_id = $1
		 ORDER BY started_at DESC
		 LIMIT $2`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.AssessmentSession
	for rows.Next() {
		var s model.AssessmentSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.CareerID, &s.ModuleID, &s.Status, &s.StartedAt,
			&s.FinishedAt, &s.FinalScore, &s.ViolationCount, &s.FinishReason); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Abandon force-finishes any still-running sessions for a user. Used when
// a user starts a new attempt after navigating away from an old one.
func (r *AssessmentSessionRepository) Abandon(ctx context.Context, userID int) error {
	now := time.Now()
	_, err := r.pool.Exec(ctx,
		`UPDATE assessment_sessions
		 SET status = $1, finished_at = $2, finish_reason = 'abandoned'
		 WHERE user_id = $3 AND status = $4`,
		model.SessionStatusFinished, now, userID, model.SessionStatusRunning)
	return err
}
