package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerflow/assessment-backend/internal/model"
)

// SessionAnswerRepository persists per-question answer logs.
type SessionAnswerRepository struct {
	pool *pgxpool.Pool
}

// NewSessionAnswerRepository creates a new SessionAnswerRepository.
func NewSessionAnswerRepository(pool *pgxpool.Pool) *SessionAnswerRepository {
	return &SessionAnswerRepository{pool: pool}
}

// ListBySession retrieves a session's answer log in presentation order.
func (r *SessionAnswerRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.SessionAnswer, error) {
	dbRows, err := r.pool.Query(ctx,
		`SELECT session_id, question_number, question_id, difficulty, selected, correct, answered_at
		 FROM session_answers
		 WHERE session_id = $1
		 ORDER BY question_number ASC`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer dbRows.Close()

	var answers []model.SessionAnswer
	for dbRows.Next() {
		var a model.SessionAnswer
		if err := dbRows.Scan(&a.SessionID, &a.QuestionNumber, &a.QuestionID, &a.Difficulty,
			&a.Selected, &a.Correct, &a.AnsweredAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, dbRows.Err()
}
