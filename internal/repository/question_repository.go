package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerflow/assessment-backend/internal/model"
)

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByBank retrieves the full question bank for a career slug.
func (r *QuestionRepository) ListByBank(ctx context.Context, bankSlug string) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT source_id, difficulty, category, prompt, options, answer_index
		 FROM questions
		 WHERE bank_slug = $1
		 ORDER BY source_id`, bankSlug,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Difficulty, &q.Category, &q.Prompt, &q.Options, &q.AnswerIndex); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// CountByBank returns per-difficulty question counts for a bank.
func (r *QuestionRepository) CountByBank(ctx context.Context, bankSlug string) (map[model.Difficulty]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT difficulty, COUNT(*) FROM questions WHERE bank_slug = $1 GROUP BY difficulty`,
		bankSlug,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.Difficulty]int)
	for rows.Next() {
		var tier model.Difficulty
		var count int
		if err := rows.Scan(&tier, &count); err != nil {
			return nil, err
		}
		counts[tier] = count
	}
	return counts, rows.Err()
}

// ReplaceBank atomically replaces every question of a bank with the given set.
func (r *QuestionRepository) ReplaceBank(ctx context.Context, bankSlug string, questions []model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE bank_slug = $1`, bankSlug); err != nil {
		return fmt.Errorf("clear bank: %w", err)
	}

	rows := make([][]interface{}, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, []interface{}{
			bankSlug, q.ID, q.Difficulty, q.Category, q.Prompt, q.Options, q.AnswerIndex,
		})
	}

	if _, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"questions"},
		[]string{"bank_slug", "source_id", "difficulty", "category", "prompt", "options", "answer_index"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("copy questions: %w", err)
	}

	return tx.Commit(ctx)
}
