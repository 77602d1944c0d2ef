package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerflow/assessment-backend/internal/model"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetSummaryCounts retrieves the high-level metrics for the dashboard.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context) (totalUsers, totalSessions, totalQuestions, totalViolations int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM assessment_sessions),
			(SELECT COUNT(*) FROM questions),
			(SELECT COUNT(*) FROM proctor_events WHERE counted = TRUE)`,
	).Scan(&totalUsers, &totalSessions, &totalQuestions, &totalViolations)
	return
}

// GetFinishReasonCounts retrieves the distribution of finished sessions by
// terminal reason.
func (r *DashboardRepository) GetFinishReasonCounts(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT finish_reason, COUNT(*)
		 FROM assessment_sessions
		 WHERE status = $1 AND finish_reason IS NOT NULL
		 GROUP BY finish_reason`,
		model.SessionStatusFinished,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var reason string
		var count int
		if err := rows.Scan(&reason, &count); err != nil {
			return nil, err
		}
		counts[reason] = count
	}
	return counts, rows.Err()
}

// CareerScoreRow aggregates finished-session scores for one career path.
type CareerScoreRow struct {
	CareerID string  `json:"career_id"`
	Attempts int     `json:"attempts"`
	AvgScore float64 `json:"avg_score"`
}

// GetCareerScoreBreakdown retrieves per-career attempt counts and average
// final scores over finished sessions.
func (r *DashboardRepository) GetCareerScoreBreakdown(ctx context.Context) ([]CareerScoreRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT career_id, COUNT(*), COALESCE(AVG(final_score), 0)
		 FROM assessment_sessions
		 WHERE status = $1 AND final_score IS NOT NULL
		 GROUP BY career_id
		 ORDER BY career_id`,
		model.SessionStatusFinished,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CareerScoreRow
	for rows.Next() {
		var row CareerScoreRow
		if err := rows.Scan(&row.CareerID, &row.Attempts, &row.AvgScore); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
