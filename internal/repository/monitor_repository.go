package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/careerflow/assessment-backend/internal/config"
	"github.com/careerflow/assessment-backend/internal/model"
)

// MonitorRepository provides data access for the live proctoring monitor.
// It combines PostgreSQL (session rows) and Redis (live counters).
type MonitorRepository struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
}

// NewMonitorRepository creates a new MonitorRepository.
func NewMonitorRepository(pool *pgxpool.Pool, rdb *redis.Client) *MonitorRepository {
	return &MonitorRepository{pool: pool, rdb: rdb}
}

// RunningSessionRow is one live session as shown on the monitor board.
type RunningSessionRow struct {
	SessionID uuid.UUID `json:"session_id"`
	UserID    int       `json:"user_id"`
	UserName  string    `json:"user_name"`
	CareerID  string    `json:"career_id"`
	ModuleID  string    `json:"module_id"`
	StartedAt time.Time `json:"started_at"`
}

// GetRunningSessions returns all sessions currently in progress.
func (r *MonitorRepository) GetRunningSessions(ctx context.Context) ([]RunningSessionRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.user_id, u.name, s.career_id, s.module_id, s.started_at
		 FROM assessment_sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.status = $1
		 ORDER BY s.started_at ASC`,
		model.SessionStatusRunning,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []RunningSessionRow
	for rows.Next() {
		var s RunningSessionRow
		if err := rows.Scan(&s.SessionID, &s.UserID, &s.UserName, &s.CareerID, &s.ModuleID, &s.StartedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetLiveViolationCount reads the Redis violation counter for a running
// session. Returns redis.Nil when no mirror exists.
func (r *MonitorRepository) GetLiveViolationCount(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	return r.rdb.Get(ctx, config.CacheKey.SessionViolationsKey(sessionID.String())).Int64()
}

// GetLiveRemaining reads the mirrored countdown for a running session.
// Returns -1 when no mirror exists.
func (r *MonitorRepository) GetLiveRemaining(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	secs, err := r.rdb.Get(ctx, config.CacheKey.SessionDurationKey(sessionID.String())).Int64()
	if err == redis.Nil {
		return -1, nil
	}
	return secs, err
}

// GetViolationCounts returns the persisted counted-violation totals per
// session for the given session IDs.
func (r *MonitorRepository) GetViolationCounts(ctx context.Context, sessionIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	result := make(map[uuid.UUID]int64)
	if len(sessionIDs) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT session_id, COUNT(*)
		 FROM proctor_events
		 WHERE counted = TRUE AND session_id = ANY($1)
		 GROUP BY session_id`,
		sessionIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var sid uuid.UUID
		var count int64
		if err := rows.Scan(&sid, &count); err != nil {
			return nil, err
		}
		result[sid] = count
	}
	return result, rows.Err()
}
