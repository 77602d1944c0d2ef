package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careerflow/assessment-backend/internal/model"
)

// ProctorEventRepository persists integrity violations reported by clients.
type ProctorEventRepository struct {
	pool *pgxpool.Pool
}

// NewProctorEventRepository creates a new ProctorEventRepository.
func NewProctorEventRepository(pool *pgxpool.Pool) *ProctorEventRepository {
	return &ProctorEventRepository{pool: pool}
}

// CreateBatch bulk-inserts proctor events using CopyFrom.
func (r *ProctorEventRepository) CreateBatch(ctx context.Context, events []model.ProctorEvent) error {
	if len(events) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(events))
	for _, e := range events {
		rows = append(rows, []any{e.SessionID, e.UserID, e.Kind, e.Reason, e.Counted, e.OccurredAt})
	}

	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"proctor_events"},
		[]string{"session_id", "user_id", "kind", "reason", "counted", "occurred_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

// ListBySession retrieves a session's proctor events, oldest first.
func (r *ProctorEventRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.ProctorEvent, error) {
	dbRows, err := r.pool.Query(ctx,
		`SELECT id, session_id, user_id, kind, reason, counted, occurred_at
		 FROM proctor_events
		 WHERE session_id = $1
		 ORDER BY occurred_at ASC`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer dbRows.Close()

	var events []model.ProctorEvent
	for dbRows.Next() {
		var e model.ProctorEvent
		if err := dbRows.Scan(&e.ID, &e.SessionID, &e.UserID, &e.Kind, &e.Reason, &e.Counted, &e.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, dbRows.Err()
}

// ListRecent retrieves the latest counted events across all sessions,
// for the proctor monitor feed.
func (r *ProctorEventRepository) ListRecent(ctx context.Context, limit int) ([]model.ProctorEvent, error) {
	dbRows, err := r.pool.Query(ctx,
		`SELECT id, session_id, user_id, kind, reason, counted, occurred_at
		 FROM proctor_events
		 WHERE counted = TRUE
		 ORDER BY occurred_at DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer dbRows.Close()

	var events []model.ProctorEvent
	for dbRows.Next() {
		var e model.ProctorEvent
		if err := dbRows.Scan(&e.ID, &e.SessionID, &e.UserID, &e.Kind, &e.Reason, &e.Counted, &e.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, dbRows.Err()
}
