package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/careerflow/assessment-backend/internal/config"
	"github.com/careerflow/assessment-backend/internal/engine"
	"github.com/careerflow/assessment-backend/internal/model"
	"github.com/careerflow/assessment-backend/internal/repository"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// ProctorEventWorker consumes persist_events_queue and batch-inserts
// integrity events into PostgreSQL.
type ProctorEventWorker struct {
	pool   *pgxpool.Pool
	rdb    *redis.Client
	events *repository.ProctorEventRepository
	log    zerolog.Logger
}

func NewProctorEventWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ProctorEventWorker {
	return &ProctorEventWorker{
		pool:   pool,
		rdb:    rdb,
		events: repository.NewProctorEventRepository(pool),
		log:    log.With().Str("component", "proctor_event_worker").Logger(),
	}
}

type proctorEventPayload struct {
	SessionID string `json:"session_id"`
	UserID    int    `json:"user_id"`
	Kind      string `json:"kind"`
	Counted   bool   `json:"counted"`
	Timestamp int64  `json:"timestamp"`
}

func (w *ProctorEventWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ProctorEventWorker started")

	buffer := make([]*proctorEventPayload, 0, BatchSize)
	lastFlush := time.Now()

	for {
		if len(buffer) > 0 {
			if len(buffer) >= BatchSize || time.Since(lastFlush) >= BatchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0]
				lastFlush = time.Now()
			}
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistEventsQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		if len(result) < 2 {
			continue
		}

		var payload proctorEventPayload
		if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
			// Malformed JSON cannot be retried. Log and discard.
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed JSON")
			continue
		}

		buffer = append(buffer, &payload)
	}
}

// flushSafe attempts bulk insert, then fallback insert, then requeue.
func (w *ProctorEventWorker) flushSafe(ctx context.Context, batch []*proctorEventPayload) {
	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
	}
}

func (w *ProctorEventWorker) bulkInsert(ctx context.Context, batch []*proctorEventPayload) error {
	events := make([]model.ProctorEvent, 0, len(batch))
	for _, p := range batch {
		sessionID, err := uuid.Parse(p.SessionID)
		if err != nil {
			// Trigger fallback, which drops the bad UUID individually.
			return err
		}
		events = append(events, model.ProctorEvent{
			SessionID:  sessionID,
			UserID:     p.UserID,
			Kind:       p.Kind,
			Reason:     engine.EventKind(p.Kind).Reason(),
			Counted:    p.Counted,
			OccurredAt: time.Unix(p.Timestamp, 0),
		})
	}
	return w.events.CreateBatch(ctx, events)
}

func (w *ProctorEventWorker) fallbackInsert(ctx context.Context, batch []*proctorEventPayload) {
	requeueList := make([]*proctorEventPayload, 0)

	for _, p := range batch {
		sessionID, err := uuid.Parse(p.SessionID)
		if err != nil {
			w.log.Error().Str("session_id", p.SessionID).Msg("Dropping proctor event with invalid UUID")
			continue
		}

		_, err = w.pool.Exec(ctx,
			`INSERT INTO proctor_events (session_id, user_id, kind, reason, counted, occurred_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			sessionID, p.UserID, p.Kind, engine.EventKind(p.Kind).Reason(), p.Counted, time.Unix(p.Timestamp, 0),
		)
		if err != nil {
			w.log.Error().Err(err).Int("user_id", p.UserID).Msg("Insert failed, requeueing")
			requeueList = append(requeueList, p)
		}
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *ProctorEventWorker) requeue(ctx context.Context, items []*proctorEventPayload) {
	pipe := w.rdb.Pipeline()
	for _, p := range items {
		data, _ := json.Marshal(p)
		pipe.RPush(ctx, config.WorkerKey.PersistEventsQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue items to Redis. Data loss occurred.")
		return
	}
	w.log.Info().Int("count", len(items)).Msg("Requeued failed items back to Redis")
	// Avoid thrashing if the DB is down hard.
	time.Sleep(2 * time.Second)
}

func (w *ProctorEventWorker) shutdown(buffer []*proctorEventPayload) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}
