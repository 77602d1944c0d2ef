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
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second
)

// ResultWorker consumes persist_results_queue and writes terminal session
// state to PostgreSQL.
type ResultWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewResultWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "result_worker").Logger(),
	}
}

type resultPayload struct {
	SessionID      string `json:"session_id"`
	FinalScore     int    `json:"final_score"`
	ViolationCount int    `json:"violation_count"`
	FinishReason   string `json:"finish_reason"`
	FinishedAt     int64  `json:"finished_at"`
}

func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	batch := make([]*resultPayload, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p resultPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

func (w *ResultWorker) flushSafe(ctx context.Context, batch []*resultPayload) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkUpdateResults(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk result update failed, using fallback")

		for _, p := range batch {
			if err := w.persistSingle(ctx, p); err != nil {
				w.log.Error().Err(err).Msg("persistSingle failed, requeueing")
				raw, _ := json.Marshal(p)
				w.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw)
			}
		}
		return
	}

	// After the terminal state lands in PostgreSQL the live mirrors in
	// Redis are stale; clear them.
	w.bulkClearSessionMirrors(ctx, batch)
}

// bulkUpdateResults applies the whole batch in one UPDATE via UNNEST.
func (w *ResultWorker) bulkUpdateResults(ctx context.Context, batch []*resultPayload) error {
	n := len(batch)

	sessionIDs := make([]uuid.UUID, 0, n)
	scores := make([]int, 0, n)
	violations := make([]int, 0, n)
	reasons := make([]string, 0, n)
	finishedAts := make([]time.Time, 0, n)

	for _, p := range batch {
		sID, err := uuid.Parse(p.SessionID)
		if err != nil {
			return err
		}
		sessionIDs = append(sessionIDs, sID)
		scores = append(scores, p.FinalScore)
		violations = append(violations, p.ViolationCount)
		reasons = append(reasons, p.FinishReason)
		finishedAts = append(finishedAts, time.Unix(p.FinishedAt, 0))
	}

	query := `
		UPDATE assessment_sessions AS s
		SET status = 'FINISHED',
		    final_score = t.final_score,
		    violation_count = t.violation_count,
		    finish_reason = t.finish_reason,
		    finished_at = t.finished_at
		FROM (
			SELECT
				u.session_id,
				u.final_score,
				u.violation_count,
				u.finish_reason,
				u.finished_at
			FROM UNNEST(
				$1::uuid[],
				$2::int[],
				$3::int[],
				$4::text[],
				$5::timestamptz[]
			) AS u (session_id, final_score, violation_count, finish_reason, finished_at)
		) AS t
		WHERE s.id = t.session_id
	`

	_, err := w.pool.Exec(ctx, query, sessionIDs, scores, violations, reasons, finishedAts)
	return err
}

func (w *ResultWorker) bulkClearSessionMirrors(ctx context.Context, batch []*resultPayload) {
	pipe := w.rdb.Pipeline()

	for _, p := range batch {
		pipe.Del(ctx,
			config.CacheKey.SessionStartKey(p.SessionID),
			config.CacheKey.SessionDurationKey(p.SessionID),
			config.CacheKey.SessionViolationsKey(p.SessionID),
		)
	}

	_, _ = pipe.Exec(ctx)
}

func (w *ResultWorker) persistSingle(ctx context.Context, p *resultPayload) error {
	sID, err := uuid.Parse(p.SessionID)
	if err != nil {
		return err
	}

	_, err = w.pool.Exec(ctx,
		`UPDATE assessment_sessions
		 SET status = 'FINISHED',
		     final_score = $1,
		     violation_count = $2,
		     finish_reason = $3,
		     finished_at = $4
		 WHERE id = $5`,
		p.FinalScore, p.ViolationCount, p.FinishReason, time.Unix(p.FinishedAt, 0), sID,
	)
	return err
}
