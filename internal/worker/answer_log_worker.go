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

// AnswerLogWorker consumes persist_answers_queue and inserts answer logs
// into PostgreSQL.
type AnswerLogWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewAnswerLogWorker creates a new AnswerLogWorker.
func NewAnswerLogWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *AnswerLogWorker {
	return &AnswerLogWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "answer_log_worker").Logger(),
	}
}

type answerLogPayload struct {
	SessionID      string `json:"session_id"`
	QuestionNumber int    `json:"question_number"`
	QuestionID     int    `json:"question_id"`
	Difficulty     string `json:"difficulty"`
	Selected       int    `json:"selected"`
	Correct        bool   `json:"correct"`
	Timestamp      int64  `json:"timestamp"`
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *AnswerLogWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *AnswerLogWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.PersistAnswersQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var payload answerLogPayload
	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.persistAnswer(ctx, &payload); err != nil {
		w.log.Error().Err(err).
			Str("session_id", payload.SessionID).
			Int("question_number", payload.QuestionNumber).
			Msg("Persist error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *AnswerLogWorker) persistAnswer(ctx context.Context, p *answerLogPayload) error {
	sessionID, err := uuid.Parse(p.SessionID)
	if err != nil {
		return err
	}

	// The answer log is append-only; re-delivered items hit the
	// (session_id, question_number) key and become no-ops.
	_, err = w.pool.Exec(ctx,
		`INSERT INTO session_answers (session_id, question_number, question_id, difficulty, selected, correct, answered_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (session_id, question_number) DO NOTHING`,
		sessionID, p.QuestionNumber, p.QuestionID, p.Difficulty, p.Selected, p.Correct, time.Unix(p.Timestamp, 0),
	)
	return err
}

// drain processes all remaining items in the queue before shutdown.
func (w *AnswerLogWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PersistAnswersQueue).Result()
		if err != nil {
			break
		}

		var payload answerLogPayload
		if err := json.Unmarshal([]byte(result), &payload); err != nil {
			continue
		}
		if err := w.persistAnswer(ctx, &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error, item dropped")
			continue
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining answers")
	}
}
