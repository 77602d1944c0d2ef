package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/careerflow/assessment-backend/internal/config"
	"github.com/careerflow/assessment-backend/internal/engine"
	"github.com/careerflow/assessment-backend/internal/model"
	"github.com/careerflow/assessment-backend/internal/repository"
)

// Assessment errors.
var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionInProgress = errors.New("another session is already in progress")
	ErrBankUnavailable   = errors.New("question bank unavailable")
)

// Push is one server-initiated message for the session's client stream.
type Push struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// QuestionView is a question as shown to the client. The answer index
// never leaves the server.
type QuestionView struct {
	Number     int              `json:"number"`
	Total      int              `json:"total"`
	Difficulty model.Difficulty `json:"difficulty"`
	Category   string           `json:"category"`
	Prompt     string           `json:"question"`
	Options    []string         `json:"options"`
}

// StateView is the running-session snapshot returned on reconnect.
type StateView struct {
	SessionID  uuid.UUID     `json:"session_id"`
	State      engine.State  `json:"state"`
	Question   *QuestionView `json:"question,omitempty"`
	Remaining  int           `json:"remaining_seconds"`
	Violations int           `json:"violations"`
	Limit      int           `json:"violation_limit"`
	Notice     string        `json:"notice,omitempty"`
}

// FinishView describes a terminal transition pushed to the client.
type FinishView struct {
	SessionID uuid.UUID           `json:"session_id"`
	Reason    engine.FinishReason `json:"reason"`
}

// clientDisplay is the engine Display capability backed by client-reported
// full-screen state. The server cannot force the client's screen; Exit
// only clears the tracked flag and the terminal push tells the client to
// leave full-screen.
type clientDisplay struct {
	granted bool
	active  bool
}

func (d *clientDisplay) Request() error {
	if !d.granted {
		return errors.New("client did not grant full-screen")
	}
	d.active = true
	return nil
}

func (d *clientDisplay) Exit()        { d.active = false }
func (d *clientDisplay) Active() bool { return d.active }

// liveSession is one in-memory attempt, owned exclusively by this process.
// mu serializes engine access across HTTP handlers, the WebSocket reader
// and the ticker goroutine.
type liveSession struct {
	mu      sync.Mutex
	eng     *engine.Session
	display *clientDisplay

	id        uuid.UUID
	userID    int
	careerID  string
	moduleID  string
	startedAt time.Time

	subscribers map[chan Push]struct{}
	tickerStop  chan struct{}
	finalized   bool
}

func (ls *liveSession) broadcast(p Push) {
	for ch := range ls.subscribers {
		select {
		case ch <- p:
		default:
			// Slow consumer; drop rather than block the session.
		}
	}
}

func (ls *liveSession) questionView() *QuestionView {
	q, ok := ls.eng.CurrentQuestion()
	if !ok {
		return nil
	}
	return &QuestionView{
		Number:     ls.eng.QuestionNumber(),
		Total:      ls.eng.Config().QuestionTarget,
		Difficulty: q.Difficulty,
		Category:   q.Category,
		Prompt:     q.Prompt,
		Options:    q.Options,
	}
}

// AssessmentService creates and drives live assessment sessions: it loads
// the career's question bank, owns the per-session ticker, mirrors live
// state into Redis and queues durable writes for the workers.
type AssessmentService struct {
	cfg          *config.Config
	sessionRepo  *repository.AssessmentSessionRepository
	questionRepo *repository.QuestionRepository
	training     *TrainingService
	rdb          *redis.Client
	log          zerolog.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*liveSession
	byUser   map[int]uuid.UUID
}

// NewAssessmentService creates a new AssessmentService.
func NewAssessmentService(
	cfg *config.Config,
	sessionRepo *repository.AssessmentSessionRepository,
	questionRepo *repository.QuestionRepository,
	training *TrainingService,
	rdb *redis.Client,
	log zerolog.Logger,
) *AssessmentService {
	return &AssessmentService{
		cfg:          cfg,
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		training:     training,
		rdb:          rdb,
		log:          log.With().Str("component", "assessment_service").Logger(),
		sessions:     make(map[uuid.UUID]*liveSession),
		byUser:       make(map[int]uuid.UUID),
	}
}

// bankSlugFor resolves which question bank a module draws from. The skill
// test uses the selected career's bank; the later test modules have banks
// of their own.
func (s *AssessmentService) bankSlugFor(ctx context.Context, userID int, moduleID string) (careerID, slug string, err error) {
	career, err := s.training.SelectedCareer(ctx, userID)
	if err != nil {
		return "", "", err
	}
	if moduleID == model.ModuleSkillTest {
		return career.ID, career.BankSlug, nil
	}
	return career.ID, moduleID, nil
}

// Start creates a running session for the user and returns the first
// question. A user holds at most one live session.
func (s *AssessmentService) Start(ctx context.Context, userID int, req *model.StartAssessmentRequest) (*StateView, error) {
	// The module must be reachable on the roadmap.
	modules, err := s.training.GetRoadmap(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlocked := false
	for _, m := range modules {
		if m.ID == req.ModuleID && m.Status != model.ModuleStatusLocked {
			unlocked = true
			break
		}
	}
	if !unlocked {
		return nil, ErrModuleLocked
	}

	careerID, slug, err := s.bankSlugFor(ctx, userID, req.ModuleID)
	if err != nil {
		return nil, err
	}

	bank, err := s.questionRepo.ListByBank(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("load bank %s: %w", slug, err)
	}
	if len(bank) == 0 {
		return nil, ErrBankUnavailable
	}

	display := &clientDisplay{granted: req.FullscreenGranted}
	cfg := engine.DefaultConfig()
	cfg.FullscreenPolicy = engine.FullscreenPolicy(s.cfg.FullscreenPolicy)

	ls := &liveSession{
		id:          uuid.New(),
		userID:      userID,
		careerID:    careerID,
		moduleID:    req.ModuleID,
		display:     display,
		subscribers: make(map[chan Push]struct{}),
		tickerStop:  make(chan struct{}),
	}
	ls.eng = engine.NewSession(bank, cfg, display, nil, func(percentage int) {
		s.onSessionComplete(ls, percentage)
	})

	if err := ls.eng.Start(); err != nil {
		return nil, err
	}

	// Check and reserve in one critical section so two concurrent starts
	// by the same user cannot both pass the one-live-session check.
	s.mu.Lock()
	if existingID, ok := s.byUser[userID]; ok {
		if existing, ok := s.sessions[existingID]; ok {
			existing.mu.Lock()
			running := existing.eng.State() == engine.StateRunning
			existing.mu.Unlock()
			if running {
				s.mu.Unlock()
				return nil, ErrSessionInProgress
			}
			// A finished but unacknowledged attempt is replaced.
			s.removeLocked(existing)
		}
	}
	s.sessions[ls.id] = ls
	s.byUser[userID] = ls.id
	s.mu.Unlock()

	// Stale RUNNING rows from a previous process have no live session to
	// finish them; mark them abandoned before opening the new attempt.
	if err := s.sessionRepo.Abandon(ctx, userID); err != nil {
		s.log.Warn().Err(err).Int("user_id", userID).Msg("Failed to abandon stale sessions")
	}

	row := &model.AssessmentSession{
		ID:       ls.id,
		UserID:   userID,
		CareerID: careerID,
		ModuleID: req.ModuleID,
		Status:   model.SessionStatusRunning,
	}
	if err := s.sessionRepo.Create(ctx, row); err != nil {
		s.mu.Lock()
		s.removeLocked(ls)
		s.mu.Unlock()
		return nil, fmt.Errorf("create session: %w", err)
	}
	ls.startedAt = row.StartedAt

	s.mirrorStart(ctx, ls)

	go s.runTicker(ls)

	s.log.Info().
		Str("session_id", ls.id.String()).
		Int("user_id", userID).
		Str("module_id", req.ModuleID).
		Str("bank", slug).
		Msg("Session started")

	return s.stateView(ls), nil
}

// mirrorStart seeds the Redis live mirrors for a new session.
func (s *AssessmentService) mirrorStart(ctx context.Context, ls *liveSession) {
	id := ls.id.String()
	dur := s.cfg.SessionTTL
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.SessionStartKey(id), ls.startedAt.Unix(), dur)
	pipe.Set(ctx, config.CacheKey.SessionDurationKey(id), ls.eng.Remaining(), dur)
	pipe.Set(ctx, config.CacheKey.SessionViolationsKey(id), 0, dur)
	pipe.Set(ctx, config.CacheKey.UserActiveSessionKey(ls.userID), id, dur)
	if _, err := pipe.Exec(ctx); err != nil {
		// The mirrors are advisory; the engine remains authoritative.
		s.log.Warn().Err(err).Str("session_id", id).Msg("Failed to seed Redis mirrors")
	}
}

// runTicker drives the 1 s countdown until the session leaves the running
// state. Exactly one ticker goroutine exists per live session.
func (s *AssessmentService) runTicker(ls *liveSession) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ls.tickerStop:
			return
		case <-ticker.C:
		}

		ls.mu.Lock()
		remaining, finished := ls.eng.Tick()
		if finished {
			s.finalizeLocked(ls)
			ls.mu.Unlock()
			return
		}
		ls.broadcast(Push{Event: "tick", Data: map[string]int{"remaining_seconds": remaining}})
		ls.mu.Unlock()

		// Refresh the monitor mirror every 15 s to keep Redis traffic low.
		if remaining%15 == 0 {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			_ = s.rdb.Set(ctx, config.CacheKey.SessionDurationKey(ls.id.String()), remaining, s.cfg.SessionTTL).Err()
			cancel()
		}
	}
}

// get returns the live session after checking ownership.
func (s *AssessmentService) get(sessionID uuid.UUID, userID int) (*liveSession, error) {
	s.mu.RLock()
	ls, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok || ls.userID != userID {
		return nil, ErrSessionNotFound
	}
	return ls, nil
}

func (s *AssessmentService) stateView(ls *liveSession) *StateView {
	return &StateView{
		SessionID:  ls.id,
		State:      ls.eng.State(),
		Question:   ls.questionView(),
		Remaining:  ls.eng.Remaining(),
		Violations: len(ls.eng.Violations()),
		Limit:      ls.eng.Config().MaxViolations,
		Notice:     ls.eng.Notice(),
	}
}

// State returns a snapshot for reconnecting clients.
func (s *AssessmentService) State(sessionID uuid.UUID, userID int) (*StateView, error) {
	ls, err := s.get(sessionID, userID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return s.stateView(ls), nil
}

// Answer logs the selected option against the current question and
// advances the ladder. When the session keeps running the next question
// is returned; otherwise the terminal view is pushed and nil returned.
func (s *AssessmentService) Answer(ctx context.Context, sessionID uuid.UUID, userID int, selected int) (*QuestionView, error) {
	ls, err := s.get(sessionID, userID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	q, ok := ls.eng.CurrentQuestion()
	if !ok {
		return nil, engine.ErrNotRunning
	}
	number := ls.eng.QuestionNumber()

	if err := ls.eng.Select(selected); err != nil {
		return nil, err
	}
	_, finished, err := ls.eng.SubmitAnswer()
	if err != nil {
		return nil, err
	}

	answers := ls.eng.Answers()
	logged := answers[len(answers)-1]
	s.queueAnswer(ctx, ls, number, q, logged)

	if finished {
		s.finalizeLocked(ls)
		return nil, nil
	}

	view := ls.questionView()
	ls.broadcast(Push{Event: "question", Data: view})
	return view, nil
}

// ReportEvent applies one client-observed integrity event. The returned
// notice is nil for suppressed-only kinds.
func (s *AssessmentService) ReportEvent(ctx context.Context, sessionID uuid.UUID, userID int, kind engine.EventKind) (*engine.ViolationNotice, error) {
	ls, err := s.get(sessionID, userID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if kind == engine.EventFullscreenExit {
		ls.display.Exit()
	}

	notice, finished := ls.eng.ReportEvent(kind)
	counted := notice != nil

	s.queueEvent(ctx, ls, kind, counted)

	if counted {
		id := ls.id.String()
		s.rdb.Incr(ctx, config.CacheKey.SessionViolationsKey(id))
		s.publishViolation(ctx, ls, notice)
		ls.broadcast(Push{Event: "warning", Data: map[string]any{
			"message": notice.String(),
			"count":   notice.Count,
			"limit":   notice.Limit,
		}})
	}

	if finished {
		s.finalizeLocked(ls)
	}
	return notice, nil
}

// Summary returns the score summary of a finished session.
func (s *AssessmentService) Summary(sessionID uuid.UUID, userID int) (*engine.Summary, error) {
	ls, err := s.get(sessionID, userID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.eng.State() != engine.StateFinished {
		return nil, engine.ErrNotFinished
	}
	summary := engine.Summarize(ls.eng)
	return &summary, nil
}

// Acknowledge closes out a finished session: the completion callback
// advances the roadmap, then the live session is released.
func (s *AssessmentService) Acknowledge(ctx context.Context, sessionID uuid.UUID, userID int) error {
	ls, err := s.get(sessionID, userID)
	if err != nil {
		return err
	}

	ls.mu.Lock()
	if err := ls.eng.Acknowledge(); err != nil {
		ls.mu.Unlock()
		return err
	}
	ls.mu.Unlock()

	s.mu.Lock()
	s.removeLocked(ls)
	s.mu.Unlock()
	return nil
}

// onSessionComplete is the engine completion callback: it marks the test
// module completed with the percentage score.
func (s *AssessmentService) onSessionComplete(ls *liveSession, percentage int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	score := percentage
	if _, err := s.training.CompleteModule(ctx, ls.userID, ls.moduleID, &score); err != nil {
		s.log.Error().Err(err).
			Str("session_id", ls.id.String()).
			Str("module_id", ls.moduleID).
			Msg("Failed to advance roadmap")
	}
}

// Subscribe attaches a push channel to the session's client stream.
func (s *AssessmentService) Subscribe(sessionID uuid.UUID, userID int) (<-chan Push, func(), error) {
	ls, err := s.get(sessionID, userID)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan Push, 16)
	ls.mu.Lock()
	ls.subscribers[ch] = struct{}{}
	ls.mu.Unlock()

	cancel := func() {
		ls.mu.Lock()
		delete(ls.subscribers, ch)
		ls.mu.Unlock()
	}
	return ch, cancel, nil
}

// finalizeLocked handles the terminal transition. Callers hold ls.mu.
func (s *AssessmentService) finalizeLocked(ls *liveSession) {
	if ls.finalized {
		return
	}
	ls.finalized = true
	close(ls.tickerStop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	summary := engine.Summarize(ls.eng)
	reason := ls.eng.FinishReason()

	s.queueResult(ctx, ls, summary.Percentage, reason)
	s.rdb.Del(ctx, config.CacheKey.UserActiveSessionKey(ls.userID))

	ls.broadcast(Push{Event: "finished", Data: FinishView{SessionID: ls.id, Reason: reason}})
	ls.broadcast(Push{Event: "summary", Data: summary})

	s.log.Info().
		Str("session_id", ls.id.String()).
		Int("user_id", ls.userID).
		Str("reason", string(reason)).
		Int("score", summary.Percentage).
		Msg("Session finished")
}

// removeLocked drops a live session from the maps. Callers hold s.mu.
func (s *AssessmentService) removeLocked(ls *liveSession) {
	delete(s.sessions, ls.id)
	if current, ok := s.byUser[ls.userID]; ok && current == ls.id {
		delete(s.byUser, ls.userID)
	}
}

// Shutdown finalizes every live session so results reach the queue before
// the process exits.
func (s *AssessmentService) Shutdown() {
	s.mu.Lock()
	live := make([]*liveSession, 0, len(s.sessions))
	for _, ls := range s.sessions {
		live = append(live, ls)
	}
	s.mu.Unlock()

	for _, ls := range live {
		ls.mu.Lock()
		if ls.eng.State() == engine.StateRunning {
			// Consume the rest of the clock so the engine finishes.
			for {
				if _, finished := ls.eng.Tick(); finished {
					break
				}
			}
		}
		s.finalizeLocked(ls)
		ls.mu.Unlock()
	}
}

func (s *AssessmentService) queueAnswer(ctx context.Context, ls *liveSession, number int, q model.Question, a engine.Answer) {
	payload, _ := json.Marshal(map[string]any{
		"session_id":      ls.id.String(),
		"question_number": number,
		"question_id":     q.ID,
		"difficulty":      q.Difficulty,
		"selected":        a.Selected,
		"correct":         a.Correct,
		"timestamp":       time.Now().Unix(),
	})
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).Str("session_id", ls.id.String()).Msg("Failed to queue answer")
	}
}

func (s *AssessmentService) queueEvent(ctx context.Context, ls *liveSession, kind engine.EventKind, counted bool) {
	payload, _ := json.Marshal(map[string]any{
		"session_id": ls.id.String(),
		"user_id":    ls.userID,
		"kind":       string(kind),
		"counted":    counted,
		"timestamp":  time.Now().Unix(),
	})
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistEventsQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).Str("session_id", ls.id.String()).Msg("Failed to queue proctor event")
	}
}

func (s *AssessmentService) queueResult(ctx context.Context, ls *liveSession, score int, reason engine.FinishReason) {
	payload, _ := json.Marshal(map[string]any{
		"session_id":      ls.id.String(),
		"final_score":     score,
		"violation_count": len(ls.eng.Violations()),
		"finish_reason":   string(reason),
		"finished_at":     time.Now().Unix(),
	})
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).Str("session_id", ls.id.String()).Msg("Failed to queue result")
	}
}

// publishViolation fans the violation out to the live monitor channel.
func (s *AssessmentService) publishViolation(ctx context.Context, ls *liveSession, notice *engine.ViolationNotice) {
	payload, _ := json.Marshal(map[string]any{
		"session_id": ls.id.String(),
		"user_id":    ls.userID,
		"reason":     notice.Reason,
		"count":      notice.Count,
		"limit":      notice.Limit,
	})
	if err := s.rdb.Publish(ctx, config.CacheKey.ProctorChannel(ls.id.String()), payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("session_id", ls.id.String()).Msg("Failed to publish violation")
	}
}
