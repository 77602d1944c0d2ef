package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/careerflow/assessment-backend/internal/model"
)

// State is the session lifecycle state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateFinished State = "finished"
)

// FinishReason records why a session left the running state.
type FinishReason string

const (
	FinishCompleted     FinishReason = "completed"
	FinishTimeout       FinishReason = "timeout"
	FinishViolations    FinishReason = "violations"
	FinishPoolExhausted FinishReason = "pool_exhausted"
)

// EventKind identifies a client-observed integrity event.
type EventKind string

const (
	EventVisibilityHidden EventKind = "visibility_hidden"
	EventCopy             EventKind = "copy"
	EventPaste            EventKind = "paste"
	EventShortcut         EventKind = "shortcut"
	EventFullscreenExit   EventKind = "fullscreen_exit"
	EventContextMenu      EventKind = "context_menu"
)

// Reason returns the human-readable violation reason for the event, or
// "" for events that are suppressed without counting.
func (k EventKind) Reason() string {
	switch k {
	case EventVisibilityHidden:
		return "Tab switched"
	case EventCopy:
		return "Copy attempted"
	case EventPaste:
		return "Paste attempted"
	case EventShortcut:
		return "Shortcut used"
	case EventFullscreenExit:
		return "Exited full-screen"
	}
	return ""
}

// FullscreenPolicy decides what happens when the exclusive-presentation
// request is denied at start: fail-open proceeds with a notice, fail-closed
// refuses to start.
type FullscreenPolicy string

const (
	FullscreenFailOpen   FullscreenPolicy = "fail-open"
	FullscreenFailClosed FullscreenPolicy = "fail-closed"
)

// Display is the exclusive-presentation capability the session drives.
// Production sessions get a remote display that relays over the
// client connection; tests inject fakes.
type Display interface {
	// Request asks for exclusive full-screen presentation.
	Request() error
	// Exit leaves exclusive presentation if held.
	Exit()
	// Active reports whether exclusive presentation is currently held.
	Active() bool
}

// NopDisplay is a Display that grants nothing and holds nothing.
type NopDisplay struct{}

func (NopDisplay) Request() error { return nil }
func (NopDisplay) Exit()          {}
func (NopDisplay) Active() bool   { return false }

// Config are the per-session tunables.
type Config struct {
	QuestionTarget   int
	Duration         time.Duration
	MaxViolations    int
	FullscreenPolicy FullscreenPolicy
}

// DefaultConfig matches the primary skill test: 20 questions, 15 minutes,
// 3 violations, proceed with a notice if full-screen is denied.
func DefaultConfig() Config {
	return Config{
		QuestionTarget:   20,
		Duration:         15 * time.Minute,
		MaxViolations:    3,
		FullscreenPolicy: FullscreenFailOpen,
	}
}

// Answer is one logged answer entry.
type Answer struct {
	Question model.Question
	Selected int
	Correct  bool
}

// Violation is one counted integrity breach.
type Violation struct {
	Reason string
	At     time.Time
}

// ViolationNotice is the user-facing warning raised by a counted violation.
type ViolationNotice struct {
	Reason string
	Count  int
	Limit  int
}

// String renders the transient warning text shown to the user.
func (n ViolationNotice) String() string {
	return fmt.Sprintf("Violation (%s). Attempt %d/%d.", n.Reason, n.Count, n.Limit)
}

// Session errors.
var (
	ErrNoQuestions      = errors.New("question pools are empty")
	ErrNotIdle          = errors.New("session already started")
	ErrNotRunning       = errors.New("session is not running")
	ErrNotFinished      = errors.New("session is not finished")
	ErrNoSelection      = errors.New("no option selected")
	ErrInvalidOption    = errors.New("selected option out of range")
	ErrFullscreenDenied = errors.New("full-screen presentation denied")
	ErrAcknowledged     = errors.New("session already acknowledged")
)

// Session is one live assessment attempt. It owns the difficulty-ladder
// pool and the proctoring state. Not safe for concurrent use: the hosting
// layer owns it exclusively and serializes access.
type Session struct {
	cfg     Config
	pool    *Pool
	display Display

	state        State
	presented    []model.Question
	current      int
	pending      *int
	answers      []Answer
	remaining    int
	violations   []Violation
	finishReason FinishReason
	notice       string

	startedAt  time.Time
	finishedAt time.Time

	onComplete   func(percentage int)
	acknowledged bool
}

// NewSession builds an idle session over the given bank. rng may be nil.
// onComplete is invoked exactly once, by Acknowledge, with the normalized
// percentage score; it may be nil.
func NewSession(bank []model.Question, cfg Config, display Display, rng *rand.Rand, onComplete func(int)) *Session {
	if display == nil {
		display = NopDisplay{}
	}
	if cfg.QuestionTarget <= 0 {
		cfg.QuestionTarget = DefaultConfig().QuestionTarget
	}
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultConfig().Duration
	}
	if cfg.MaxViolations <= 0 {
		cfg.MaxViolations = DefaultConfig().MaxViolations
	}
	if cfg.FullscreenPolicy == "" {
		cfg.FullscreenPolicy = FullscreenFailOpen
	}

	return &Session{
		cfg:        cfg,
		pool:       NewPool(bank, rng),
		display:    display,
		state:      StateIdle,
		remaining:  int(cfg.Duration.Seconds()),
		onComplete: onComplete,
	}
}

// Start transitions idle -> running: requests full-screen, then draws the
// first question. A full-screen denial aborts the start only under the
// fail-closed policy; otherwise the denial is recorded as a notice and the
// session proceeds.
func (s *Session) Start() error {
	if s.state != StateIdle {
		return ErrNotIdle
	}
	if s.pool.Remaining() == 0 {
		return ErrNoQuestions
	}

	if err := s.display.Request(); err != nil {
		if s.cfg.FullscreenPolicy == FullscreenFailClosed {
			return fmt.Errorf("%w: %v", ErrFullscreenDenied, err)
		}
		s.notice = "Full-screen mode is required. Please enable it for this site."
	}

	first, ok := s.pool.DrawFirst()
	if !ok {
		return ErrNoQuestions
	}

	s.presented = append(s.presented, first)
	s.current = 0
	s.state = StateRunning
	s.startedAt = time.Now()
	return nil
}

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Notice returns the pending user-facing notice ("" if none), e.g. the
// full-screen denial message raised at start.
func (s *Session) Notice() string { return s.notice }

// CurrentQuestion returns the question awaiting an answer.
func (s *Session) CurrentQuestion() (model.Question, bool) {
	if s.state != StateRunning || s.current >= len(s.presented) {
		return model.Question{}, false
	}
	return s.presented[s.current], true
}

// Select stages the user's option for the current question.
func (s *Session) Select(option int) error {
	q, ok := s.CurrentQuestion()
	if !ok {
		return ErrNotRunning
	}
	if option < 0 || option >= len(q.Options) {
		return ErrInvalidOption
	}
	o := option
	s.pending = &o
	return nil
}

// SubmitAnswer logs the staged selection against the current question and
// advances the ladder: the next question's tier follows the transition
// table, and pool exhaustion before the target count finishes the session
// early. Returns the next question when the session keeps running.
func (s *Session) SubmitAnswer() (model.Question, bool, error) {
	if s.state != StateRunning {
		return model.Question{}, false, ErrNotRunning
	}
	if s.pending == nil {
		return model.Question{}, false, ErrNoSelection
	}

	q := s.presented[s.current]
	selected := *s.pending
	s.pending = nil
	s.answers = append(s.answers, Answer{
		Question: q,
		Selected: selected,
		Correct:  selected == q.AnswerIndex,
	})

	if len(s.presented) >= s.cfg.QuestionTarget {
		s.finish(FinishCompleted)
		return model.Question{}, true, nil
	}

	correct := selected == q.AnswerIndex
	next, ok := s.pool.Draw(NextPreferred(q.Difficulty, correct))
	if !ok {
		s.finish(FinishPoolExhausted)
		return model.Question{}, true, nil
	}

	s.presented = append(s.presented, next)
	s.current++
	return next, false, nil
}

// Tick decrements the time budget by one second. It is a no-op outside the
// running state. Reaching zero forces the session to finish.
func (s *Session) Tick() (remaining int, finished bool) {
	if s.state != StateRunning {
		return s.remaining, s.state == StateFinished
	}
	s.remaining--
	if s.remaining <= 0 {
		s.remaining = 0
		s.finish(FinishTimeout)
		return 0, true
	}
	return s.remaining, false
}

// ReportEvent reacts to one client-observed integrity event. Context-menu
// events are suppressed without counting; every other kind counts exactly
// one violation and raises a notice. Reaching the violation limit
// force-finishes the session. Events outside the running state are ignored.
func (s *Session) ReportEvent(kind EventKind) (*ViolationNotice, bool) {
	if s.state != StateRunning {
		return nil, false
	}

	reason := kind.Reason()
	if reason == "" {
		return nil, false
	}

	s.violations = append(s.violations, Violation{Reason: reason, At: time.Now()})
	notice := &ViolationNotice{
		Reason: reason,
		Count:  len(s.violations),
		Limit:  s.cfg.MaxViolations,
	}

	if len(s.violations) >= s.cfg.MaxViolations {
		s.finish(FinishViolations)
		return notice, true
	}
	return notice, false
}

// Acknowledge fires the completion callback with the percentage score.
// Valid only once, and only after the session finished: the user views the
// summary first, then explicitly returns to the roadmap.
func (s *Session) Acknowledge() error {
	if s.state != StateFinished {
		return ErrNotFinished
	}
	if s.acknowledged {
		return ErrAcknowledged
	}
	s.acknowledged = true
	if s.onComplete != nil {
		s.onComplete(Summarize(s).Percentage)
	}
	return nil
}

func (s *Session) finish(reason FinishReason) {
	if s.state == StateFinished {
		return
	}
	s.state = StateFinished
	s.finishReason = reason
	s.finishedAt = time.Now()
	s.pending = nil
	if s.display.Active() {
		s.display.Exit()
	}
}

// Remaining returns the time budget left in seconds.
func (s *Session) Remaining() int { return s.remaining }

// Elapsed returns the seconds consumed from the time budget.
func (s *Session) Elapsed() int {
	return int(s.cfg.Duration.Seconds()) - s.remaining
}

// FinishReason returns why the session finished ("" while not finished).
func (s *Session) FinishReason() FinishReason { return s.finishReason }

// Presented returns the append-only log of questions shown so far.
func (s *Session) Presented() []model.Question { return s.presented }

// Answers returns the append-only answer log.
func (s *Session) Answers() []Answer { return s.answers }

// Violations returns the counted violations so far.
func (s *Session) Violations() []Violation { return s.violations }

// QuestionNumber returns the 1-based index of the current question.
func (s *Session) QuestionNumber() int { return s.current + 1 }

// Config returns the session's tunables.
func (s *Session) Config() Config { return s.cfg }
