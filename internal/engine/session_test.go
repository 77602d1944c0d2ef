package engine_test

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/careerflow/assessment-backend/internal/engine"
	"github.com/careerflow/assessment-backend/internal/model"
)

type fakeDisplay struct {
	denied bool
	active bool
	exits  int
}

func (d *fakeDisplay) Request() error {
	if d.denied {
		return errors.New("permission denied")
	}
	d.active = true
	return nil
}

func (d *fakeDisplay) Exit() {
	d.active = false
	d.exits++
}

func (d *fakeDisplay) Active() bool { return d.active }

func newRunningSession(t *testing.T, bank []model.Question, cfg engine.Config, display engine.Display) *engine.Session {
	t.Helper()
	s := engine.NewSession(bank, cfg, display, rand.New(rand.NewSource(1)), nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	return s
}

func answerCurrent(t *testing.T, s *engine.Session, correct bool) (model.Question, bool) {
	t.Helper()
	q, ok := s.CurrentQuestion()
	if !ok {
		t.Fatal("no current question")
	}
	selected := q.AnswerIndex
	if !correct {
		selected = (q.AnswerIndex + 1) % len(q.Options)
	}
	if err := s.Select(selected); err != nil {
		t.Fatalf("Select(%d) error: %v", selected, err)
	}
	next, finished, err := s.SubmitAnswer()
	if err != nil {
		t.Fatalf("SubmitAnswer() error: %v", err)
	}
	return next, finished
}

func TestStartDrawsFirstQuestion(t *testing.T) {
	s := newRunningSession(t, makeBank(3, 3, 3), engine.DefaultConfig(), &fakeDisplay{})

	if s.State() != engine.StateRunning {
		t.Fatalf("state = %s, want running", s.State())
	}
	q, ok := s.CurrentQuestion()
	if !ok {
		t.Fatal("expected a current question after start")
	}
	if q.Difficulty != model.DifficultyMedium {
		t.Errorf("first question difficulty = %s, want medium", q.Difficulty)
	}
	if len(s.Presented()) != 1 {
		t.Errorf("presented = %d, want 1", len(s.Presented()))
	}
}

func TestStartEmptyBank(t *testing.T) {
	s := engine.NewSession(nil, engine.DefaultConfig(), &fakeDisplay{}, nil, nil)
	if err := s.Start(); !errors.Is(err, engine.ErrNoQuestions) {
		t.Errorf("Start() error = %v, want ErrNoQuestions", err)
	}
	if s.State() != engine.StateIdle {
		t.Errorf("state = %s, want idle", s.State())
	}
}

func TestStartTwice(t *testing.T) {
	s := newRunningSession(t, makeBank(3, 3, 3), engine.DefaultConfig(), &fakeDisplay{})
	if err := s.Start(); !errors.Is(err, engine.ErrNotIdle) {
		t.Errorf("second Start() error = %v, want ErrNotIdle", err)
	}
}

func TestFullscreenDenialFailOpen(t *testing.T) {
	display := &fakeDisplay{denied: true}
	s := engine.NewSession(makeBank(3, 3, 3), engine.DefaultConfig(), display, rand.New(rand.NewSource(1)), nil)

	if err := s.Start(); err != nil {
		t.Fatalf("fail-open Start() error: %v", err)
	}
	if s.State() != engine.StateRunning {
		t.Errorf("state = %s, want running despite denial", s.State())
	}
	if s.Notice() == "" {
		t.Error("expected a user-facing notice after denial")
	}
}

func TestFullscreenDenialFailClosed(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.FullscreenPolicy = engine.FullscreenFailClosed
	display := &fakeDisplay{denied: true}
	s := engine.NewSession(makeBank(3, 3, 3), cfg, display, rand.New(rand.NewSource(1)), nil)

	if err := s.Start(); !errors.Is(err, engine.ErrFullscreenDenied) {
		t.Fatalf("Start() error = %v, want ErrFullscreenDenied", err)
	}
	if s.State() != engine.StateIdle {
		t.Errorf("state = %s, want idle after fail-closed denial", s.State())
	}
}

func TestLadderTransitions(t *testing.T) {
	// One question per tier beyond the opener so the next draw is forced.
	s := newRunningSession(t, makeBank(1, 2, 1), engine.DefaultConfig(), &fakeDisplay{})

	// Opener is medium. Correct -> next prefers hard.
	next, finished := answerCurrent(t, s, true)
	if finished {
		t.Fatal("unexpected finish")
	}
	if next.Difficulty != model.DifficultyHard {
		t.Errorf("after correct medium, next = %s, want hard", next.Difficulty)
	}

	// Incorrect hard -> next prefers medium.
	next, finished = answerCurrent(t, s, false)
	if finished {
		t.Fatal("unexpected finish")
	}
	if next.Difficulty != model.DifficultyMedium {
		t.Errorf("after incorrect hard, next = %s, want medium", next.Difficulty)
	}
}

func TestPoolExhaustionFinishesEarly(t *testing.T) {
	s := newRunningSession(t, makeBank(1, 1, 1), engine.DefaultConfig(), &fakeDisplay{})

	var finished bool
	for i := 0; i < 3; i++ {
		_, finished = answerCurrent(t, s, true)
	}
	if !finished {
		t.Fatal("expected session to finish when pools are exhausted")
	}
	if s.FinishReason() != engine.FinishPoolExhausted {
		t.Errorf("finish reason = %s, want pool_exhausted", s.FinishReason())
	}
	if len(s.Presented()) != 3 {
		t.Errorf("presented = %d, want 3", len(s.Presented()))
	}
}

func TestQuestionTargetFinishes(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.QuestionTarget = 5
	s := newRunningSession(t, makeBank(10, 10, 10), cfg, &fakeDisplay{})

	var finished bool
	for i := 0; i < 5; i++ {
		if finished {
			t.Fatalf("finished early at question %d", i)
		}
		_, finished = answerCurrent(t, s, true)
	}
	if !finished {
		t.Fatal("expected finish after the 5th answer")
	}
	if s.FinishReason() != engine.FinishCompleted {
		t.Errorf("finish reason = %s, want completed", s.FinishReason())
	}
}

func TestSubmitWithoutSelection(t *testing.T) {
	s := newRunningSession(t, makeBank(3, 3, 3), engine.DefaultConfig(), &fakeDisplay{})
	if _, _, err := s.SubmitAnswer(); !errors.Is(err, engine.ErrNoSelection) {
		t.Errorf("SubmitAnswer() error = %v, want ErrNoSelection", err)
	}
}

func TestSelectOutOfRange(t *testing.T) {
	s := newRunningSession(t, makeBank(3, 3, 3), engine.DefaultConfig(), &fakeDisplay{})
	if err := s.Select(4); !errors.Is(err, engine.ErrInvalidOption) {
		t.Errorf("Select(4) error = %v, want ErrInvalidOption", err)
	}
	if err := s.Select(-1); !errors.Is(err, engine.ErrInvalidOption) {
		t.Errorf("Select(-1) error = %v, want ErrInvalidOption", err)
	}
}

func TestViolationThreshold(t *testing.T) {
	s := newRunningSession(t, makeBank(5, 5, 5), engine.DefaultConfig(), &fakeDisplay{})

	notice, finished := s.ReportEvent(engine.EventVisibilityHidden)
	if finished || notice == nil {
		t.Fatalf("first violation: notice=%v finished=%v", notice, finished)
	}
	if notice.String() != "Violation (Tab switched). Attempt 1/3." {
		t.Errorf("notice = %q", notice.String())
	}

	if _, finished = s.ReportEvent(engine.EventCopy); finished {
		t.Fatal("second violation must not finish the session")
	}
	if s.State() != engine.StateRunning {
		t.Fatalf("state after 2 violations = %s, want running", s.State())
	}

	notice, finished = s.ReportEvent(engine.EventFullscreenExit)
	if !finished {
		t.Fatal("third violation must force-finish the session")
	}
	if notice.Count != 3 {
		t.Errorf("violation count = %d, want 3", notice.Count)
	}
	if s.State() != engine.StateFinished {
		t.Errorf("state = %s, want finished", s.State())
	}
	if s.FinishReason() != engine.FinishViolations {
		t.Errorf("finish reason = %s, want violations", s.FinishReason())
	}
}

func TestContextMenuSuppressedNotCounted(t *testing.T) {
	s := newRunningSession(t, makeBank(3, 3, 3), engine.DefaultConfig(), &fakeDisplay{})

	notice, finished := s.ReportEvent(engine.EventContextMenu)
	if notice != nil || finished {
		t.Errorf("context menu: notice=%v finished=%v, want suppressed", notice, finished)
	}
	if len(s.Violations()) != 0 {
		t.Errorf("violations = %d, want 0", len(s.Violations()))
	}
}

func TestEachEventCountsOnce(t *testing.T) {
	s := newRunningSession(t, makeBank(5, 5, 5), engine.DefaultConfig(), &fakeDisplay{})

	s.ReportEvent(engine.EventPaste)
	if n := len(s.Violations()); n != 1 {
		t.Errorf("violations after one paste = %d, want exactly 1", n)
	}
	s.ReportEvent(engine.EventShortcut)
	if n := len(s.Violations()); n != 2 {
		t.Errorf("violations after paste+shortcut = %d, want exactly 2", n)
	}
}

func TestEventsIgnoredOutsideRunning(t *testing.T) {
	s := engine.NewSession(makeBank(3, 3, 3), engine.DefaultConfig(), &fakeDisplay{}, rand.New(rand.NewSource(1)), nil)

	if notice, _ := s.ReportEvent(engine.EventCopy); notice != nil {
		t.Error("idle session must ignore integrity events")
	}

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	s.ReportEvent(engine.EventCopy)
	s.ReportEvent(engine.EventCopy)
	s.ReportEvent(engine.EventCopy) // force-finish

	if notice, _ := s.ReportEvent(engine.EventPaste); notice != nil {
		t.Error("finished session must ignore integrity events")
	}
	if len(s.Violations()) != 3 {
		t.Errorf("violations = %d, want 3", len(s.Violations()))
	}
}

func TestTimerMonotonicity(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.Duration = 3 * time.Second
	s := engine.NewSession(makeBank(3, 3, 3), cfg, &fakeDisplay{}, rand.New(rand.NewSource(1)), nil)

	// Idle: ticks must not decrement.
	if remaining, _ := s.Tick(); remaining != 3 {
		t.Errorf("idle Tick() remaining = %d, want 3", remaining)
	}

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	remaining, finished := s.Tick()
	if remaining != 2 || finished {
		t.Errorf("Tick() = (%d, %v), want (2, false)", remaining, finished)
	}
	remaining, finished = s.Tick()
	if remaining != 1 || finished {
		t.Errorf("Tick() = (%d, %v), want (1, false)", remaining, finished)
	}
	remaining, finished = s.Tick()
	if remaining != 0 || !finished {
		t.Errorf("Tick() = (%d, %v), want (0, true)", remaining, finished)
	}
	if s.FinishReason() != engine.FinishTimeout {
		t.Errorf("finish reason = %s, want timeout", s.FinishReason())
	}

	// Finished: remaining stays put.
	if remaining, _ = s.Tick(); remaining != 0 {
		t.Errorf("finished Tick() remaining = %d, want 0", remaining)
	}
}

func TestFinishReleasesFullscreen(t *testing.T) {
	display := &fakeDisplay{}
	s := newRunningSession(t, makeBank(2, 2, 2), engine.DefaultConfig(), display)
	if !display.Active() {
		t.Fatal("expected full-screen to be held while running")
	}

	s.ReportEvent(engine.EventCopy)
	s.ReportEvent(engine.EventCopy)
	s.ReportEvent(engine.EventCopy)

	if display.Active() {
		t.Error("expected full-screen released on finish")
	}
	if display.exits != 1 {
		t.Errorf("display exits = %d, want 1", display.exits)
	}
}

func TestAcknowledgeFiresOnce(t *testing.T) {
	var got []int
	s := engine.NewSession(makeBank(1, 1, 1), engine.DefaultConfig(), &fakeDisplay{}, rand.New(rand.NewSource(1)),
		func(pct int) { got = append(got, pct) })

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if err := s.Acknowledge(); !errors.Is(err, engine.ErrNotFinished) {
		t.Errorf("running Acknowledge() error = %v, want ErrNotFinished", err)
	}

	for i := 0; i < 3; i++ {
		answerCurrent(t, s, true)
	}
	if s.State() != engine.StateFinished {
		t.Fatal("expected finished session")
	}

	if err := s.Acknowledge(); err != nil {
		t.Fatalf("Acknowledge() error: %v", err)
	}
	if err := s.Acknowledge(); !errors.Is(err, engine.ErrAcknowledged) {
		t.Errorf("second Acknowledge() error = %v, want ErrAcknowledged", err)
	}
	if len(got) != 1 {
		t.Fatalf("completion callback fired %d times, want 1", len(got))
	}
	if got[0] != 100 {
		t.Errorf("completion percentage = %d, want 100", got[0])
	}
}

// Mirrors the full scenario: two answers ride the ladder up and down,
// then three violations cut the session short.
func TestEndToEndScenario(t *testing.T) {
	bank := makeBank(5, 5, 5)
	s := newRunningSession(t, bank, engine.DefaultConfig(), &fakeDisplay{})

	q1, _ := s.CurrentQuestion()
	if q1.Difficulty != model.DifficultyMedium {
		t.Fatalf("q1 difficulty = %s, want medium", q1.Difficulty)
	}

	// Correct medium -> q2 prefers hard.
	q2, finished := answerCurrent(t, s, true)
	if finished || q2.Difficulty != model.DifficultyHard {
		t.Fatalf("q2 = %s finished=%v, want hard/false", q2.Difficulty, finished)
	}

	// Incorrect hard -> q3 prefers medium.
	q3, finished := answerCurrent(t, s, false)
	if finished || q3.Difficulty != model.DifficultyMedium {
		t.Fatalf("q3 = %s finished=%v, want medium/false", q3.Difficulty, finished)
	}

	// One full-screen exit: still running.
	if _, finished := s.ReportEvent(engine.EventFullscreenExit); finished {
		t.Fatal("one violation must not finish the session")
	}
	if s.State() != engine.StateRunning {
		t.Fatal("expected running after one violation")
	}

	// Two more violations: force-finished with 2 answers logged.
	s.ReportEvent(engine.EventVisibilityHidden)
	_, finished = s.ReportEvent(engine.EventCopy)
	if !finished || s.State() != engine.StateFinished {
		t.Fatal("expected force-finish at the third violation")
	}

	if len(s.Answers()) != 2 {
		t.Errorf("answers = %d, want 2", len(s.Answers()))
	}
	if len(s.Presented()) != 3 {
		t.Errorf("presented = %d, want 3", len(s.Presented()))
	}

	sum := engine.Summarize(s)
	// Presented medium+hard+medium = 2+3+2 points possible; one correct
	// medium answer scored.
	if sum.TotalPossible != 7 {
		t.Errorf("total possible = %d, want 7", sum.TotalPossible)
	}
	if sum.WeightedScore != 2 {
		t.Errorf("weighted score = %d, want 2", sum.WeightedScore)
	}
}
