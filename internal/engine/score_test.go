package engine_test

import (
	"math/rand"
	"testing"

	"github.com/careerflow/assessment-backend/internal/engine"
	"github.com/careerflow/assessment-backend/internal/model"
)

func TestSummarizeAllCorrect(t *testing.T) {
	// Exactly 20 questions: 5 easy, 10 medium, 5 hard. Answered all
	// correctly the ladder presents every one of them.
	s := newRunningSession(t, makeBank(5, 10, 5), engine.DefaultConfig(), &fakeDisplay{})

	finished := false
	for !finished {
		_, finished = answerCurrent(t, s, true)
	}

	sum := engine.Summarize(s)
	if sum.WeightedScore != 40 {
		t.Errorf("weighted score = %d, want 40", sum.WeightedScore)
	}
	if sum.TotalPossible != 40 {
		t.Errorf("total possible = %d, want 40", sum.TotalPossible)
	}
	if sum.Percentage != 100 {
		t.Errorf("percentage = %d, want 100", sum.Percentage)
	}
	if sum.Accuracy != 100 {
		t.Errorf("accuracy = %v, want 100", sum.Accuracy)
	}
	if sum.ByDifficulty[model.DifficultyEasy] != 5 ||
		sum.ByDifficulty[model.DifficultyMedium] != 10 ||
		sum.ByDifficulty[model.DifficultyHard] != 5 {
		t.Errorf("per-tier counts = %v, want 5/10/5", sum.ByDifficulty)
	}
}

func TestSummarizeNoAnswers(t *testing.T) {
	// Immediate force-finish: one question presented, none answered.
	s := newRunningSession(t, makeBank(2, 2, 2), engine.DefaultConfig(), &fakeDisplay{})
	s.ReportEvent(engine.EventCopy)
	s.ReportEvent(engine.EventCopy)
	s.ReportEvent(engine.EventCopy)

	sum := engine.Summarize(s)
	if sum.Answered != 0 {
		t.Fatalf("answered = %d, want 0", sum.Answered)
	}
	if sum.Percentage != 0 {
		t.Errorf("percentage = %d, want 0", sum.Percentage)
	}
	if sum.Accuracy != 0 {
		t.Errorf("accuracy = %v, want 0", sum.Accuracy)
	}
}

func TestSummarizeEarlyExhaustion(t *testing.T) {
	// 12-question bank against a 20-question target: scored over the 12
	// actually presented, not over 20.
	s := newRunningSession(t, makeBank(4, 4, 4), engine.DefaultConfig(), &fakeDisplay{})

	answered := 0
	finished := false
	for !finished {
		// 8 correct, the rest incorrect.
		_, finished = answerCurrent(t, s, answered < 8)
		answered++
	}

	if s.FinishReason() != engine.FinishPoolExhausted {
		t.Fatalf("finish reason = %s, want pool_exhausted", s.FinishReason())
	}

	sum := engine.Summarize(s)
	if len(s.Presented()) != 12 || sum.Answered != 12 {
		t.Fatalf("presented=%d answered=%d, want 12/12", len(s.Presented()), sum.Answered)
	}
	if sum.Correct != 8 {
		t.Errorf("correct = %d, want 8", sum.Correct)
	}

	wantTotal := 0
	for _, q := range s.Presented() {
		wantTotal += q.Difficulty.Points()
	}
	if sum.TotalPossible != wantTotal {
		t.Errorf("total possible = %d, want %d (sum over presented)", sum.TotalPossible, wantTotal)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	s := newRunningSession(t, makeBank(3, 3, 3), engine.DefaultConfig(), &fakeDisplay{})
	for i := 0; i < 4; i++ {
		answerCurrent(t, s, i%2 == 0)
	}
	s.ReportEvent(engine.EventCopy)
	s.ReportEvent(engine.EventCopy)
	s.ReportEvent(engine.EventCopy)

	first := engine.Summarize(s)
	second := engine.Summarize(s)

	if first.WeightedScore != second.WeightedScore ||
		first.TotalPossible != second.TotalPossible ||
		first.Percentage != second.Percentage ||
		first.Accuracy != second.Accuracy ||
		first.Answered != second.Answered {
		t.Errorf("summaries differ: %+v vs %+v", first, second)
	}
}

func TestSummarizeRounding(t *testing.T) {
	// 1 correct easy out of easy+medium presented: 1/3 -> 33%.
	cfg := engine.DefaultConfig()
	cfg.QuestionTarget = 2
	s := engine.NewSession(makeBank(1, 1, 0), cfg, engine.NopDisplay{}, rand.New(rand.NewSource(1)), nil)
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	// Opener is the lone medium question: answer wrong, then the easy
	// one right.
	answerCurrent(t, s, false)
	answerCurrent(t, s, true)

	sum := engine.Summarize(s)
	if sum.WeightedScore != 1 || sum.TotalPossible != 3 {
		t.Fatalf("score = %d/%d, want 1/3", sum.WeightedScore, sum.TotalPossible)
	}
	if sum.Percentage != 33 {
		t.Errorf("percentage = %d, want 33", sum.Percentage)
	}
}
