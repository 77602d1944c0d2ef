package engine_test

import (
	"math/rand"
	"testing"

	"github.com/careerflow/assessment-backend/internal/engine"
	"github.com/careerflow/assessment-backend/internal/model"
)

func makeQuestion(id int, tier model.Difficulty) model.Question {
	return model.Question{
		ID:          id,
		Difficulty:  tier,
		Category:    "general",
		Prompt:      "prompt",
		Options:     []string{"A", "B", "C", "D"},
		AnswerIndex: 0,
	}
}

func makeBank(easy, medium, hard int) []model.Question {
	var bank []model.Question
	id := 1
	for i := 0; i < easy; i++ {
		bank = append(bank, makeQuestion(id, model.DifficultyEasy))
		id++
	}
	for i := 0; i < medium; i++ {
		bank = append(bank, makeQuestion(id, model.DifficultyMedium))
		id++
	}
	for i := 0; i < hard; i++ {
		bank = append(bank, makeQuestion(id, model.DifficultyHard))
		id++
	}
	return bank
}

func TestNextPreferred(t *testing.T) {
	cases := []struct {
		answered model.Difficulty
		correct  bool
		want     model.Difficulty
	}{
		{model.DifficultyEasy, true, model.DifficultyMedium},
		{model.DifficultyMedium, true, model.DifficultyHard},
		{model.DifficultyHard, true, model.DifficultyHard},
		{model.DifficultyEasy, false, model.DifficultyEasy},
		{model.DifficultyMedium, false, model.DifficultyEasy},
		{model.DifficultyHard, false, model.DifficultyMedium},
	}

	for _, tc := range cases {
		got := engine.NextPreferred(tc.answered, tc.correct)
		if got != tc.want {
			t.Errorf("NextPreferred(%s, %v) = %s, want %s", tc.answered, tc.correct, got, tc.want)
		}
	}
}

func TestDrawFirstPrefersMedium(t *testing.T) {
	pool := engine.NewPool(makeBank(3, 3, 3), rand.New(rand.NewSource(1)))

	q, ok := pool.DrawFirst()
	if !ok {
		t.Fatal("expected a first question")
	}
	if q.Difficulty != model.DifficultyMedium {
		t.Errorf("first question difficulty = %s, want medium", q.Difficulty)
	}
}

func TestDrawFirstFallsBack(t *testing.T) {
	// No medium questions: fall back to easy.
	pool := engine.NewPool(makeBank(2, 0, 2), rand.New(rand.NewSource(1)))
	q, ok := pool.DrawFirst()
	if !ok || q.Difficulty != model.DifficultyEasy {
		t.Errorf("expected easy fallback, got %v ok=%v", q.Difficulty, ok)
	}

	// Only hard questions left: start must still succeed.
	pool = engine.NewPool(makeBank(0, 0, 2), rand.New(rand.NewSource(1)))
	q, ok = pool.DrawFirst()
	if !ok || q.Difficulty != model.DifficultyHard {
		t.Errorf("expected hard fallback, got %v ok=%v", q.Difficulty, ok)
	}

	pool = engine.NewPool(nil, rand.New(rand.NewSource(1)))
	if _, ok := pool.DrawFirst(); ok {
		t.Error("expected no question from an empty bank")
	}
}

func TestDrawFallbackOrder(t *testing.T) {
	cases := []struct {
		name      string
		bank      []model.Question
		preferred model.Difficulty
		want      model.Difficulty
	}{
		{"easy prefers medium first", makeBank(0, 1, 1), model.DifficultyEasy, model.DifficultyMedium},
		{"easy then hard", makeBank(0, 0, 1), model.DifficultyEasy, model.DifficultyHard},
		{"medium prefers easy first", makeBank(1, 0, 1), model.DifficultyMedium, model.DifficultyEasy},
		{"medium then hard", makeBank(0, 0, 1), model.DifficultyMedium, model.DifficultyHard},
		{"hard prefers medium first", makeBank(1, 1, 0), model.DifficultyHard, model.DifficultyMedium},
		{"hard then easy", makeBank(1, 0, 0), model.DifficultyHard, model.DifficultyEasy},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pool := engine.NewPool(tc.bank, rand.New(rand.NewSource(1)))
			q, ok := pool.Draw(tc.preferred)
			if !ok {
				t.Fatal("expected a question")
			}
			if q.Difficulty != tc.want {
				t.Errorf("drew %s, want %s", q.Difficulty, tc.want)
			}
		})
	}

	pool := engine.NewPool(nil, rand.New(rand.NewSource(1)))
	if _, ok := pool.Draw(model.DifficultyMedium); ok {
		t.Error("expected no question when all pools are empty")
	}
}

func TestDrawNeverRepeats(t *testing.T) {
	bank := makeBank(10, 10, 10)
	pool := engine.NewPool(bank, rand.New(rand.NewSource(7)))

	seen := make(map[int]bool)
	for i := 0; i < len(bank); i++ {
		q, ok := pool.Draw(model.DifficultyMedium)
		if !ok {
			t.Fatalf("pool exhausted after %d draws, want %d", i, len(bank))
		}
		if seen[q.ID] {
			t.Fatalf("question %d drawn twice", q.ID)
		}
		seen[q.ID] = true
	}

	if _, ok := pool.Draw(model.DifficultyMedium); ok {
		t.Error("expected exhausted pool to return no question")
	}
	if pool.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", pool.Remaining())
	}
}

func TestTierSizeTracksDraws(t *testing.T) {
	pool := engine.NewPool(makeBank(2, 3, 1), rand.New(rand.NewSource(1)))

	if got := pool.TierSize(model.DifficultyMedium); got != 3 {
		t.Fatalf("TierSize(medium) = %d, want 3", got)
	}

	if _, ok := pool.Draw(model.DifficultyMedium); !ok {
		t.Fatal("expected a medium question")
	}
	if got := pool.TierSize(model.DifficultyMedium); got != 2 {
		t.Errorf("TierSize(medium) after draw = %d, want 2", got)
	}
	if got := pool.TierSize(model.DifficultyEasy); got != 2 {
		t.Errorf("TierSize(easy) = %d, want 2", got)
	}
	if got := pool.Remaining(); got != 5 {
		t.Errorf("Remaining() = %d, want 5", got)
	}
}

func TestNewPoolShuffles(t *testing.T) {
	bank := makeBank(0, 20, 0)

	// With 20 questions, two differently-seeded pools almost surely
	// disagree on order.
	drawAll := func(seed int64) []int {
		pool := engine.NewPool(bank, rand.New(rand.NewSource(seed)))
		var ids []int
		for {
			q, ok := pool.Draw(model.DifficultyMedium)
			if !ok {
				break
			}
			ids = append(ids, q.ID)
		}
		return ids
	}

	first := drawAll(1)
	different := false
	for seed := int64(2); seed < 12; seed++ {
		other := drawAll(seed)
		for i := range first {
			if first[i] != other[i] {
				different = true
				break
			}
		}
		if different {
			break
		}
	}
	if !different {
		t.Error("expected shuffled order to differ across seeds")
	}
}

func TestNewPoolSkipsUnknownTiers(t *testing.T) {
	bank := append(makeBank(1, 1, 1), model.Question{ID: 99, Difficulty: "extreme"})
	pool := engine.NewPool(bank, rand.New(rand.NewSource(1)))
	if pool.Remaining() != 3 {
		t.Errorf("Remaining() = %d, want 3 (unknown tier dropped)", pool.Remaining())
	}
}
