package engine

import (
	"math/rand"
	"time"

	"github.com/careerflow/assessment-backend/internal/model"
)

// Pool holds the per-tier question pools for one session. Questions are
// removed at draw time, so a question is never presented twice.
type Pool struct {
	byTier map[model.Difficulty][]model.Question
}

// NewPool partitions bank by difficulty and shuffles each tier
// independently. A nil rng falls back to a time-seeded source.
func NewPool(bank []model.Question, rng *rand.Rand) *Pool {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	byTier := map[model.Difficulty][]model.Question{
		model.DifficultyEasy:   nil,
		model.DifficultyMedium: nil,
		model.DifficultyHard:   nil,
	}
	for _, q := range bank {
		if !q.Difficulty.Valid() {
			continue
		}
		byTier[q.Difficulty] = append(byTier[q.Difficulty], q)
	}

	for tier, qs := range byTier {
		rng.Shuffle(len(qs), func(i, j int) {
			qs[i], qs[j] = qs[j], qs[i]
		})
		byTier[tier] = qs
	}

	return &Pool{byTier: byTier}
}

// DrawFirst removes and returns the opening question: medium preferred,
// then easy, then hard. Returns false only when every tier is empty.
func (p *Pool) DrawFirst() (model.Question, bool) {
	for _, tier := range []model.Difficulty{model.DifficultyMedium, model.DifficultyEasy, model.DifficultyHard} {
		if q, ok := p.take(tier); ok {
			return q, true
		}
	}
	return model.Question{}, false
}

// Draw removes and returns the next question, searching the preferred
// tier first and then its fallback tiers in order. Returns false only
// when every tier is empty.
func (p *Pool) Draw(preferred model.Difficulty) (model.Question, bool) {
	for _, tier := range searchOrder(preferred) {
		if q, ok := p.take(tier); ok {
			return q, true
		}
	}
	return model.Question{}, false
}

// Remaining returns the total number of undrawn questions.
func (p *Pool) Remaining() int {
	n := 0
	for _, qs := range p.byTier {
		n += len(qs)
	}
	return n
}

// TierSize returns the number of undrawn questions at one tier.
func (p *Pool) TierSize(tier model.Difficulty) int {
	return len(p.byTier[tier])
}

func (p *Pool) take(tier model.Difficulty) (model.Question, bool) {
	qs := p.byTier[tier]
	if len(qs) == 0 {
		return model.Question{}, false
	}
	q := qs[0]
	p.byTier[tier] = qs[1:]
	return q, true
}

// NextPreferred computes the target difficulty for the next question
// from the just-answered question's tier and correctness: correct
// answers climb the ladder, incorrect answers descend it.
func NextPreferred(answered model.Difficulty, correct bool) model.Difficulty {
	if correct {
		if answered == model.DifficultyEasy {
			return model.DifficultyMedium
		}
		return model.DifficultyHard
	}
	if answered == model.DifficultyHard {
		return model.DifficultyMedium
	}
	return model.DifficultyEasy
}

func searchOrder(preferred model.Difficulty) []model.Difficulty {
	switch preferred {
	case model.DifficultyEasy:
		return []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard}
	case model.DifficultyMedium:
		return []model.Difficulty{model.DifficultyMedium, model.DifficultyEasy, model.DifficultyHard}
	default:
		return []model.Difficulty{model.DifficultyHard, model.DifficultyMedium, model.DifficultyEasy}
	}
}
