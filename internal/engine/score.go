package engine

import (
	"math"

	"github.com/careerflow/assessment-backend/internal/model"
)

// Summary is the derived, read-only score report for a session.
type Summary struct {
	WeightedScore int                      `json:"weighted_score"`
	TotalPossible int                      `json:"total_possible"`
	Answered      int                      `json:"answered"`
	Correct       int                      `json:"correct"`
	Accuracy      float64                  `json:"accuracy"`
	Percentage    int                      `json:"percentage"`
	ByDifficulty  map[model.Difficulty]int `json:"by_difficulty"`
	ElapsedSecs   int                      `json:"elapsed_seconds"`
}

// Summarize computes the score report over the session's logs. Pure:
// calling it twice on the same session yields identical results.
//
// Weighted score counts correct answers at 1/2/3 points by tier; total
// possible sums the point values of every *presented* question, so a
// session that ended early is scored only over what it actually showed.
// Accuracy is correct/answered, percentage is round(weighted/total*100);
// both guard their zero denominators to 0.
func Summarize(s *Session) Summary {
	byDifficulty := map[model.Difficulty]int{
		model.DifficultyEasy:   0,
		model.DifficultyMedium: 0,
		model.DifficultyHard:   0,
	}

	weighted := 0
	correct := 0
	for _, a := range s.Answers() {
		byDifficulty[a.Question.Difficulty]++
		if a.Correct {
			correct++
			weighted += a.Question.Difficulty.Points()
		}
	}

	total := 0
	for _, q := range s.Presented() {
		total += q.Difficulty.Points()
	}

	answered := len(s.Answers())

	accuracy := 0.0
	if answered > 0 {
		accuracy = float64(correct) / float64(answered) * 100
	}

	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(weighted) / float64(total) * 100))
	}

	return Summary{
		WeightedScore: weighted,
		TotalPossible: total,
		Answered:      answered,
		Correct:       correct,
		Accuracy:      accuracy,
		Percentage:    percentage,
		ByDifficulty:  byDifficulty,
		ElapsedSecs:   s.Elapsed(),
	}
}
