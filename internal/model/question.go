package model

// Difficulty classifies a question's weight and selection pool.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the three known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Points returns the weighted score value of a correct answer at this tier.
func (d Difficulty) Points() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	}
	return 0
}

// Question is a single multiple-choice item from a career question bank.
// JSON tags match the static bank files under data/.
type Question struct {
	ID          int        `json:"id"`
	Difficulty  Difficulty `json:"difficulty"`
	Category    string     `json:"category"`
	Prompt      string     `json:"question"`
	Options     []string   `json:"options"`
	AnswerIndex int        `json:"answerIndex"`
}
