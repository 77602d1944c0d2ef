package questionbank

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/careerflow/assessment-backend/internal/model"
)

// Slugs of the built-in banks: one per career for the skill test, plus
// the standalone test modules. File names follow "<slug>-questions.json"
// under the data directory.
var KnownSlugs = []string{
	"software-engineer",
	"data-analyst",
	"cybersecurity",
	"cloud-devops",
	"ai-ml",
	"aptitude",
	"communication",
	"hr_round",
}

// FileName returns the bank file name for a career slug.
func FileName(slug string) string {
	return slug + "-questions.json"
}

// LoadFile reads and validates one bank file.
func LoadFile(dir, slug string) ([]model.Question, error) {
	path := filepath.Join(dir, FileName(slug))
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank %s: %w", slug, err)
	}
	return Parse(raw)
}

// Parse decodes a JSON array of questions and validates every record.
func Parse(raw []byte) ([]model.Question, error) {
	var questions []model.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("decode bank: %w", err)
	}

	for i, q := range questions {
		if err := Validate(q); err != nil {
			return nil, fmt.Errorf("question %d (id %d): %w", i, q.ID, err)
		}
	}
	return questions, nil
}

// Validate checks a single question's structural invariants.
func Validate(q model.Question) error {
	if !q.Difficulty.Valid() {
		return fmt.Errorf("unknown difficulty %q", q.Difficulty)
	}
	if q.Prompt == "" {
		return fmt.Errorf("empty prompt")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("need at least 2 options, got %d", len(q.Options))
	}
	seen := make(map[string]bool, len(q.Options))
	for _, opt := range q.Options {
		if seen[opt] {
			return fmt.Errorf("duplicate option %q", opt)
		}
		seen[opt] = true
	}
	if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Options) {
		return fmt.Errorf("answerIndex %d out of range [0,%d)", q.AnswerIndex, len(q.Options))
	}
	return nil
}
