package questionbank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/careerflow/assessment-backend/internal/model"
)

const sampleBank = `[
  {"id": 1, "difficulty": "easy", "category": "Basics", "question": "Q1?", "options": ["a", "b", "c", "d"], "answerIndex": 0},
  {"id": 2, "difficulty": "medium", "category": "Basics", "question": "Q2?", "options": ["a", "b", "c", "d"], "answerIndex": 2},
  {"id": 3, "difficulty": "hard", "category": "Advanced", "question": "Q3?", "options": ["a", "b"], "answerIndex": 1}
]`

func TestParse(t *testing.T) {
	questions, err := Parse([]byte(sampleBank))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(questions))
	}
	if questions[1].Difficulty != model.DifficultyMedium {
		t.Errorf("question 2 difficulty = %s, want medium", questions[1].Difficulty)
	}
	if questions[2].AnswerIndex != 1 {
		t.Errorf("question 3 answerIndex = %d, want 1", questions[2].AnswerIndex)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"malformed json", `[{`},
		{"unknown difficulty", `[{"id":1,"difficulty":"extreme","question":"Q?","options":["a","b"],"answerIndex":0}]`},
		{"answer out of range", `[{"id":1,"difficulty":"easy","question":"Q?","options":["a","b"],"answerIndex":2}]`},
		{"negative answer", `[{"id":1,"difficulty":"easy","question":"Q?","options":["a","b"],"answerIndex":-1}]`},
		{"duplicate options", `[{"id":1,"difficulty":"easy","question":"Q?","options":["a","a"],"answerIndex":0}]`},
		{"single option", `[{"id":1,"difficulty":"easy","question":"Q?","options":["a"],"answerIndex":0}]`},
		{"empty prompt", `[{"id":1,"difficulty":"easy","question":"","options":["a","b"],"answerIndex":0}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.raw)); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName("software-engineer")), []byte(sampleBank), 0o644); err != nil {
		t.Fatal(err)
	}

	questions, err := LoadFile(dir, "software-engineer")
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if len(questions) != 3 {
		t.Errorf("got %d questions, want 3", len(questions))
	}

	if _, err := LoadFile(dir, "missing-bank"); err == nil {
		t.Error("expected an error for a missing bank file")
	}
}
