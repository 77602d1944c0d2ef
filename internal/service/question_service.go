package service

import (
	"context"
	"fmt"

	"github.com/careerflow/assessment-backend/internal/model"
	"github.com/careerflow/assessment-backend/internal/questionbank"
	"github.com/careerflow/assessment-backend/internal/repository"
)

// QuestionService handles question bank business logic.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{questionRepo: questionRepo}
}

// BankInfo is one bank with its stored question counts.
type BankInfo struct {
	Slug         string                   `json:"slug"`
	Count        int                      `json:"count"`
	ByDifficulty map[model.Difficulty]int `json:"by_difficulty"`
}

// ListBanks returns the known bank slugs with their stored question counts.
func (s *QuestionService) ListBanks(ctx context.Context) ([]BankInfo, error) {
	banks := make([]BankInfo, 0, len(questionbank.KnownSlugs))
	for _, slug := range questionbank.KnownSlugs {
		counts, err := s.questionRepo.CountByBank(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("count bank %s: %w", slug, err)
		}
		info := BankInfo{Slug: slug, ByDifficulty: counts}
		for _, n := range counts {
			info.Count += n
		}
		banks = append(banks, info)
	}
	return banks, nil
}

// ListByBank retrieves all questions of one bank.
func (s *QuestionService) ListByBank(ctx context.Context, slug string) ([]model.Question, error) {
	return s.questionRepo.ListByBank(ctx, slug)
}

// ImportBank validates raw bank JSON and replaces the stored bank.
func (s *QuestionService) ImportBank(ctx context.Context, slug string, raw []byte) (int, error) {
	questions, err := questionbank.Parse(raw)
	if err != nil {
		return 0, err
	}
	if err := s.questionRepo.ReplaceBank(ctx, slug, questions); err != nil {
		return 0, fmt.Errorf("replace bank %s: %w", slug, err)
	}
	return len(questions), nil
}

// ImportFromDir loads every known bank file from dir and replaces the
// stored banks. Missing files are skipped; returns per-slug counts.
func (s *QuestionService) ImportFromDir(ctx context.Context, dir string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, slug := range questionbank.KnownSlugs {
		questions, err := questionbank.LoadFile(dir, slug)
		if err != nil {
			continue
		}
		if err := s.questionRepo.ReplaceBank(ctx, slug, questions); err != nil {
			return nil, fmt.Errorf("replace bank %s: %w", slug, err)
		}
		counts[slug] = len(questions)
	}
	return counts, nil
}
