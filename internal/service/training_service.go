package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/careerflow/assessment-backend/internal/model"
	"github.com/careerflow/assessment-backend/internal/repository"
)

// Training errors.
var (
	ErrModuleLocked  = errors.New("module is locked")
	ErrUnknownModule = errors.New("unknown module")
	ErrCareerUnknown = errors.New("unknown career path")
	ErrCareerNotSet  = errors.New("no career path selected")
)

// TrainingService drives the linear roadmap: each module unlocks the next
// one when completed.
type TrainingService struct {
	trainingRepo *repository.TrainingRepository
	careerRepo   *repository.CareerRepository
	log          zerolog.Logger
}

// NewTrainingService creates a new TrainingService.
func NewTrainingService(trainingRepo *repository.TrainingRepository, careerRepo *repository.CareerRepository, log zerolog.Logger) *TrainingService {
	return &TrainingService{
		trainingRepo: trainingRepo,
		careerRepo:   careerRepo,
		log:          log.With().Str("component", "training_service").Logger(),
	}
}

// MergeProgress overlays persisted module states onto the default layout,
// preserving journey order. Modules without a persisted row keep their
// default state.
func MergeProgress(progress map[string]model.TrainingModule) []model.TrainingModule {
	modules := model.DefaultModules()
	for i := range modules {
		if p, ok := progress[modules[i].ID]; ok {
			modules[i].Status = p.Status
			modules[i].Score = p.Score
		}
	}
	return modules
}

// AdvanceModules marks moduleID completed (with an optional score) and
// activates the module after it. Returns the updated layout, or
// ErrModuleLocked / ErrUnknownModule when the transition is invalid.
func AdvanceModules(modules []model.TrainingModule, moduleID string, score *int) ([]model.TrainingModule, error) {
	idx := -1
	for i := range modules {
		if modules[i].ID == moduleID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrUnknownModule
	}
	if modules[idx].Status == model.ModuleStatusLocked {
		return nil, ErrModuleLocked
	}

	modules[idx].Status = model.ModuleStatusCompleted
	if score != nil {
		modules[idx].Score = score
	}
	if idx+1 < len(modules) && modules[idx+1].Status == model.ModuleStatusLocked {
		modules[idx+1].Status = model.ModuleStatusActive
	}
	return modules, nil
}

// GetRoadmap returns the user's current roadmap layout.
func (s *TrainingService) GetRoadmap(ctx context.Context, userID int) ([]model.TrainingModule, error) {
	progress, err := s.trainingRepo.GetProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return MergeProgress(progress), nil
}

// SelectCareer confirms a career path for the user and completes the
// career_path module, unlocking the skill test.
func (s *TrainingService) SelectCareer(ctx context.Context, userID int, careerID string) ([]model.TrainingModule, error) {
	if _, err := s.careerRepo.GetByID(ctx, careerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCareerUnknown
		}
		return nil, fmt.Errorf("get career: %w", err)
	}

	if err := s.trainingRepo.SetSelectedCareer(ctx, userID, careerID); err != nil {
		return nil, fmt.Errorf("set career: %w", err)
	}
	return s.CompleteModule(ctx, userID, model.ModuleCareerPath, nil)
}

// SelectedCareer returns the user's confirmed career path, or
// ErrCareerNotSet when none has been selected.
func (s *TrainingService) SelectedCareer(ctx context.Context, userID int) (*model.Career, error) {
	careerID, err := s.trainingRepo.GetSelectedCareer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get selected career: %w", err)
	}
	if careerID == "" {
		return nil, ErrCareerNotSet
	}
	career, err := s.careerRepo.GetByID(ctx, careerID)
	if err != nil {
		return nil, fmt.Errorf("get career: %w", err)
	}
	return career, nil
}

// CompleteModule marks a module completed, persists the transition and
// returns the updated layout.
func (s *TrainingService) CompleteModule(ctx context.Context, userID int, moduleID string, score *int) ([]model.TrainingModule, error) {
	modules, err := s.GetRoadmap(ctx, userID)
	if err != nil {
		return nil, err
	}

	modules, err = AdvanceModules(modules, moduleID, score)
	if err != nil {
		return nil, err
	}

	for _, m := range modules {
		// Persist only rows that differ from the default layout.
		if m.Status == model.ModuleStatusLocked {
			continue
		}
		if m.ID == model.ModuleCareerPath && m.Status == model.ModuleStatusActive {
			continue
		}
		if err := s.trainingRepo.UpsertModule(ctx, userID, m.ID, m.Status, m.Score); err != nil {
			return nil, fmt.Errorf("upsert module %s: %w", m.ID, err)
		}
	}

	s.log.Info().
		Int("user_id", userID).
		Str("module_id", moduleID).
		Msg("Module completed")
	return modules, nil
}

// Reset clears the user's roadmap and career selection.
func (s *TrainingService) Reset(ctx context.Context, userID int) ([]model.TrainingModule, error) {
	if err := s.trainingRepo.Reset(ctx, userID); err != nil {
		return nil, fmt.Errorf("reset progress: %w", err)
	}
	return model.DefaultModules(), nil
}
