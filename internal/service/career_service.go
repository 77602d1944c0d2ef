package service

import (
	"context"

	"github.com/careerflow/assessment-backend/internal/model"
	"github.com/careerflow/assessment-backend/internal/repository"
)

// CareerService serves the read-only career path catalog.
type CareerService struct {
	careerRepo *repository.CareerRepository
}

// NewCareerService creates a new CareerService.
func NewCareerService(careerRepo *repository.CareerRepository) *CareerService {
	return &CareerService{careerRepo: careerRepo}
}

// List retrieves all career paths.
func (s *CareerService) List(ctx context.Context) ([]model.Career, error) {
	careers, err := s.careerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if careers == nil {
		careers = []model.Career{}
	}
	return careers, nil
}

// GetByID retrieves one career path.
func (s *CareerService) GetByID(ctx context.Context, id string) (*model.Career, error) {
	return s.careerRepo.GetByID(ctx, id)
}
