package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/careerflow/assessment-backend/internal/model"
	"github.com/careerflow/assessment-backend/internal/repository"
)

// AdminDashboardData consolidates all metrics for the admin dashboard.
type AdminDashboardData struct {
	TotalUsers         int                         `json:"total_users"`
	TotalSessions      int                         `json:"total_sessions"`
	TotalQuestions     int                         `json:"total_questions"`
	TotalViolations    int                         `json:"total_violations"`
	FinishReasonCounts map[string]int              `json:"finish_reason_counts"`
	CareerBreakdown    []repository.CareerScoreRow `json:"career_breakdown"`
}

// UserProgressData is the per-user progress dashboard: roadmap state plus
// recent test attempts.
type UserProgressData struct {
	Modules          []model.TrainingModule    `json:"modules"`
	CompletedModules int                       `json:"completed_modules"`
	AverageScore     *int                      `json:"average_score,omitempty"`
	RecentSessions   []model.AssessmentSession `json:"recent_sessions"`
}

// SessionDetailData is one past attempt with its full answer log.
type SessionDetailData struct {
	Session *model.AssessmentSession `json:"session"`
	Answers []model.SessionAnswer    `json:"answers"`
}

// DashboardService handles dashboard business logic for both admins and
// users.
type DashboardService struct {
	repo        *repository.DashboardRepository
	sessionRepo *repository.AssessmentSessionRepository
	answerRepo  *repository.SessionAnswerRepository
	training    *TrainingService
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo *repository.DashboardRepository, sessionRepo *repository.AssessmentSessionRepository, answerRepo *repository.SessionAnswerRepository, training *TrainingService) *DashboardService {
	return &DashboardService{repo: repo, sessionRepo: sessionRepo, answerRepo: answerRepo, training: training}
}

// GetAdminDashboard fetches the platform-wide metrics.
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	users, sessions, questions, violations, err := s.repo.GetSummaryCounts(ctx)
	if err != nil {
		return nil, err
	}

	reasons, err := s.repo.GetFinishReasonCounts(ctx)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.repo.GetCareerScoreBreakdown(ctx)
	if err != nil {
		return nil, err
	}

	return &AdminDashboardData{
		TotalUsers:         users,
		TotalSessions:      sessions,
		TotalQuestions:     questions,
		TotalViolations:    violations,
		FinishReasonCounts: reasons,
		CareerBreakdown:    breakdown,
	}, nil
}

// GetUserProgress builds the per-user progress dashboard.
func (s *DashboardService) GetUserProgress(ctx context.Context, userID int) (*UserProgressData, error) {
	modules, err := s.training.GetRoadmap(ctx, userID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessionRepo.ListByUser(ctx, userID, 10)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []model.AssessmentSession{}
	}

	data := &UserProgressData{
		Modules:        modules,
		RecentSessions: sessions,
	}

	scoreSum, scoreCount := 0, 0
	for _, m := range modules {
		if m.Status == model.ModuleStatusCompleted {
			data.CompletedModules++
		}
		if m.Score != nil {
			scoreSum += *m.Score
			scoreCount++
		}
	}
	if scoreCount > 0 {
		avg := scoreSum / scoreCount
		data.AverageScore = &avg
	}
	return data, nil
}

// GetSessionDetail fetches one of the user's past attempts along with its
// per-question answer log. Sessions belonging to other users are reported
// as not found.
func (s *DashboardService) GetSessionDetail(ctx context.Context, userID int, sessionID uuid.UUID) (*SessionDetailData, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}

	answers, err := s.answerRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if answers == nil {
		answers = []model.SessionAnswer{}
	}

	return &SessionDetailData{Session: session, Answers: answers}, nil
}
