package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/careerflow/assessment-backend/internal/model"
	"github.com/careerflow/assessment-backend/internal/repository"
)

// MonitorService orchestrates the live proctoring board.
type MonitorService struct {
	monitorRepo *repository.MonitorRepository
	eventRepo   *repository.ProctorEventRepository
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(monitorRepo *repository.MonitorRepository, eventRepo *repository.ProctorEventRepository) *MonitorService {
	return &MonitorService{monitorRepo: monitorRepo, eventRepo: eventRepo}
}

// BoardEntry is one running session on the monitor board, enriched with
// live Redis counters.
type BoardEntry struct {
	repository.RunningSessionRow
	Violations       int64 `json:"violations"`
	RemainingSeconds int64 `json:"remaining_seconds"`
}

// GetBoard fetches all running sessions and their live counters. The
// per-session Redis reads run concurrently.
func (s *MonitorService) GetBoard(ctx context.Context) ([]BoardEntry, error) {
	running, err := s.monitorRepo.GetRunningSessions(ctx)
	if err != nil {
		return nil, err
	}

	// Redis mirrors expire when a server restarts mid-session; seed the
	// board from the persisted event counts so those rows still show
	// their totals.
	ids := make([]uuid.UUID, len(running))
	for i := range running {
		ids[i] = running[i].SessionID
	}
	persisted, err := s.monitorRepo.GetViolationCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]BoardEntry, len(running))
	var wg sync.WaitGroup

	for i := range running {
		entries[i] = BoardEntry{
			RunningSessionRow: running[i],
			Violations:        persisted[running[i].SessionID],
			RemainingSeconds:  -1,
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Live counters win over the persisted seed when present.
			if count, err := s.monitorRepo.GetLiveViolationCount(ctx, running[i].SessionID); err == nil {
				entries[i].Violations = count
			}
			if secs, err := s.monitorRepo.GetLiveRemaining(ctx, running[i].SessionID); err == nil {
				entries[i].RemainingSeconds = secs
			}
		}(i)
	}
	wg.Wait()

	return entries, nil
}

// GetSessionEvents returns every proctor event recorded for one session,
// counted or not, oldest first.
func (s *MonitorService) GetSessionEvents(ctx context.Context, sessionID uuid.UUID) ([]model.ProctorEvent, error) {
	events, err := s.eventRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []model.ProctorEvent{}
	}
	return events, nil
}

// GetRecentEvents returns the latest counted violations across sessions.
func (s *MonitorService) GetRecentEvents(ctx context.Context, limit int) ([]model.ProctorEvent, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	events, err := s.eventRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []model.ProctorEvent{}
	}
	return events, nil
}
