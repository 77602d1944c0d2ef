package service_test

import (
	"errors"
	"testing"

	"github.com/careerflow/assessment-backend/internal/model"
	"github.com/careerflow/assessment-backend/internal/service"
)

func statusOf(t *testing.T, modules []model.TrainingModule, id string) model.ModuleStatus {
	t.Helper()
	for _, m := range modules {
		if m.ID == id {
			return m.Status
		}
	}
	t.Fatalf("module %s not in layout", id)
	return ""
}

func TestMergeProgressDefaults(t *testing.T) {
	modules := service.MergeProgress(nil)

	if got := statusOf(t, modules, model.ModuleCareerPath); got != model.ModuleStatusActive {
		t.Errorf("career_path = %s, want active", got)
	}
	for _, id := range []string{model.ModuleSkillTest, model.ModuleRoadmap, model.ModuleGoal} {
		if got := statusOf(t, modules, id); got != model.ModuleStatusLocked {
			t.Errorf("%s = %s, want locked", id, got)
		}
	}
}

func TestMergeProgressOverlay(t *testing.T) {
	score := 85
	progress := map[string]model.TrainingModule{
		model.ModuleCareerPath: {Status: model.ModuleStatusCompleted},
		model.ModuleSkillTest:  {Status: model.ModuleStatusCompleted, Score: &score},
		model.ModuleRoadmap:    {Status: model.ModuleStatusActive},
	}
	modules := service.MergeProgress(progress)

	if got := statusOf(t, modules, model.ModuleSkillTest); got != model.ModuleStatusCompleted {
		t.Errorf("skill_test = %s, want completed", got)
	}
	if got := statusOf(t, modules, model.ModuleRoadmap); got != model.ModuleStatusActive {
		t.Errorf("roadmap = %s, want active", got)
	}
	// Order must follow the journey, regardless of map iteration.
	if modules[0].ID != model.ModuleCareerPath || modules[len(modules)-1].ID != model.ModuleGoal {
		t.Errorf("layout order broken: first=%s last=%s", modules[0].ID, modules[len(modules)-1].ID)
	}
	for _, m := range modules {
		if m.ID == model.ModuleSkillTest {
			if m.Score == nil || *m.Score != 85 {
				t.Errorf("skill_test score = %v, want 85", m.Score)
			}
		}
	}
}

func TestAdvanceUnlocksNext(t *testing.T) {
	modules, err := service.AdvanceModules(model.DefaultModules(), model.ModuleCareerPath, nil)
	if err != nil {
		t.Fatal(err)
	}

	if got := statusOf(t, modules, model.ModuleCareerPath); got != model.ModuleStatusCompleted {
		t.Errorf("career_path = %s, want completed", got)
	}
	if got := statusOf(t, modules, model.ModuleSkillTest); got != model.ModuleStatusActive {
		t.Errorf("skill_test = %s, want active", got)
	}
	if got := statusOf(t, modules, model.ModuleRoadmap); got != model.ModuleStatusLocked {
		t.Errorf("roadmap = %s, want locked", got)
	}
}

func TestAdvanceLockedModule(t *testing.T) {
	_, err := service.AdvanceModules(model.DefaultModules(), model.ModuleSkillTest, nil)
	if !errors.Is(err, service.ErrModuleLocked) {
		t.Fatalf("err = %v, want ErrModuleLocked", err)
	}
}

func TestAdvanceUnknownModule(t *testing.T) {
	_, err := service.AdvanceModules(model.DefaultModules(), "mystery", nil)
	if !errors.Is(err, service.ErrUnknownModule) {
		t.Fatalf("err = %v, want ErrUnknownModule", err)
	}
}

func TestAdvanceRecordsScore(t *testing.T) {
	modules, err := service.AdvanceModules(model.DefaultModules(), model.ModuleCareerPath, nil)
	if err != nil {
		t.Fatal(err)
	}

	score := 72
	modules, err = service.AdvanceModules(modules, model.ModuleSkillTest, &score)
	if err != nil {
		t.Fatal(err)
	}

	for _, m := range modules {
		if m.ID == model.ModuleSkillTest {
			if m.Score == nil || *m.Score != 72 {
				t.Errorf("score = %v, want 72", m.Score)
			}
		}
	}
}

func TestAdvanceFullJourney(t *testing.T) {
	modules := model.DefaultModules()
	var err error
	for _, id := range []string{
		model.ModuleCareerPath, model.ModuleSkillTest, model.ModuleRoadmap,
		model.ModuleAptitude, model.ModuleCommunication, model.ModuleHrRound,
		model.ModuleGoal,
	} {
		modules, err = service.AdvanceModules(modules, id, nil)
		if err != nil {
			t.Fatalf("advance %s: %v", id, err)
		}
	}

	for _, m := range modules {
		if m.Status != model.ModuleStatusCompleted {
			t.Errorf("%s = %s, want completed", m.ID, m.Status)
		}
	}
}

func TestAdvanceRecompleteKeepsNext(t *testing.T) {
	modules, err := service.AdvanceModules(model.DefaultModules(), model.ModuleCareerPath, nil)
	if err != nil {
		t.Fatal(err)
	}
	modules, err = service.AdvanceModules(modules, model.ModuleSkillTest, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Retaking an earlier module must not re-lock or demote progress.
	modules, err = service.AdvanceModules(modules, model.ModuleCareerPath, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := statusOf(t, modules, model.ModuleSkillTest); got != model.ModuleStatusCompleted {
		t.Errorf("skill_test = %s, want completed after career_path re-complete", got)
	}
	if got := statusOf(t, modules, model.ModuleRoadmap); got != model.ModuleStatusActive {
		t.Errorf("roadmap = %s, want active", got)
	}
}
