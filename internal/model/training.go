package model

// ModuleStatus is the state of one roadmap module for a user.
type ModuleStatus string

const (
	ModuleStatusLocked    ModuleStatus = "locked"
	ModuleStatusActive    ModuleStatus = "active"
	ModuleStatusCompleted ModuleStatus = "completed"
)

// Training module identifiers, in journey order.
const (
	ModuleCareerPath    = "career_path"
	ModuleSkillTest     = "skill_test"
	ModuleRoadmap       = "roadmap"
	ModuleAptitude      = "aptitude"
	ModuleCommunication = "communication"
	ModuleHrRound       = "hr_round"
	ModuleGoal          = "goal"
)

// TrainingModule is one step of a user's training journey.
type TrainingModule struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Subtitle string       `json:"subtitle"`
	Status   ModuleStatus `json:"status"`
	Score    *int         `json:"score,omitempty"`
}

// DefaultModules returns the initial roadmap layout: the first module
// active, everything after it locked.
func DefaultModules() []TrainingModule {
	return []TrainingModule{
		{ID: ModuleCareerPath, Title: "Career Path", Subtitle: "Define your direction", Status: ModuleStatusActive},
		{ID: ModuleSkillTest, Title: "Skill Test", Subtitle: "Assess your knowledge", Status: ModuleStatusLocked},
		{ID: ModuleRoadmap, Title: "Roadmap", Subtitle: "Personalized learning", Status: ModuleStatusLocked},
		{ID: ModuleAptitude, Title: "Aptitude", Subtitle: "Problem-solving skills", Status: ModuleStatusLocked},
		{ID: ModuleCommunication, Title: "Communication", Subtitle: "Workplace scenarios", Status: ModuleStatusLocked},
		{ID: ModuleHrRound, Title: "HR Round", Subtitle: "Behavioral prep", Status: ModuleStatusLocked},
		{ID: ModuleGoal, Title: "Goal: Hired!", Subtitle: "Congratulations!", Status: ModuleStatusLocked},
	}
}

// SelectCareerRequest is the payload for confirming a career path.
type SelectCareerRequest struct {
	CareerID string `json:"career_id" binding:"required"`
}

// CompleteModuleRequest is the payload for completing a non-test module
// (roadmap, goal). Test modules complete through session acknowledgement.
type CompleteModuleRequest struct {
	ModuleID string `json:"module_id" binding:"required"`
}
