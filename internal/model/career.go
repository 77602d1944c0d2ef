package model

// Career is one of the selectable career paths. BankSlug names the
// question bank file/rows backing the path's skill test.
type Career struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	BankSlug string `json:"bank_slug"`
}

// DefaultCareers returns the built-in career catalog.
func DefaultCareers() []Career {
	return []Career{
		{ID: "swe", Title: "Software Engineer", Subtitle: "Backend / Full-Stack", BankSlug: "software-engineer"},
		{ID: "data", Title: "Data Analyst / Scientist", Subtitle: "Insights from data", BankSlug: "data-analyst"},
		{ID: "security", Title: "Cybersecurity Analyst", Subtitle: "Protect digital assets", BankSlug: "cybersecurity"},
		{ID: "cloud", Title: "Cloud / DevOps Engineer", Subtitle: "Infrastructure & scale", BankSlug: "cloud-devops"},
		{ID: "ai", Title: "AI / Machine Learning Engineer", Subtitle: "Build intelligent systems", BankSlug: "ai-ml"},
	}
}
