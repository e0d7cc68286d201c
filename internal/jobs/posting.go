package jobs

// Kind separates regular jobs from internships for presentation.
type Kind string

const (
	KindJob        Kind = "job"
	KindInternship Kind = "internship"
)

// Query is a structured request sent to a job-search provider.
type Query struct {
	Keywords  []string `json:"keywords"`
	Location  string   `json:"location,omitempty"`
	PageToken string   `json:"page_token,omitempty"`
}

// Posting is a normalized job or internship listing.
type Posting struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Location       string   `json:"location"`
	Locations      []string `json:"locations,omitempty"`
	Snippet        string   `json:"description_snippet"`
	RequiredSkills []string `json:"required_skills"`
	ApplicationURL string   `json:"application_url"`
	Platform       Platform `json:"source_platform"`
	Source         string   `json:"source"`
	Salary         string   `json:"salary,omitempty"`
	Kind           Kind     `json:"kind"`
}

// Clone returns a deep copy of the posting.
func (p *Posting) Clone() *Posting {
	cp := *p
	cp.Locations = append([]string(nil), p.Locations...)
	cp.RequiredSkills = append([]string(nil), p.RequiredSkills...)
	return &cp
}

// ScoredPosting pairs a posting with its compatibility against a profile.
type ScoredPosting struct {
	Posting       *Posting `json:"posting"`
	Score         float64  `json:"score"`
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
	Rationale     string   `json:"rationale"`
}
