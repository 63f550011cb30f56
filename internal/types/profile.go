package types

// CandidateProfile represents the structured candidate data extracted from a CV.
// After creation it is mutated only by the synthesis stage; the original CV text
// is retained in RawText for traceability.
type CandidateProfile struct {
	Name       string            `json:"name"`
	Email      string            `json:"email,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Location   string            `json:"location,omitempty"`
	Summary    string            `json:"summary,omitempty"`
	Experience []ExperienceEntry `json:"experience"`
	Education  []EducationEntry  `json:"education"`
	Skills     []SkillGroup      `json:"skills"`
	RawText    string            `json:"-"`
}

// ExperienceEntry represents one position in the candidate's work history.
// Entries are ordered most recent first.
type ExperienceEntry struct {
	Employer   string   `json:"employer"`
	Title      string   `json:"title"`
	StartDate  string   `json:"start_date,omitempty"`
	EndDate    string   `json:"end_date,omitempty"`
	Location   string   `json:"location,omitempty"`
	Highlights []string `json:"highlights"`
}

// EducationEntry represents one education credential.
type EducationEntry struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Area        string `json:"area,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
}

// SkillGroup represents a labeled grouping of skills (e.g., "Languages", "Cloud").
type SkillGroup struct {
	Label  string   `json:"label"`
	Skills []string `json:"skills"`
}

// FlatSkills returns every skill across all groups, in group order.
func (p *CandidateProfile) FlatSkills() []string {
	var skills []string
	for _, group := range p.Skills {
		skills = append(skills, group.Skills...)
	}
	return skills
}
