package types

// GapCategory classifies what kind of requirement a gap refers to
type GapCategory string

// Gap category constants
const (
	GapTechnical  GapCategory = "technical"
	GapSoft       GapCategory = "soft"
	GapLanguage   GapCategory = "language"
	GapExperience GapCategory = "experience"
)

// GapPriority indicates the requirement tier a gap was derived from
type GapPriority string

// Gap priority constants
const (
	PriorityMustHave   GapPriority = "must_have"
	PriorityNiceToHave GapPriority = "nice_to_have"
)

// Gap represents a job requirement not evidenced in the candidate profile.
// Gaps are derived per analysis, never persisted independently.
type Gap struct {
	Skill     string      `json:"skill"`
	Category  GapCategory `json:"category"`
	Priority  GapPriority `json:"priority"`
	Rationale string      `json:"rationale,omitempty"`
}

// IsCritical reports whether the gap blocks must-have coverage
func (g *Gap) IsCritical() bool {
	return g.Priority == PriorityMustHave
}

// GapAnalysisResult represents the outcome of comparing a candidate profile
// against job requirements. A new instance supersedes the old on re-analysis.
type GapAnalysisResult struct {
	MatchScore    float64  `json:"match_score"`
	Gaps          []Gap    `json:"gaps"`
	CriticalGaps  []Gap    `json:"critical_gaps"`
	MatchedSkills []string `json:"matched_skills"`
	Assessment    string   `json:"assessment,omitempty"`
}
