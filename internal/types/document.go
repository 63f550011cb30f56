package types

// Document is the schema-target structure handed to the rendering collaborator.
// Sections appear in fixed order; empty optional sections are omitted entirely.
type Document struct {
	Name       string            `json:"name"`
	Email      string            `json:"email,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Location   string            `json:"location,omitempty"`
	Summary    string            `json:"summary,omitempty"`
	Experience []ExperienceEntry `json:"experience"`
	Projects   []ProjectEntry    `json:"projects,omitempty"`
	Education  []EducationEntry  `json:"education,omitempty"`
	Skills     []SkillGroup      `json:"skills"`
}
