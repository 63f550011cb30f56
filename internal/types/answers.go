package types

// Classification tags an interview answer by how it should flow into the document
type Classification string

// Classification constants
const (
	ClassWorkExperience Classification = "work_experience"
	ClassProject        Classification = "project"
	ClassNotApplicable  Classification = "not_applicable"
)

// Confidence indicates how much trust to place in a classification
type Confidence string

// Confidence constants
const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// ClassifiedAnswer represents one interview answer after classification.
// An empty Label means downstream consumers should generate a generic one.
type ClassifiedAnswer struct {
	Question       string         `json:"question"`
	Answer         string         `json:"answer"`
	Skill          string         `json:"skill"`
	Classification Classification `json:"classification"`
	Label          string         `json:"label,omitempty"`
	Description    string         `json:"description,omitempty"`
	Confidence     Confidence     `json:"confidence"`
}

// ProjectEntry represents a standalone project created from a project-classified
// answer. Project entries are never merged into work experience.
type ProjectEntry struct {
	Name       string   `json:"name"`
	Summary    string   `json:"summary"`
	StartDate  string   `json:"start_date,omitempty"`
	EndDate    string   `json:"end_date,omitempty"`
	Highlights []string `json:"highlights"`
}
