// Package types provides type definitions for structured data used throughout the cv-creator system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// JobRequirements represents the structured requirement set extracted from a job description.
// It is immutable once extracted for a session.
type JobRequirements struct {
	Company         string   `json:"company"`
	RoleTitle       string   `json:"role_title"`
	MustHave        []string `json:"must_have"`
	NiceToHave      []string `json:"nice_to_have"`
	SoftSkills      []string `json:"soft_skills"`
	ExperienceYears *int     `json:"experience_years,omitempty"`
	Languages       []string `json:"languages,omitempty"`
}

// AllSkills returns every required skill, must-haves first, in requirement order.
func (r *JobRequirements) AllSkills() []string {
	skills := make([]string, 0, len(r.MustHave)+len(r.NiceToHave))
	skills = append(skills, r.MustHave...)
	skills = append(skills, r.NiceToHave...)
	return skills
}
