// Package assemble builds the final document from the enriched profile and
// validates it against the document schema. Assembly is the only producer of
// documents; nothing downstream ever sees a partially built one.
package assemble

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dddTech2/CV-CREATOR/internal/schemas"
	"github.com/dddTech2/CV-CREATOR/internal/types"
)

var languageLabels = map[string]bool{
	"languages": true,
	"language":  true,
	"idiomas":   true,
	"idioma":    true,
}

// Assemble builds a document in fixed section order, validates it, and on
// validation failure performs exactly one corrective pass before revalidating.
// A second failure is terminal and carries every remaining violation.
func Assemble(profile *types.CandidateProfile, projects []types.ProjectEntry, skills []types.SkillGroup) (*types.Document, error) {
	doc := buildDocument(profile, projects, skills)

	err := schemas.ValidateDocument(doc)
	if err == nil {
		return doc, nil
	}

	validationErr, ok := asValidationError(err)
	if !ok {
		return nil, err
	}

	repair(doc, validationErr.Errors)

	if err := schemas.ValidateDocument(doc); err != nil {
		return nil, fmt.Errorf("document invalid after corrective pass: %w", err)
	}
	return doc, nil
}

func asValidationError(err error) (*schemas.ValidationError, bool) {
	validationErr, ok := err.(*schemas.ValidationError)
	return validationErr, ok
}

func buildDocument(profile *types.CandidateProfile, projects []types.ProjectEntry, skills []types.SkillGroup) *types.Document {
	doc := &types.Document{
		Name:       strings.TrimSpace(profile.Name),
		Email:      strings.TrimSpace(profile.Email),
		Phone:      normalizePhone(profile.Phone),
		Location:   strings.TrimSpace(profile.Location),
		Summary:    strings.TrimSpace(profile.Summary),
		Experience: pruneExperience(profile.Experience),
		Projects:   projects,
		Education:  profile.Education,
		Skills:     languagesLast(pruneSkillGroups(skills)),
	}
	return doc
}

// normalizePhone strips the separators people write into phone numbers. A
// number without an international prefix is left alone; inventing a country
// code is not a coercion we can make.
func normalizePhone(phone string) string {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		switch r {
		case ' ', '-', '.', '(', ')':
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func pruneExperience(entries []types.ExperienceEntry) []types.ExperienceEntry {
	pruned := make([]types.ExperienceEntry, 0, len(entries))
	for _, entry := range entries {
		highlights := make([]string, 0, len(entry.Highlights))
		for _, h := range entry.Highlights {
			if trimmed := strings.TrimSpace(h); trimmed != "" {
				highlights = append(highlights, trimmed)
			}
		}
		entry.Highlights = highlights
		pruned = append(pruned, entry)
	}
	return pruned
}

func pruneSkillGroups(groups []types.SkillGroup) []types.SkillGroup {
	pruned := make([]types.SkillGroup, 0, len(groups))
	for _, group := range groups {
		if strings.TrimSpace(group.Label) == "" || len(group.Skills) == 0 {
			continue
		}
		pruned = append(pruned, group)
	}
	return pruned
}

func languagesLast(groups []types.SkillGroup) []types.SkillGroup {
	var rest, languages []types.SkillGroup
	for _, group := range groups {
		if languageLabels[strings.ToLower(strings.TrimSpace(group.Label))] {
			languages = append(languages, group)
		} else {
			rest = append(rest, group)
		}
	}
	return append(rest, languages...)
}

// repair applies the corrective pass: optional entries that violated the
// schema are dropped. Required fields are left untouched so their violations
// surface in the terminal error.
func repair(doc *types.Document, violations []schemas.FieldError) {
	dropProjects := make(map[int]bool)
	dropEducation := make(map[int]bool)
	dropSkills := make(map[int]bool)

	for _, violation := range violations {
		parts := strings.Split(violation.Field, ".")
		switch parts[0] {
		case "phone":
			doc.Phone = ""
		case "email":
			doc.Email = ""
		case "projects":
			if idx, ok := sectionIndex(parts); ok {
				dropProjects[idx] = true
			}
		case "education":
			if idx, ok := sectionIndex(parts); ok {
				dropEducation[idx] = true
			}
		case "skills":
			if idx, ok := sectionIndex(parts); ok {
				dropSkills[idx] = true
			}
		}
	}

	if len(dropProjects) > 0 {
		kept := make([]types.ProjectEntry, 0, len(doc.Projects))
		for i, project := range doc.Projects {
			if !dropProjects[i] {
				kept = append(kept, project)
			}
		}
		doc.Projects = kept
	}
	if len(dropEducation) > 0 {
		kept := make([]types.EducationEntry, 0, len(doc.Education))
		for i, entry := range doc.Education {
			if !dropEducation[i] {
				kept = append(kept, entry)
			}
		}
		doc.Education = kept
	}
	if len(dropSkills) > 0 {
		kept := make([]types.SkillGroup, 0, len(doc.Skills))
		for i, group := range doc.Skills {
			if !dropSkills[i] {
				kept = append(kept, group)
			}
		}
		doc.Skills = kept
	}
}

func sectionIndex(parts []string) (int, bool) {
	if len(parts) < 2 {
		return 0, false
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}
