// Package parsing provides functionality to extract structured job requirements
// and candidate profiles from free text using LLM extraction.
package parsing

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/dddTech2/CV-CREATOR/internal/llm"
	"github.com/dddTech2/CV-CREATOR/internal/prompts"
	"github.com/dddTech2/CV-CREATOR/internal/types"
)

// ExtractJobRequirements extracts a structured requirement set from job description text.
// With a nil client it falls back to deterministic keyword extraction, so the
// pipeline can still analyze gaps when generation is unavailable.
func ExtractJobRequirements(ctx context.Context, client llm.Client, jobText string) (*types.JobRequirements, error) {
	if strings.TrimSpace(jobText) == "" {
		return nil, &ValidationError{Field: "job_text", Message: "job description text is empty"}
	}

	if client == nil {
		return extractRequirementsFallback(jobText), nil
	}

	prompt, err := prompts.Build("extraction.json", "extract-job-requirements", map[string]string{
		"JobText": jobText,
	})
	if err != nil {
		return nil, &ParseError{Message: "failed to build extraction prompt", Cause: err}
	}

	result, err := client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &APICallError{Message: "failed to extract job requirements", Cause: err}
	}

	var reqs types.JobRequirements
	if err := json.Unmarshal([]byte(result.Text), &reqs); err != nil {
		return nil, &ParseError{Message: "failed to parse job requirements JSON", Cause: err}
	}

	postProcessRequirements(&reqs)
	return &reqs, nil
}

// postProcessRequirements trims and deduplicates extracted skill lists in place
func postProcessRequirements(reqs *types.JobRequirements) {
	reqs.Company = strings.TrimSpace(reqs.Company)
	reqs.RoleTitle = strings.TrimSpace(reqs.RoleTitle)
	reqs.MustHave = dedupeTrimmed(reqs.MustHave)
	reqs.NiceToHave = dedupeTrimmed(reqs.NiceToHave)
	reqs.SoftSkills = dedupeTrimmed(reqs.SoftSkills)
	reqs.Languages = dedupeTrimmed(reqs.Languages)

	// A skill listed as must-have wins over a duplicate nice-to-have listing
	mustHave := make(map[string]bool, len(reqs.MustHave))
	for _, skill := range reqs.MustHave {
		mustHave[NormalizeSkill(skill)] = true
	}
	nice := reqs.NiceToHave[:0]
	for _, skill := range reqs.NiceToHave {
		if !mustHave[NormalizeSkill(skill)] {
			nice = append(nice, skill)
		}
	}
	reqs.NiceToHave = nice
}

// dedupeTrimmed trims entries and drops empties and duplicates, keeping order.
// Duplicates are detected on the normalized form.
func dedupeTrimmed(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		key := NormalizeSkill(trimmed)
		if trimmed == "" || seen[key] {
			continue
		}
		out = append(out, trimmed)
		seen[key] = true
	}
	return out
}

// mustHaveCues marks a requirement line as mandatory in the fallback extractor
var mustHaveCues = []string{
	"required", "must have", "must-have", "essential", "mandatory",
	"imprescindible", "requerido", "obligatorio", "excluyente",
}

var (
	experienceYearsEN = regexp.MustCompile(`(\d+)\+?\s*(?:years?|yrs?)`)
	experienceYearsES = regexp.MustCompile(`(\d+)\+?\s*años`)
	bulletPrefix      = regexp.MustCompile(`^[-*•·]\s*`)
)

// extractRequirementsFallback derives requirements without an LLM: bullet lines
// become skills, requirement keywords decide the tier, and years of experience
// come from a regex scan.
func extractRequirementsFallback(jobText string) *types.JobRequirements {
	reqs := &types.JobRequirements{}

	lower := strings.ToLower(jobText)
	if m := experienceYearsEN.FindStringSubmatch(lower); m != nil {
		if years, err := strconv.Atoi(m[1]); err == nil {
			reqs.ExperienceYears = &years
		}
	} else if m := experienceYearsES.FindStringSubmatch(lower); m != nil {
		if years, err := strconv.Atoi(m[1]); err == nil {
			reqs.ExperienceYears = &years
		}
	}

	for _, line := range strings.Split(jobText, "\n") {
		line = strings.TrimSpace(line)
		if !bulletPrefix.MatchString(line) {
			continue
		}
		skill := bulletPrefix.ReplaceAllString(line, "")
		// Cut trailing qualifier after the skill name ("Docker (required)" etc.)
		if idx := strings.IndexAny(skill, "(:,"); idx > 0 {
			skill = skill[:idx]
		}
		skill = strings.TrimSpace(skill)
		if skill == "" || len(skill) > 60 {
			continue
		}
		if containsAny(strings.ToLower(line), mustHaveCues) {
			reqs.MustHave = append(reqs.MustHave, skill)
		} else {
			reqs.NiceToHave = append(reqs.NiceToHave, skill)
		}
	}

	postProcessRequirements(reqs)
	return reqs
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
