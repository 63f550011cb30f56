package parsing

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/dddTech2/CV-CREATOR/internal/llm"
	"github.com/dddTech2/CV-CREATOR/internal/prompts"
	"github.com/dddTech2/CV-CREATOR/internal/types"
)

// ExtractCandidateProfile extracts a structured candidate profile from CV text.
// The raw text is retained on the profile for traceability.
func ExtractCandidateProfile(ctx context.Context, client llm.Client, cvText string) (*types.CandidateProfile, error) {
	if strings.TrimSpace(cvText) == "" {
		return nil, &ValidationError{Field: "cv_text", Message: "CV text is empty"}
	}
	if client == nil {
		return nil, &APICallError{Message: "LLM client is required for CV extraction"}
	}

	prompt, err := prompts.Build("extraction.json", "extract-candidate-profile", map[string]string{
		"CVText": cvText,
	})
	if err != nil {
		return nil, &ParseError{Message: "failed to build extraction prompt", Cause: err}
	}

	result, err := client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &APICallError{Message: "failed to extract candidate profile", Cause: err}
	}

	var profile types.CandidateProfile
	if err := json.Unmarshal([]byte(result.Text), &profile); err != nil {
		return nil, &ParseError{Message: "failed to parse candidate profile JSON", Cause: err}
	}

	if err := postProcessProfile(&profile); err != nil {
		return nil, err
	}

	profile.RawText = cvText
	return &profile, nil
}

// postProcessProfile validates and tidies the extracted profile in place
func postProcessProfile(profile *types.CandidateProfile) error {
	profile.Name = strings.TrimSpace(profile.Name)
	if profile.Name == "" {
		return &ValidationError{Field: "name", Message: "candidate name is required"}
	}

	// Drop experience entries without an employer; trim highlight whitespace
	entries := profile.Experience[:0]
	for _, entry := range profile.Experience {
		entry.Employer = strings.TrimSpace(entry.Employer)
		if entry.Employer == "" {
			continue
		}
		highlights := entry.Highlights[:0]
		for _, h := range entry.Highlights {
			if trimmed := strings.TrimSpace(h); trimmed != "" {
				highlights = append(highlights, trimmed)
			}
		}
		entry.Highlights = highlights
		entries = append(entries, entry)
	}
	profile.Experience = entries

	// Drop empty skill groups
	groups := profile.Skills[:0]
	for _, group := range profile.Skills {
		group.Skills = dedupeTrimmed(group.Skills)
		if len(group.Skills) == 0 {
			continue
		}
		if strings.TrimSpace(group.Label) == "" {
			group.Label = "Skills"
		}
		groups = append(groups, group)
	}
	profile.Skills = groups

	return nil
}
