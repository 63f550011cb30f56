package synthesis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dddTech2/CV-CREATOR/internal/llm"
	"github.com/dddTech2/CV-CREATOR/internal/prompts"
	"github.com/dddTech2/CV-CREATOR/internal/types"
)

// BuildProjects creates one ProjectEntry per project-classified answer.
// Project answers never touch experience entries; this function takes no
// profile at all so the separation holds structurally.
func BuildProjects(ctx context.Context, client llm.Client, answers []types.ClassifiedAnswer) ([]types.ProjectEntry, error) {
	var projects []types.ProjectEntry
	for _, answer := range answers {
		if answer.Classification != types.ClassProject {
			return nil, fmt.Errorf("BuildProjects received a %s answer; only project is accepted", answer.Classification)
		}
		project, err := buildProject(ctx, client, answer)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, nil
}

func buildProject(ctx context.Context, client llm.Client, answer types.ClassifiedAnswer) (types.ProjectEntry, error) {
	name := strings.TrimSpace(answer.Label)
	if name == "" {
		// Empty label means "needs a generated generic label", not an error
		name = fmt.Sprintf("%s Project", answer.Skill)
	}

	description := answer.Description
	if description == "" {
		description = answer.Answer
	}

	if client == nil {
		return types.ProjectEntry{
			Name:       name,
			Summary:    description,
			Highlights: []string{description},
		}, nil
	}

	prompt, err := prompts.Build("synthesis.json", "generate-project-entry", map[string]string{
		"Name":        name,
		"Description": description,
		"Skill":       answer.Skill,
	})
	if err != nil {
		return types.ProjectEntry{}, fmt.Errorf("failed to build project prompt: %w", err)
	}

	result, err := client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return types.ProjectEntry{}, fmt.Errorf("project entry generation failed: %w", err)
	}

	var parsed struct {
		Summary    string   `json:"summary"`
		Highlights []string `json:"highlights"`
	}
	if err := json.Unmarshal([]byte(result.Text), &parsed); err != nil || strings.TrimSpace(parsed.Summary) == "" {
		// Unusable output: keep the candidate's own words
		return types.ProjectEntry{
			Name:       name,
			Summary:    description,
			Highlights: []string{description},
		}, nil
	}

	highlights := make([]string, 0, len(parsed.Highlights))
	for _, h := range parsed.Highlights {
		if trimmed := strings.TrimSpace(h); trimmed != "" {
			highlights = append(highlights, trimmed)
		}
	}
	if len(highlights) == 0 {
		highlights = []string{description}
	}

	return types.ProjectEntry{
		Name:       name,
		Summary:    strings.TrimSpace(parsed.Summary),
		Highlights: highlights,
	}, nil
}
