// Package synthesis turns classified interview answers into document content:
// enriched experience highlights, new project entries, a reprioritized skills
// section, and a tailored summary.
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

const (
	minHighlights = 1
	maxHighlights = 8
)

// EnrichExperience merges work_experience answers into the profile's matching
// experience entries, rewriting their highlight lists. Only answers tagged
// work_experience are accepted; the project path is BuildProjects, and the two
// never share code on purpose.
func EnrichExperience(ctx context.Context, client llm.Client, profile *types.CandidateProfile, reqs *types.JobRequirements, answers []types.ClassifiedAnswer) error {
	if len(profile.Experience) == 0 {
		return nil
	}

	// Group confirmed answers by their target entry index
	byEntry := make(map[int][]types.ClassifiedAnswer)
	for _, answer := range answers {
		if answer.Classification != types.ClassWorkExperience {
			return fmt.Errorf("EnrichExperience received a %s answer; only work_experience is accepted", answer.Classification)
		}
		idx := matchEntry(profile.Experience, answer.Label)
		byEntry[idx] = append(byEntry[idx], answer)
	}

	for idx, confirmed := range byEntry {
		entry := &profile.Experience[idx]
		highlights, err := rewriteHighlights(ctx, client, entry, reqs, confirmed)
		if err != nil {
			return err
		}
		entry.Highlights = highlights
	}
	return nil
}

// matchEntry finds the experience entry whose employer matches the label.
// With no match (or no label) the most recent entry is the fallback target.
func matchEntry(entries []types.ExperienceEntry, label string) int {
	normalized := normalizeEmployer(label)
	if normalized != "" {
		for i, entry := range entries {
			if normalizeEmployer(entry.Employer) == normalized {
				return i
			}
		}
	}
	return 0 // entries are ordered most recent first
}

func normalizeEmployer(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// rewriteHighlights asks the model to weave the confirmed experience into the
// entry's bullets. Without a client, or when the output is unusable, the
// confirmed descriptions are appended verbatim so nothing is invented.
func rewriteHighlights(ctx context.Context, client llm.Client, entry *types.ExperienceEntry, reqs *types.JobRequirements, confirmed []types.ClassifiedAnswer) ([]string, error) {
	if client == nil {
		return appendConfirmed(entry.Highlights, confirmed), nil
	}

	var confirmedLines strings.Builder
	for _, answer := range confirmed {
		text := answer.Description
		if text == "" {
			text = answer.Answer
		}
		fmt.Fprintf(&confirmedLines, "- [%s] %s\n", answer.Skill, text)
	}

	prompt, err := prompts.Build("synthesis.json", "enrich-experience", map[string]string{
		"Employer":     entry.Employer,
		"Title":        entry.Title,
		"Highlights":   "- " + strings.Join(entry.Highlights, "\n- "),
		"Confirmed":    strings.TrimSpace(confirmedLines.String()),
		"Requirements": strings.Join(reqs.AllSkills(), ", "),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build enrichment prompt: %w", err)
	}

	result, err := client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return nil, fmt.Errorf("experience enrichment failed: %w", err)
	}

	var parsed struct {
		Highlights []string `json:"highlights"`
	}
	if err := json.Unmarshal([]byte(result.Text), &parsed); err != nil || !plausibleHighlights(parsed.Highlights) {
		// Unusable output: fall back rather than lose the confirmed answers
		return appendConfirmed(entry.Highlights, confirmed), nil
	}

	cleaned := make([]string, 0, len(parsed.Highlights))
	for _, h := range parsed.Highlights {
		if trimmed := strings.TrimSpace(h); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned, nil
}

func plausibleHighlights(highlights []string) bool {
	count := 0
	for _, h := range highlights {
		if strings.TrimSpace(h) != "" {
			count++
		}
	}
	return count >= minHighlights && count <= maxHighlights
}

// appendConfirmed is the deterministic enrichment: confirmed descriptions are
// appended as bullets, preserving the candidate's own wording
func appendConfirmed(highlights []string, confirmed []types.ClassifiedAnswer) []string {
	out := make([]string, len(highlights), len(highlights)+len(confirmed))
	copy(out, highlights)
	for _, answer := range confirmed {
		text := answer.Description
		if text == "" {
			text = strings.TrimSpace(answer.Answer)
		}
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}
