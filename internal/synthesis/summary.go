package synthesis

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/dddTech2/CV-CREATOR/internal/llm"
	"github.com/dddTech2/CV-CREATOR/internal/prompts"
	"github.com/dddTech2/CV-CREATOR/internal/types"
)

// GenerateSummary writes a role-tailored professional summary. Without a
// client, or when generation fails, the profile's existing summary stands.
func GenerateSummary(ctx context.Context, client llm.Client, profile *types.CandidateProfile, reqs *types.JobRequirements) string {
	if client == nil {
		return profile.Summary
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return profile.Summary
	}

	prompt, err := prompts.Build("synthesis.json", "generate-summary", map[string]string{
		"Profile":      string(profileJSON),
		"RoleTitle":    reqs.RoleTitle,
		"Company":      reqs.Company,
		"Requirements": strings.Join(reqs.AllSkills(), ", "),
	})
	if err != nil {
		return profile.Summary
	}

	result, err := client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return profile.Summary
	}

	summary := strings.TrimSpace(strings.Trim(strings.TrimSpace(result.Text), `"`))
	if summary == "" {
		return profile.Summary
	}
	return summary
}
