package synthesis

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/dddTech2/CV-CREATOR/internal/llm"
	"github.com/dddTech2/CV-CREATOR/internal/parsing"
	"github.com/dddTech2/CV-CREATOR/internal/prompts"
	"github.com/dddTech2/CV-CREATOR/internal/types"
)

// languageLabels identifies the spoken-language group, which always sorts last
var languageLabels = map[string]bool{
	"languages": true,
	"language":  true,
	"idiomas":   true,
	"idioma":    true,
}

// AddConfirmedSkills adds interview-confirmed skills to the profile's skill
// groups when they are not already present. Skills from not_applicable
// answers are never added.
func AddConfirmedSkills(profile *types.CandidateProfile, answers []types.ClassifiedAnswer) {
	present := make(map[string]bool)
	for _, skill := range profile.FlatSkills() {
		present[parsing.NormalizeSkill(skill)] = true
	}

	var added []string
	for _, answer := range answers {
		if answer.Classification == types.ClassNotApplicable {
			continue
		}
		normalized := parsing.NormalizeSkill(answer.Skill)
		if normalized == "" || present[normalized] {
			continue
		}
		added = append(added, answer.Skill)
		present[normalized] = true
	}
	if len(added) == 0 {
		return
	}

	// Confirmed skills land in their own group so the prioritizer can place them
	profile.Skills = append(profile.Skills, types.SkillGroup{
		Label:  "Additional Skills",
		Skills: added,
	})
}

// PrioritizeSkills reorders skill groups so groups containing must-have
// requirement skills sort first, and within a group must-have skills lead.
// With a client, labels may additionally be renamed to job-relevant names; the
// underlying skill set is verified unchanged, otherwise the deterministic
// ordering is used as-is. The languages group always stays last.
func PrioritizeSkills(ctx context.Context, client llm.Client, groups []types.SkillGroup, reqs *types.JobRequirements) []types.SkillGroup {
	ordered := deterministicOrder(groups, reqs)
	if client == nil {
		return ordered
	}

	relabeled, ok := relabelWithModel(ctx, client, ordered, reqs)
	if !ok {
		return ordered
	}
	return relabeled
}

// deterministicOrder applies the ordering rules without touching labels
func deterministicOrder(groups []types.SkillGroup, reqs *types.JobRequirements) []types.SkillGroup {
	mustHave := normalizedSet(reqs.MustHave)
	niceToHave := normalizedSet(reqs.NiceToHave)

	ordered := make([]types.SkillGroup, len(groups))
	for i, group := range groups {
		skills := make([]string, len(group.Skills))
		copy(skills, group.Skills)
		sort.SliceStable(skills, func(a, b int) bool {
			return skillRank(skills[a], mustHave, niceToHave) < skillRank(skills[b], mustHave, niceToHave)
		})
		ordered[i] = types.SkillGroup{Label: group.Label, Skills: skills}
	}

	sort.SliceStable(ordered, func(a, b int) bool {
		return groupRank(ordered[a], mustHave) < groupRank(ordered[b], mustHave)
	})
	return ordered
}

func skillRank(skill string, mustHave, niceToHave map[string]bool) int {
	normalized := parsing.NormalizeSkill(skill)
	switch {
	case mustHave[normalized]:
		return 0
	case niceToHave[normalized]:
		return 1
	default:
		return 2
	}
}

func groupRank(group types.SkillGroup, mustHave map[string]bool) int {
	if isLanguageGroup(group.Label) {
		return 2
	}
	for _, skill := range group.Skills {
		if mustHave[parsing.NormalizeSkill(skill)] {
			return 0
		}
	}
	return 1
}

func isLanguageGroup(label string) bool {
	return languageLabels[strings.ToLower(strings.TrimSpace(label))]
}

func normalizedSet(skills []string) map[string]bool {
	set := make(map[string]bool, len(skills))
	for _, skill := range skills {
		set[parsing.NormalizeSkill(skill)] = true
	}
	return set
}

// relabelWithModel asks the model for job-relevant group labels. The result is
// accepted only when it contains exactly the same skills; relabeling is
// presentation, never filtering.
func relabelWithModel(ctx context.Context, client llm.Client, groups []types.SkillGroup, reqs *types.JobRequirements) ([]types.SkillGroup, bool) {
	var groupLines strings.Builder
	for _, group := range groups {
		groupLines.WriteString(group.Label + ": " + strings.Join(group.Skills, ", ") + "\n")
	}

	prompt, err := prompts.Build("synthesis.json", "prioritize-skills", map[string]string{
		"SkillGroups": strings.TrimSpace(groupLines.String()),
		"MustHave":    strings.Join(reqs.MustHave, ", "),
		"NiceToHave":  strings.Join(reqs.NiceToHave, ", "),
	})
	if err != nil {
		return nil, false
	}

	result, err := client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, false
	}

	var parsed []struct {
		Label   string `json:"label"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal([]byte(result.Text), &parsed); err != nil || len(parsed) == 0 {
		return nil, false
	}

	relabeled := make([]types.SkillGroup, 0, len(parsed))
	for _, group := range parsed {
		var skills []string
		for _, skill := range strings.Split(group.Details, ",") {
			if trimmed := strings.TrimSpace(skill); trimmed != "" {
				skills = append(skills, trimmed)
			}
		}
		if len(skills) == 0 {
			return nil, false
		}
		relabeled = append(relabeled, types.SkillGroup{
			Label:  strings.TrimSpace(group.Label),
			Skills: skills,
		})
	}

	if !sameSkillSet(groups, relabeled) {
		return nil, false
	}

	// Languages last, regardless of what the model decided
	sort.SliceStable(relabeled, func(a, b int) bool {
		return !isLanguageGroup(relabeled[a].Label) && isLanguageGroup(relabeled[b].Label)
	})
	return relabeled, true
}

// sameSkillSet compares the normalized multiset of skills across groupings
func sameSkillSet(a, b []types.SkillGroup) bool {
	counts := make(map[string]int)
	for _, group := range a {
		for _, skill := range group.Skills {
			counts[parsing.NormalizeSkill(skill)]++
		}
	}
	for _, group := range b {
		for _, skill := range group.Skills {
			counts[parsing.NormalizeSkill(skill)]--
		}
	}
	for _, count := range counts {
		if count != 0 {
			return false
		}
	}
	return true
}
