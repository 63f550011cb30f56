// Package analysis compares a candidate profile against job requirements and
// produces a match score with a prioritized gap list.
package analysis

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dddTech2/CV-CREATOR/internal/parsing"
	"github.com/dddTech2/CV-CREATOR/internal/types"
)

// Score weights per requirement category. Must sum to 1.0.
const (
	weightMustHave   = 0.6
	weightNiceToHave = 0.2
	weightExperience = 0.1
	weightSoftSkills = 0.1
)

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// nowYear is swapped in tests to make experience estimation deterministic
var nowYear = func() int { return time.Now().Year() }

// Analyze compares the candidate profile against the job requirements.
// The analysis is pure; question phrasing happens later and never blocks it.
func Analyze(profile *types.CandidateProfile, reqs *types.JobRequirements) (*types.GapAnalysisResult, error) {
	if profile == nil || reqs == nil {
		return nil, fmt.Errorf("profile and requirements are required")
	}

	profileSkills := make(map[string]bool)
	for _, skill := range parsing.NormalizeSkillSet(profile.FlatSkills()) {
		profileSkills[skill] = true
	}

	result := &types.GapAnalysisResult{}

	mustMatched := collectGaps(result, reqs.MustHave, profileSkills, types.GapTechnical, types.PriorityMustHave)

	// Experience adequacy, satisfied when the posting states no requirement
	experienceAdequacy := 1.0
	if reqs.ExperienceYears != nil && *reqs.ExperienceYears > 0 {
		candidateYears := estimateExperienceYears(profile.Experience)
		experienceAdequacy = clamp01(float64(candidateYears) / float64(*reqs.ExperienceYears))
		if candidateYears < *reqs.ExperienceYears {
			result.Gaps = append(result.Gaps, types.Gap{
				Skill:     fmt.Sprintf("%d+ years of experience", *reqs.ExperienceYears),
				Category:  types.GapExperience,
				Priority:  types.PriorityMustHave,
				Rationale: fmt.Sprintf("the role requires %d years, the CV evidences about %d", *reqs.ExperienceYears, candidateYears),
			})
		}
	}

	niceMatched := collectGaps(result, reqs.NiceToHave, profileSkills, types.GapTechnical, types.PriorityNiceToHave)
	softMatched := collectGaps(result, reqs.SoftSkills, profileSkills, types.GapSoft, types.PriorityNiceToHave)
	collectGaps(result, reqs.Languages, profileSkills, types.GapLanguage, types.PriorityNiceToHave)

	for _, gap := range result.Gaps {
		if gap.IsCritical() {
			result.CriticalGaps = append(result.CriticalGaps, gap)
		}
	}

	score := coverage(mustMatched, len(reqs.MustHave))*weightMustHave +
		coverage(niceMatched, len(reqs.NiceToHave))*weightNiceToHave +
		experienceAdequacy*weightExperience +
		coverage(softMatched, len(reqs.SoftSkills))*weightSoftSkills
	result.MatchScore = clamp01(score) * 100

	result.Assessment = buildAssessment(result)
	return result, nil
}

// collectGaps appends a gap per missing skill and returns how many matched.
// Matched requirement skills are also recorded on the result.
func collectGaps(result *types.GapAnalysisResult, required []string, profileSkills map[string]bool, category types.GapCategory, priority types.GapPriority) int {
	matched := 0
	for _, skill := range required {
		if profileSkills[parsing.NormalizeSkill(skill)] {
			matched++
			result.MatchedSkills = append(result.MatchedSkills, skill)
			continue
		}
		result.Gaps = append(result.Gaps, types.Gap{
			Skill:     skill,
			Category:  category,
			Priority:  priority,
			Rationale: fmt.Sprintf("%s requirement not evidenced in the CV", priority),
		})
	}
	return matched
}

// coverage returns matched/required clamped to [0,1]. An empty requirement
// category counts as fully satisfied rather than dividing by zero.
func coverage(matched, required int) float64 {
	if required == 0 {
		return 1.0
	}
	return clamp01(float64(matched) / float64(required))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// estimateExperienceYears approximates total professional years from the span
// between the earliest start year and the latest end year across entries.
// Entries without parseable years are ignored; "Present" means the current year.
func estimateExperienceYears(entries []types.ExperienceEntry) int {
	earliest := 0
	latest := 0

	for _, entry := range entries {
		if start, ok := parseYear(entry.StartDate); ok {
			if earliest == 0 || start < earliest {
				earliest = start
			}
			end := nowYear()
			if e, ok := parseYear(entry.EndDate); ok {
				end = e
			}
			if end > latest {
				latest = end
			}
		}
	}

	if earliest == 0 || latest < earliest {
		return 0
	}
	return latest - earliest
}

// parseYear extracts a four-digit year from a free-form date string
func parseYear(date string) (int, bool) {
	date = strings.TrimSpace(date)
	if date == "" || strings.EqualFold(date, "present") || strings.EqualFold(date, "actualidad") {
		return 0, false
	}
	match := yearPattern.FindString(date)
	if match == "" {
		return 0, false
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return year, true
}

// buildAssessment produces a short deterministic summary of the analysis
func buildAssessment(result *types.GapAnalysisResult) string {
	switch {
	case result.MatchScore >= 85:
		return fmt.Sprintf("Strong match (%.0f/100). %d gaps remain.", result.MatchScore, len(result.Gaps))
	case result.MatchScore >= 60:
		return fmt.Sprintf("Good match (%.0f/100), but %d of %d gaps are critical.", result.MatchScore, len(result.CriticalGaps), len(result.Gaps))
	case result.MatchScore >= 35:
		return fmt.Sprintf("Partial match (%.0f/100). Addressing the %d critical gaps would improve it substantially.", result.MatchScore, len(result.CriticalGaps))
	default:
		return fmt.Sprintf("Weak match (%.0f/100). The CV is missing most required qualifications.", result.MatchScore)
	}
}
