// Package interview drives the bounded question/answer loop: it turns
// prioritized gaps into targeted questions and tracks round state until the
// interview finishes or the round cap is reached.
package interview

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dddTech2/CV-CREATOR/internal/llm"
	"github.com/dddTech2/CV-CREATOR/internal/prompts"
	"github.com/dddTech2/CV-CREATOR/internal/types"
)

// questionTemplates phrase a gap deterministically when generation is
// unavailable or fails. Phrasing never blocks the interview.
var questionTemplates = map[string]string{
	"en": "The role requires %s; do you have experience with it? Tell me where and how you used it.",
	"es": "La vacante requiere %s. ¿Tienes experiencia con esto? Cuéntame dónde y cómo la usaste.",
}

// skipSentinels record a skipped question's answer text per language
var skipSentinels = map[string]string{
	"en": "I have no experience with this.",
	"es": "No tengo experiencia en esto.",
}

var numberedLine = regexp.MustCompile(`^\s*\d+[.)]\s*(.+)$`)

// GenerateQuestionTexts phrases one question per gap, in gap order. With a nil
// client, or when the model's output cannot be matched to the gaps, it falls
// back to the deterministic template per gap.
func GenerateQuestionTexts(ctx context.Context, client llm.Client, reqs *types.JobRequirements, gaps []types.Gap, language string) []string {
	if client == nil {
		return templateQuestions(gaps, language)
	}

	var gapLines strings.Builder
	for i, gap := range gaps {
		fmt.Fprintf(&gapLines, "%d. %s (%s, %s)\n", i+1, gap.Skill, gap.Category, gap.Priority)
	}

	prompt, err := prompts.Build("interview.json", "generate-questions", map[string]string{
		"RoleTitle": reqs.RoleTitle,
		"Company":   reqs.Company,
		"Gaps":      strings.TrimSpace(gapLines.String()),
		"Language":  languageName(language),
	})
	if err != nil {
		return templateQuestions(gaps, language)
	}

	result, err := client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return templateQuestions(gaps, language)
	}

	generated := parseNumberedLines(result.Text)
	if len(generated) != len(gaps) {
		return templateQuestions(gaps, language)
	}
	return generated
}

// templateQuestions phrases every gap with the deterministic template
func templateQuestions(gaps []types.Gap, language string) []string {
	template, ok := questionTemplates[language]
	if !ok {
		template = questionTemplates["en"]
	}
	questions := make([]string, len(gaps))
	for i, gap := range gaps {
		questions[i] = fmt.Sprintf(template, gap.Skill)
	}
	return questions
}

// SkipSentinel returns the answer text recorded for a skipped question
func SkipSentinel(language string) string {
	if sentinel, ok := skipSentinels[language]; ok {
		return sentinel
	}
	return skipSentinels["en"]
}

// parseNumberedLines extracts the question text from a numbered list response
func parseNumberedLines(text string) []string {
	var questions []string
	for _, line := range strings.Split(text, "\n") {
		if m := numberedLine.FindStringSubmatch(line); m != nil {
			questions = append(questions, strings.TrimSpace(m[1]))
		}
	}
	return questions
}

func languageName(code string) string {
	switch code {
	case "es":
		return "Spanish"
	default:
		return "English"
	}
}
