// Package classify categorizes interview answers as work experience, a
// standalone project, or not applicable. Classification is recall-oriented and
// never fatal: unparseable model output degrades to not_applicable with a
// low-confidence flag.
package classify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dddTech2/CV-CREATOR/internal/budget"
	"github.com/dddTech2/CV-CREATOR/internal/llm"
	"github.com/dddTech2/CV-CREATOR/internal/prompts"
	"github.com/dddTech2/CV-CREATOR/internal/types"
)

// negationCues short-circuit an answer to not_applicable without an LLM call
var negationCues = []string{
	"i have no experience",
	"i've never used",
	"i have never used",
	"never worked with",
	"no tengo experiencia",
	"nunca he usado",
	"nunca lo he usado",
	"nunca trabajé con",
}

// projectCues suggest a personal or academic project in the heuristic path
var projectCues = []string{
	"university project", "side project", "personal project", "hobby project",
	"my own time", "for my thesis", "proyecto universitario", "proyecto personal",
	"proyecto académico", "mi tesis",
}

// workCues suggest employer experience in the heuristic path
var workCues = []string{
	"at my job", "at work", "for a client", "en mi trabajo", "en el trabajo",
	"para un cliente",
}

// Input is one answered question to classify
type Input struct {
	Question string
	Answer   string
	Skill    string
}

// Classify categorizes one answer. With a nil client it uses lexical cues
// only; with a client, cue-based short-circuits still avoid spending tokens
// on obvious negations.
func Classify(ctx context.Context, client llm.Client, input Input, knownEmployers []string) (*types.ClassifiedAnswer, error) {
	answer := strings.TrimSpace(input.Answer)
	result := &types.ClassifiedAnswer{
		Question:       input.Question,
		Answer:         input.Answer,
		Skill:          input.Skill,
		Classification: types.ClassNotApplicable,
		Confidence:     types.ConfidenceLow,
	}

	if answer == "" {
		result.Confidence = types.ConfidenceHigh
		return result, nil
	}
	lower := strings.ToLower(answer)
	for _, cue := range negationCues {
		if strings.Contains(lower, cue) {
			result.Confidence = types.ConfidenceHigh
			return result, nil
		}
	}

	if client == nil {
		classifyLexical(result, lower, knownEmployers)
		return result, nil
	}

	prompt, err := prompts.Build("classify.json", "classify-answer", map[string]string{
		"Question":       input.Question,
		"Answer":         input.Answer,
		"KnownEmployers": strings.Join(knownEmployers, ", "),
	})
	if err != nil {
		classifyLexical(result, lower, knownEmployers)
		return result, nil
	}

	generated, err := client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		if errors.Is(err, budget.ErrBudgetExceeded) {
			return nil, err
		}
		// Ambiguity and transport trouble are both non-fatal here; the
		// low-confidence default keeps the pipeline moving
		return result, nil
	}

	applyModelOutput(result, generated.Text)
	return result, nil
}

// rawClassification mirrors the model's JSON output
type rawClassification struct {
	Classification string `json:"classification"`
	CompanyName    string `json:"company_name"`
	ProjectName    string `json:"project_name"`
	Description    string `json:"description"`
	Confidence     string `json:"confidence"`
}

// applyModelOutput merges parseable model output into the default result.
// Anything missing or malformed leaves the not_applicable/low default.
func applyModelOutput(result *types.ClassifiedAnswer, text string) {
	var raw rawClassification
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return
	}

	switch types.Classification(strings.TrimSpace(raw.Classification)) {
	case types.ClassWorkExperience:
		result.Classification = types.ClassWorkExperience
		result.Label = strings.TrimSpace(raw.CompanyName)
	case types.ClassProject:
		result.Classification = types.ClassProject
		result.Label = strings.TrimSpace(raw.ProjectName)
	case types.ClassNotApplicable:
		result.Classification = types.ClassNotApplicable
	default:
		// Tag absent or unknown: keep the low-confidence default
		return
	}

	result.Description = strings.TrimSpace(raw.Description)
	if raw.Confidence == string(types.ConfidenceHigh) {
		result.Confidence = types.ConfidenceHigh
	}
}

// classifyLexical assigns a tag from lexical cues alone
func classifyLexical(result *types.ClassifiedAnswer, lowerAnswer string, knownEmployers []string) {
	for _, employer := range knownEmployers {
		e := strings.ToLower(strings.TrimSpace(employer))
		if e != "" && strings.Contains(lowerAnswer, e) {
			result.Classification = types.ClassWorkExperience
			result.Label = employer
			return
		}
	}
	for _, cue := range workCues {
		if strings.Contains(lowerAnswer, cue) {
			result.Classification = types.ClassWorkExperience
			return
		}
	}
	for _, cue := range projectCues {
		if strings.Contains(lowerAnswer, cue) {
			result.Classification = types.ClassProject
			return
		}
	}
	// No cue matched: not_applicable with the low-confidence flag already set
}

// ClassifyAll classifies a round's answers concurrently. Answers are
// independent, so they fan out and join before the next stage; the shared
// token budget is enforced by the metered client each call goes through.
func ClassifyAll(ctx context.Context, client llm.Client, inputs []Input, knownEmployers []string) ([]types.ClassifiedAnswer, error) {
	results := make([]types.ClassifiedAnswer, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			classified, err := Classify(gctx, client, input, knownEmployers)
			if err != nil {
				return err
			}
			results[i] = *classified
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
