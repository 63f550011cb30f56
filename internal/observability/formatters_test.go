package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dddTech2/CV-CREATOR/internal/interview"
	"github.com/dddTech2/CV-CREATOR/internal/schemas"
	"github.com/dddTech2/CV-CREATOR/internal/types"
)

func TestPrintRequirements(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf)

	years := 3
	printer.PrintRequirements(&types.JobRequirements{
		Company:         "Acme",
		RoleTitle:       "Backend Developer",
		ExperienceYears: &years,
		MustHave:        []string{"Python", "Docker", "AWS", "PostgreSQL", "Kafka", "Redis"},
		NiceToHave:      []string{"Kubernetes"},
	})

	output := buf.String()
	assert.Contains(t, output, "JOB REQUIREMENTS")
	assert.Contains(t, output, "Acme")
	assert.Contains(t, output, "Years:    3+")
	assert.Contains(t, output, "... and 1 more", "must-have list truncated at five")
	assert.Contains(t, output, "Kubernetes")
}

func TestPrintRequirements_NilIsSilent(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRequirements(nil)
	assert.Empty(t, buf.String())
}

func TestPrintGapAnalysis(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf)

	gap := types.Gap{Skill: "Kubernetes", Category: types.GapTechnical, Priority: types.PriorityMustHave}
	printer.PrintGapAnalysis(&types.GapAnalysisResult{
		MatchScore:   72,
		Assessment:   "Good match with a few gaps.",
		Gaps:         []types.Gap{gap},
		CriticalGaps: []types.Gap{gap},
	})

	output := buf.String()
	assert.Contains(t, output, "GAP ANALYSIS")
	assert.Contains(t, output, "72/100")
	assert.Contains(t, output, "⚠ Kubernetes")
}

func TestPrintGapAnalysis_NoGaps(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintGapAnalysis(&types.GapAnalysisResult{MatchScore: 100, Assessment: "Full match."})
	assert.Contains(t, buf.String(), "No gaps identified.")
}

func TestPrintQuestions_ShowsPreFill(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf)

	printer.PrintQuestions(1, []interview.Question{
		{Text: "Do you have Docker experience?", PreFill: "Used Docker at Globant"},
		{Text: "Do you have AWS experience?"},
	})

	output := buf.String()
	assert.Contains(t, output, "INTERVIEW ROUND 1")
	assert.Contains(t, output, "previous answer: Used Docker at Globant")
}

func TestPrintDocument(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf)

	printer.PrintDocument(&types.Document{
		Name:       "Maria Gomez",
		Experience: []types.ExperienceEntry{{Employer: "Globant"}},
		Skills:     []types.SkillGroup{{Label: "Backend"}, {Label: "Languages"}},
	})

	output := buf.String()
	assert.Contains(t, output, "ASSEMBLED DOCUMENT")
	assert.Contains(t, output, "Maria Gomez")
	assert.Contains(t, output, "Backend, Languages")
}

func TestPrintViolations(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf)

	printer.PrintViolations([]schemas.FieldError{
		{Field: "phone", Message: "Does not match pattern"},
	})

	output := buf.String()
	assert.Contains(t, output, "SCHEMA VIOLATIONS")
	assert.Contains(t, output, "⚠ phone")
}

func TestPrintViolations_EmptyPrintsValidBanner(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintViolations(nil)
	assert.Contains(t, buf.String(), "DOCUMENT VALID")
}
