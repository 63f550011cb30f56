// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/dddTech2/CV-CREATOR/internal/interview"
	"github.com/dddTech2/CV-CREATOR/internal/schemas"
	"github.com/dddTech2/CV-CREATOR/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRequirements outputs a human-readable summary of the extracted job requirements.
func (p *Printer) PrintRequirements(reqs *types.JobRequirements) {
	if reqs == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:  %s\n", reqs.Company))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", reqs.RoleTitle))
	if reqs.ExperienceYears != nil {
		sb.WriteString(fmt.Sprintf("Years:    %d+\n", *reqs.ExperienceYears))
	}
	sb.WriteString("\n")

	writeSkillList(&sb, "Must-have:", reqs.MustHave, maxItemsToShow)
	writeSkillList(&sb, "Nice-to-have:", reqs.NiceToHave, 3)
	writeSkillList(&sb, "Soft skills:", reqs.SoftSkills, 3)
	writeSkillList(&sb, "Languages:", reqs.Languages, 3)

	p.printBox("JOB REQUIREMENTS", strings.TrimSuffix(sb.String(), "\n"))
}

func writeSkillList(sb *strings.Builder, header string, skills []string, limit int) {
	if len(skills) == 0 {
		return
	}
	sb.WriteString(header + "\n")
	count := min(len(skills), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", skills[i]))
	}
	if len(skills) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(skills)-limit))
	}
	sb.WriteString("\n")
}

// PrintGapAnalysis outputs the match score and identified gaps.
func (p *Printer) PrintGapAnalysis(result *types.GapAnalysisResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Match score: %.0f/100\n", result.MatchScore))
	sb.WriteString(fmt.Sprintf("%s\n\n", result.Assessment))

	if len(result.Gaps) == 0 {
		sb.WriteString("No gaps identified.")
		p.printBox("GAP ANALYSIS", sb.String())
		return
	}

	sb.WriteString(fmt.Sprintf("Gaps (%d, %d critical):\n", len(result.Gaps), len(result.CriticalGaps)))
	count := min(len(result.Gaps), maxItemsToShow)
	for i := 0; i < count; i++ {
		gap := result.Gaps[i]
		marker := "•"
		if gap.IsCritical() {
			marker = "⚠"
		}
		sb.WriteString(fmt.Sprintf("  %s %s (%s)\n", marker, gap.Skill, gap.Category))
	}
	if len(result.Gaps) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Gaps)-maxItemsToShow))
	}

	p.printBox("GAP ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintQuestions outputs the questions of the current interview round.
func (p *Printer) PrintQuestions(round int, questions []interview.Question) {
	if len(questions) == 0 {
		return
	}

	var sb strings.Builder
	for i, question := range questions {
		text := question.Text
		if len(text) > 50 {
			text = text[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, text))
		if question.PreFill != "" {
			preFill := question.PreFill
			if len(preFill) > 45 {
				preFill = preFill[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("   (previous answer: %s)\n", preFill))
		}
	}

	p.printBox(fmt.Sprintf("INTERVIEW ROUND %d", round), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDocument outputs a section summary of the assembled document.
func (p *Printer) PrintDocument(doc *types.Document) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:       %s\n", doc.Name))
	sb.WriteString(fmt.Sprintf("Experience: %d entries\n", len(doc.Experience)))
	if len(doc.Projects) > 0 {
		sb.WriteString(fmt.Sprintf("Projects:   %d entries\n", len(doc.Projects)))
	}
	sb.WriteString(fmt.Sprintf("Education:  %d entries\n", len(doc.Education)))

	var labels []string
	for _, group := range doc.Skills {
		labels = append(labels, group.Label)
	}
	skills := strings.Join(labels, ", ")
	if len(skills) > 40 {
		skills = skills[:37] + "..."
	}
	sb.WriteString(fmt.Sprintf("Skills:     %s", skills))

	p.printBox("ASSEMBLED DOCUMENT", sb.String())
}

// PrintViolations outputs schema violations found during assembly.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintViolations(violations []schemas.FieldError) {
	if len(violations) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ DOCUMENT VALID")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d violations:\n\n", len(violations)))
	for i, v := range violations {
		message := v.Message
		if len(message) > 45 {
			message = message[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("⚠ %s\n", v.Field))
		sb.WriteString(fmt.Sprintf("  %s\n", message))
		if i < len(violations)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("SCHEMA VIOLATIONS", strings.TrimSuffix(sb.String(), "\n"))
}
