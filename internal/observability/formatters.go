// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/ats-optimizer/internal/sections"
	"github.com/jonathan/ats-optimizer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// writeList appends up to limit items under a heading.
func writeList(sb *strings.Builder, heading string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
	sb.WriteString("\n")
}

// PrintAnalysis outputs the score, detected role and findings of an analysis.
func (p *Printer) PrintAnalysis(result *types.AnalysisResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score:    %d/100\n", result.OverallScore))
	if result.DetectedRole != "" {
		sb.WriteString(fmt.Sprintf("Role:     %s\n", result.DetectedRole))
	}
	m := result.Metrics
	sb.WriteString(fmt.Sprintf("Sections: %d   Bullets: %d (%d quantified)\n",
		m.SectionCount, m.TotalBulletPoints, m.BulletsWithMetrics))
	if m.WeakVerbsCount > 0 {
		sb.WriteString(fmt.Sprintf("Weak verbs: %d\n", m.WeakVerbsCount))
	}
	sb.WriteString("\n")

	writeList(&sb, "Critical Errors", result.CriticalErrors, maxItemsToShow)
	writeList(&sb, "Hard Skills", result.HardSkillsFound, maxItemsToShow)
	writeList(&sb, "Missing Skills", result.MissingHardSkills, maxItemsToShow)
	writeList(&sb, "Formatting Issues", result.FormattingIssues, 3)
	writeList(&sb, "Strengths", result.Strengths, 3)
	writeList(&sb, "Weaknesses", result.Weaknesses, 3)

	if result.SummaryFeedback != "" {
		sb.WriteString(result.SummaryFeedback)
	}

	p.printBox("ATS ANALYSIS", strings.TrimRight(sb.String(), "\n"))
}

// PrintSections lists every section with its id and first content line.
func (p *Printer) PrintSections(set []types.Section) {
	if len(set) == 0 {
		p.printBox("SECTIONS", "No sections loaded")
		return
	}

	var sb strings.Builder
	for i, s := range set {
		marker := " "
		if s.Modified() {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s %s  [%s]\n", marker, s.Title, s.ID))
		first := strings.TrimSpace(types.ContentLines(s.Content)[0])
		if first != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", first))
		}
		if i < len(set)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox(fmt.Sprintf("SECTIONS (%d)", len(set)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSection outputs one section's full content.
func (p *Printer) PrintSection(s types.Section) {
	p.printBox(s.Title, s.Content)
}

// PrintProposal outputs both rewrites of a pending proposal.
func (p *Printer) PrintProposal(title string, proposal types.RevisionProposal) {
	p.printBox(fmt.Sprintf("PROFESSIONAL: %s", title), proposal.Professional)
	p.printBox(fmt.Sprintf("ATS OPTIMIZED: %s", title), proposal.ATSOptimized)
}

// PrintReport summarizes a reconciliation.
func (p *Printer) PrintReport(title string, report sections.Report) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Updated: %d\n", len(report.Updated)))
	if report.Partial() {
		sb.WriteString(fmt.Sprintf("⚠ Unchanged (not returned): %s\n", strings.Join(report.Missing, ", ")))
	}
	if len(report.Ignored) > 0 {
		sb.WriteString(fmt.Sprintf("Ignored unknown ids: %s\n", strings.Join(report.Ignored, ", ")))
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobMatch outputs a tailoring result.
func (p *Printer) PrintJobMatch(match types.JobMatchResult) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Match: %d%%\n\n", match.MatchPercentage))
	writeList(&sb, "Matching Keywords", match.MatchingKeywords, maxItemsToShow)
	writeList(&sb, "Missing Keywords", match.MissingKeywords, maxItemsToShow)
	if match.MatchFeedback != "" {
		sb.WriteString(match.MatchFeedback + "\n\n")
	}
	sb.WriteString(fmt.Sprintf("Tailored sections: %d", len(match.TailoredSections)))

	p.printBox("JOB MATCH", sb.String())
}
