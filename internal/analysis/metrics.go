package analysis

import (
	"regexp"
	"strings"

	"github.com/jonathan/ats-optimizer/internal/types"
)

// quantifiedPattern matches digits, percentages and currency amounts.
var quantifiedPattern = regexp.MustCompile(`\d|%|[$€£]`)

// weakPhrases are passive or duty-oriented openers that recruiters read as low impact.
var weakPhrases = []string{
	"responsible for",
	"helped",
	"worked on",
	"assisted",
	"participated in",
	"involved in",
	"tasked with",
	"duties included",
	"handled",
	"was part of",
	"in charge of",
}

var (
	experienceTitles = []string{"experience", "employment", "work history", "career history", "professional background"}
	educationTitles  = []string{"education", "academic", "qualifications", "degree"}
	skillsTitles     = []string{"skill", "competenc", "technolog", "tools", "expertise"}
	// statement sections are read line by line when they carry no bullet markers
	statementTitles = append([]string{"project", "achievement", "accomplishment"}, experienceTitles...)
)

// ExtractMetrics computes the structural counts of a section set.
// The result depends only on the section titles and content.
func ExtractMetrics(set []types.Section) types.Metrics {
	m := types.Metrics{SectionCount: len(set)}

	for _, s := range set {
		title := strings.ToLower(s.Title)
		m.HasExperience = m.HasExperience || containsAny(title, experienceTitles)
		m.HasEducation = m.HasEducation || containsAny(title, educationTitles)
		m.HasSkills = m.HasSkills || containsAny(title, skillsTitles)

		for _, statement := range Statements(s) {
			m.TotalBulletPoints++
			if IsQuantified(statement) {
				m.BulletsWithMetrics++
			}
			if HasWeakVerb(statement) {
				m.WeakVerbsCount++
			}
		}
	}
	return m
}

// Statements returns the bullet-style statements of a section with markers removed.
// Sections about experience or projects that use no markers contribute every
// non-empty line.
func Statements(s types.Section) []string {
	var marked []string
	var plain []string
	for _, line := range types.ContentLines(s.Content) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if text, ok := types.BulletText(line); ok {
			if text != "" {
				marked = append(marked, text)
			}
			continue
		}
		plain = append(plain, trimmed)
	}

	if len(marked) > 0 {
		return marked
	}
	if containsAny(strings.ToLower(s.Title), statementTitles) {
		return plain
	}
	return nil
}

// IsQuantified reports whether a statement carries a measurable outcome.
func IsQuantified(statement string) bool {
	return quantifiedPattern.MatchString(statement)
}

// HasWeakVerb reports whether a statement uses a weak, duty-oriented phrase.
func HasWeakVerb(statement string) bool {
	lower := strings.ToLower(statement)
	for _, phrase := range weakPhrases {
		if strings.HasPrefix(lower, phrase) || strings.Contains(lower, " "+phrase+" ") {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
