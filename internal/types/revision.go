// Package types provides type definitions for structured data used throughout the ats-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// Choice selects one of the two candidate rewrites in a RevisionProposal.
type Choice string

const (
	// ChoiceProfessional selects the polished, human-oriented rewrite
	ChoiceProfessional Choice = "professional"
	// ChoiceATSOptimized selects the keyword-dense rewrite
	ChoiceATSOptimized Choice = "atsOptimized"
)

// ParseChoice converts user input into a Choice. Accepts a few common spellings.
func ParseChoice(s string) (Choice, error) {
	switch s {
	case "professional", "pro":
		return ChoiceProfessional, nil
	case "atsOptimized", "ats", "ats-optimized", "ats_optimized":
		return ChoiceATSOptimized, nil
	default:
		return "", fmt.Errorf("unknown revision choice %q (want professional or atsOptimized)", s)
	}
}

// RevisionProposal holds two candidate replacement contents for a single section.
// Proposals are ephemeral and never persisted with the section.
type RevisionProposal struct {
	SectionID    string `json:"sectionId"`
	Professional string `json:"professional"`
	ATSOptimized string `json:"atsOptimized"`
}

// Pick returns the content for the given choice.
func (p RevisionProposal) Pick(c Choice) (string, error) {
	switch c {
	case ChoiceProfessional:
		return p.Professional, nil
	case ChoiceATSOptimized:
		return p.ATSOptimized, nil
	default:
		return "", fmt.Errorf("unknown revision choice %q", c)
	}
}

// JobMatchResult is the outcome of tailoring the section set to a target description.
type JobMatchResult struct {
	MatchPercentage  int        `json:"matchPercentage"`
	MatchingKeywords []string   `json:"matchingKeywords"`
	MissingKeywords  []string   `json:"missingKeywords"`
	MatchFeedback    string     `json:"matchFeedback"`
	TailoredSections SectionSet `json:"tailoredSections"`
}
