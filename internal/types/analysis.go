// Package types provides type definitions for structured data used throughout the ats-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Metrics holds structural counts extracted during initial decomposition.
type Metrics struct {
	TotalBulletPoints  int `json:"totalBulletPoints"`
	BulletsWithMetrics int `json:"bulletsWithMetrics"`
	WeakVerbsCount     int `json:"weakVerbsCount"`
	SectionCount       int `json:"sectionCount"`

	// Canonical structural sections detected by title
	HasExperience bool `json:"hasExperience"`
	HasEducation  bool `json:"hasEducation"`
	HasSkills     bool `json:"hasSkills"`
}

// MetricRatio returns the share of bullets that carry a quantifiable metric.
// Returns 0 when there are no bullets.
func (m Metrics) MetricRatio() float64 {
	if m.TotalBulletPoints <= 0 {
		return 0
	}
	return float64(m.BulletsWithMetrics) / float64(m.TotalBulletPoints)
}

// Improvement is an opaque rewrite suggestion returned with the initial analysis.
type Improvement struct {
	SectionID    string `json:"sectionId"`
	Original     string `json:"original"`
	Professional string `json:"professional"`
	ATSOptimized string `json:"atsOptimized"`
}

// AnalysisResult is the outcome of analyzing a résumé.
// OverallScore is computed locally and never copied from the content service.
type AnalysisResult struct {
	DetectedRole          string        `json:"detectedRole"`
	HardSkillsFound       []string      `json:"hardSkillsFound"`
	MissingHardSkills     []string      `json:"missingHardSkills"`
	Metrics               Metrics       `json:"metrics"`
	FormattingIssues      []string      `json:"formattingIssues"`
	CriticalErrors        []string      `json:"criticalErrors"`
	SummaryFeedback       string        `json:"summaryFeedback"`
	Strengths             []string      `json:"strengths,omitempty"`
	Weaknesses            []string      `json:"weaknesses,omitempty"`
	SuggestedImprovements []Improvement `json:"suggestedImprovements,omitempty"`
	Sections              SectionSet    `json:"structuredSections"`
	OverallScore          int           `json:"overallScore"`
}
