// Package types provides type definitions for structured data used throughout the ats-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// Step is the workflow position of a session.
type Step string

const (
	// StepUpload means no résumé has been analyzed yet
	StepUpload Step = "UPLOAD"
	// StepDashboard means an analysis is available
	StepDashboard Step = "DASHBOARD"
	// StepEditor means the user is revising sections
	StepEditor Step = "EDITOR"
)

// ParseStep validates a step name.
func ParseStep(s string) (Step, error) {
	switch Step(s) {
	case StepUpload, StepDashboard, StepEditor:
		return Step(s), nil
	default:
		return "", fmt.Errorf("unknown step %q", s)
	}
}

// Snapshot is the serializable state of a session.
type Snapshot struct {
	Step       Step            `json:"step"`
	ResumeText string          `json:"resumeText"`
	Analysis   *AnalysisResult `json:"analysis,omitempty"`
	Sections   SectionSet      `json:"sections"`
}

// EmptySnapshot returns the state of a fresh session.
func EmptySnapshot() *Snapshot {
	return &Snapshot{Step: StepUpload, Sections: SectionSet{}}
}
