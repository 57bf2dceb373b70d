// Package analysis turns raw résumé text into the initial section set and the
// locally scored analysis result.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/ats-optimizer/internal/advisor"
	"github.com/jonathan/ats-optimizer/internal/llm"
	"github.com/jonathan/ats-optimizer/internal/scoring"
	"github.com/jonathan/ats-optimizer/internal/types"
)

// ErrEmptyResume is returned when there is no text to analyze.
var ErrEmptyResume = errors.New("résumé text is empty")

// Decomposer splits résumé text into sections and audit findings.
type Decomposer interface {
	AnalyzeResume(ctx context.Context, resumeText string) (advisor.Decomposition, error)
}

// Analyzer runs the initial decomposition and scores the result.
type Analyzer struct {
	decomposer Decomposer
	gateway    *llm.Gateway
	weights    scoring.Weights
	logger     *zap.Logger
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(d Decomposer, gateway *llm.Gateway, weights scoring.Weights, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gateway == nil {
		gateway = llm.NewGateway(llm.DefaultPolicy(), logger)
	}
	return &Analyzer{decomposer: d, gateway: gateway, weights: weights, logger: logger}
}

// Analyze decomposes resumeText. The overall score is computed here from local
// metrics and never taken from the content service.
func (a *Analyzer) Analyze(ctx context.Context, resumeText string) (*types.AnalysisResult, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, ErrEmptyResume
	}

	d, err := llm.Invoke(ctx, a.gateway, "analyze", func(ctx context.Context) (advisor.Decomposition, error) {
		return a.decomposer.AnalyzeResume(ctx, resumeText)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze résumé: %w", err)
	}

	set, renamed := NormalizeSections(d.Sections)
	if len(renamed) > 0 {
		a.logger.Warn("assigned ids to sections without a usable id", zap.Int("count", len(renamed)))
	}

	result := &types.AnalysisResult{
		DetectedRole:          d.DetectedRole,
		HardSkillsFound:       nonNil(d.HardSkillsFound),
		MissingHardSkills:     nonNil(d.MissingHardSkills),
		FormattingIssues:      nonNil(d.FormattingIssues),
		CriticalErrors:        nonNil(d.CriticalErrors),
		SummaryFeedback:       d.SummaryFeedback,
		Strengths:             nonNil(d.Strengths),
		Weaknesses:            nonNil(d.Weaknesses),
		SuggestedImprovements: knownImprovements(d.SuggestedImprovements, set),
		Sections:              set,
	}
	a.score(result)

	a.logger.Info("résumé analyzed",
		zap.Int("sections", len(set)),
		zap.Int("score", result.OverallScore))
	return result, nil
}

// Rescore returns a copy of result with metrics and score recomputed for set.
// The content service's findings are kept as they were.
func (a *Analyzer) Rescore(result types.AnalysisResult, set []types.Section) types.AnalysisResult {
	result.Sections = types.SectionSet(set).Clone()
	a.score(&result)
	return result
}

func (a *Analyzer) score(result *types.AnalysisResult) {
	result.Metrics = ExtractMetrics(result.Sections)
	result.OverallScore = a.weights.Score(&result.Metrics,
		scoring.SkillCounts{Found: len(result.HardSkillsFound), Missing: len(result.MissingHardSkills)},
		scoring.ErrorCounts{Critical: len(result.CriticalErrors), Formatting: len(result.FormattingIssues)},
	)
}

// NormalizeSections trims titles, drops empty sections and gives every section a
// unique id. It returns the positions whose id had to be generated.
func NormalizeSections(in []types.Section) ([]types.Section, []int) {
	out := make([]types.Section, 0, len(in))
	seen := make(map[string]bool, len(in))
	var renamed []int

	for _, s := range in {
		s.Title = strings.TrimSpace(s.Title)
		if s.Title == "" && strings.TrimSpace(s.Content) == "" {
			continue
		}
		if s.Title == "" {
			s.Title = fmt.Sprintf("Section %d", len(out)+1)
		}
		s.ID = strings.TrimSpace(s.ID)
		if s.ID == "" || seen[s.ID] {
			s.ID = uuid.NewString()
			renamed = append(renamed, len(out))
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	return out, renamed
}

func knownImprovements(in []types.Improvement, set []types.Section) []types.Improvement {
	out := make([]types.Improvement, 0, len(in))
	for _, imp := range in {
		if _, ok := types.SectionSet(set).Find(imp.SectionID); ok {
			out = append(out, imp)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
