package advisor

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/jonathan/ats-optimizer/internal/llm"
	"github.com/jonathan/ats-optimizer/internal/prompts"
	"github.com/jonathan/ats-optimizer/internal/schemas"
	"github.com/jonathan/ats-optimizer/internal/types"
)

const promptFile = "advisor.json"

// Decomposition is the content service's raw view of a résumé. Every field is
// untrusted; the analysis package recomputes what it relies on.
type Decomposition struct {
	DetectedRole          string
	SummaryFeedback       string
	Sections              []types.Section
	HardSkillsFound       []string
	MissingHardSkills     []string
	FormattingIssues      []string
	CriticalErrors        []string
	Strengths             []string
	Weaknesses            []string
	SuggestedImprovements []types.Improvement
}

// Service implements the résumé operations on top of an llm.Client.
// Each method makes exactly one call; retries belong to the caller's gateway.
type Service struct {
	client llm.Client
	logger *zap.Logger
}

// New creates a Service.
func New(client llm.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, logger: logger}
}

// AnalyzeResume decomposes raw résumé text into sections and audit findings.
func (s *Service) AnalyzeResume(ctx context.Context, resumeText string) (Decomposition, error) {
	raw, err := s.generate(ctx, "analyze", "analyze-resume", schemas.Analysis, llm.TierAdvanced, map[string]string{
		"ResumeText": s.quoteUserText("analyze", "résumé", resumeText),
	})
	if err != nil {
		return Decomposition{}, err
	}

	doc := gjson.Parse(raw)
	d := Decomposition{
		DetectedRole:      strings.TrimSpace(doc.Get("detectedRole").String()),
		SummaryFeedback:   strings.TrimSpace(doc.Get("summaryFeedback").String()),
		HardSkillsFound:   stringList(doc.Get("hardSkillsFound")),
		MissingHardSkills: stringList(doc.Get("missingHardSkills")),
		FormattingIssues:  stringList(doc.Get("formattingIssues")),
		CriticalErrors:    stringList(doc.Get("criticalErrors")),
		Strengths:         stringList(doc.Get("strengths")),
		Weaknesses:        stringList(doc.Get("weaknesses")),
		Sections:          sectionList(doc.Get("structuredSections")),
	}
	doc.Get("suggestedImprovements").ForEach(func(_, v gjson.Result) bool {
		d.SuggestedImprovements = append(d.SuggestedImprovements, types.Improvement{
			SectionID:    v.Get("sectionId").String(),
			Original:     v.Get("original").String(),
			Professional: v.Get("professional").String(),
			ATSOptimized: v.Get("atsOptimized").String(),
		})
		return true
	})

	s.logger.Debug("résumé decomposed",
		zap.Int("sections", len(d.Sections)),
		zap.Int("critical_errors", len(d.CriticalErrors)))
	return d, nil
}

// ImproveSection asks for a professional and an ATS-optimized rewrite of one section.
func (s *Service) ImproveSection(ctx context.Context, section types.Section) (types.RevisionProposal, error) {
	raw, err := s.generate(ctx, "improve", "improve-section", schemas.Revision, llm.TierAdvanced, map[string]string{
		"Title":   section.Title,
		"Content": section.Content,
	})
	if err != nil {
		return types.RevisionProposal{}, err
	}

	return types.RevisionProposal{
		SectionID:    section.ID,
		Professional: gjson.Get(raw, "professional").String(),
		ATSOptimized: gjson.Get(raw, "atsOptimized").String(),
	}, nil
}

// ReviseAll rewrites every section in one call and returns an id→content mapping.
// Entries with an empty id are dropped; for repeated ids the last one wins.
func (s *Service) ReviseAll(ctx context.Context, set []types.Section) (map[string]string, error) {
	payload, err := sectionsPayload(set)
	if err != nil {
		return nil, err
	}
	raw, err := s.generate(ctx, "revise_all", "revise-all", schemas.BulkRevision, llm.TierAdvanced, map[string]string{
		"Sections": payload,
	})
	if err != nil {
		return nil, err
	}

	contents := make(map[string]string)
	gjson.Get(raw, "sections").ForEach(func(_, v gjson.Result) bool {
		if id := strings.TrimSpace(v.Get("id").String()); id != "" {
			contents[id] = v.Get("content").String()
		}
		return true
	})
	return contents, nil
}

// TailorSections rewrites the set toward a job description and reports keyword coverage.
// The service's own match percentage is returned as-is and must not be trusted.
func (s *Service) TailorSections(ctx context.Context, set []types.Section, target string) (types.JobMatchResult, error) {
	payload, err := sectionsPayload(set)
	if err != nil {
		return types.JobMatchResult{}, err
	}
	raw, err := s.generate(ctx, "tailor", "tailor-sections", schemas.Tailoring, llm.TierStandard, map[string]string{
		"JobDescription": s.quoteForeignText("tailor", "job description", target),
		"Sections":       payload,
	})
	if err != nil {
		return types.JobMatchResult{}, err
	}

	doc := gjson.Parse(raw)
	return types.JobMatchResult{
		MatchPercentage:  int(doc.Get("matchPercentage").Int()),
		MatchingKeywords: stringList(doc.Get("matchingKeywords")),
		MissingKeywords:  stringList(doc.Get("missingKeywords")),
		MatchFeedback:    strings.TrimSpace(doc.Get("matchFeedback").String()),
		TailoredSections: sectionList(doc.Get("tailoredSections")),
	}, nil
}

// generate renders the prompt, calls the model and validates the reply.
func (s *Service) generate(ctx context.Context, operation, promptKey, schemaName string, tier llm.ModelTier, data map[string]string) (string, error) {
	prompt, err := prompts.Get(promptFile, promptKey)
	if err != nil {
		return "", &llm.FatalError{Operation: operation, Cause: err}
	}
	schema, err := schemas.Raw(schemaName)
	if err != nil {
		return "", &llm.FatalError{Operation: operation, Cause: err}
	}
	prompt = prompt.Render(data)

	raw, err := s.client.GenerateJSON(ctx, llm.Request{
		System:         prompt.System,
		Prompt:         prompt.User,
		ResponseSchema: schema,
		Tier:           tier,
	})
	if err != nil {
		return "", err
	}

	if err := schemas.ValidateString(schemaName, raw); err != nil {
		s.logger.Warn("content service reply failed validation",
			zap.String("operation", operation),
			zap.Error(err))
		return "", &llm.FatalError{
			Operation: operation,
			Cause:     &ResponseError{Operation: operation, Message: "schema mismatch", Cause: err},
		}
	}
	return raw, nil
}

type sectionPayload struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func sectionsPayload(set []types.Section) (string, error) {
	items := make([]sectionPayload, len(set))
	for i, s := range set {
		items[i] = sectionPayload{ID: s.ID, Title: s.Title, Content: s.Content}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// stringList trims entries, drops blanks and removes case-insensitive duplicates.
func stringList(r gjson.Result) []string {
	var out []string
	seen := make(map[string]bool)
	r.ForEach(func(_, v gjson.Result) bool {
		item := strings.TrimSpace(v.String())
		key := strings.ToLower(item)
		if item != "" && !seen[key] {
			seen[key] = true
			out = append(out, item)
		}
		return true
	})
	return out
}

func sectionList(r gjson.Result) []types.Section {
	var out []types.Section
	r.ForEach(func(_, v gjson.Result) bool {
		out = append(out, types.Section{
			ID:              strings.TrimSpace(v.Get("id").String()),
			Title:           strings.TrimSpace(v.Get("title").String()),
			Content:         v.Get("content").String(),
			OriginalContent: v.Get("originalContent").String(),
		})
		return true
	})
	return out
}
