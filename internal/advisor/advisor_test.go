package advisor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/ats-optimizer/internal/llm"
	"github.com/jonathan/ats-optimizer/internal/schemas"
	"github.com/jonathan/ats-optimizer/internal/types"
)

type fakeClient struct {
	reply    string
	err      error
	requests []llm.Request
}

func (f *fakeClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return f.reply, f.err
}

func (f *fakeClient) GenerateJSON(ctx context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

func (f *fakeClient) GetModel(tier llm.ModelTier) string { return "fake" }

func (f *fakeClient) Close() error { return nil }

func TestAnalyzeResume(t *testing.T) {
	client := &fakeClient{reply: `{
		"detectedRole": " Backend Engineer ",
		"summaryFeedback": "Solid",
		"structuredSections": [
			{"id": "exp", "title": "Experience", "content": "- Led migration", "originalContent": "worked on migration"},
			{"id": "edu", "title": "Education", "content": "BSc"}
		],
		"hardSkillsFound": ["Go", "go", " SQL ", ""],
		"missingHardSkills": ["Kubernetes"],
		"formattingIssues": ["Uses tables"],
		"criticalErrors": [],
		"overallScore": 97,
		"suggestedImprovements": [{"sectionId": "exp", "original": "x", "professional": "p", "atsOptimized": "a"}]
	}`}
	svc := New(client, zap.NewNop())

	d, err := svc.AnalyzeResume(context.Background(), "JANE DOE\nExperience ...")
	require.NoError(t, err)

	assert.Equal(t, "Backend Engineer", d.DetectedRole)
	assert.Equal(t, []string{"Go", "SQL"}, d.HardSkillsFound)
	assert.Equal(t, []string{"Kubernetes"}, d.MissingHardSkills)
	assert.Empty(t, d.CriticalErrors)
	require.Len(t, d.Sections, 2)
	assert.Equal(t, "worked on migration", d.Sections[0].OriginalContent)
	assert.Equal(t, "", d.Sections[1].OriginalContent)
	assert.Equal(t, []types.Improvement{{SectionID: "exp", Original: "x", Professional: "p", ATSOptimized: "a"}}, d.SuggestedImprovements)

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Contains(t, req.Prompt, "JANE DOE")
	assert.NotEmpty(t, req.System)
	assert.Equal(t, schemas.MustRaw(schemas.Analysis), req.ResponseSchema)
	assert.Equal(t, llm.TierAdvanced, req.Tier)
}

func TestImproveSection(t *testing.T) {
	client := &fakeClient{reply: `{"professional": "Led work", "atsOptimized": "Led Go work"}`}
	svc := New(client, nil)

	p, err := svc.ImproveSection(context.Background(), types.Section{ID: "a", Title: "Experience", Content: "Did work"})
	require.NoError(t, err)
	assert.Equal(t, types.RevisionProposal{SectionID: "a", Professional: "Led work", ATSOptimized: "Led Go work"}, p)
	assert.Contains(t, client.requests[0].Prompt, `"Experience"`)
	assert.Contains(t, client.requests[0].Prompt, "Did work")
}

func TestReviseAll(t *testing.T) {
	client := &fakeClient{reply: `{"sections": [{"id": "a", "content": "New content"}, {"id": " ", "content": "dropped"}]}`}
	svc := New(client, nil)

	contents, err := svc.ReviseAll(context.Background(), []types.Section{
		{ID: "a", Title: "Experience", Content: "Did work"},
		{ID: "b", Title: "Education", Content: "BSc"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "New content"}, contents)
	assert.Contains(t, client.requests[0].Prompt, `"id": "b"`)
}

func TestTailorSections(t *testing.T) {
	client := &fakeClient{reply: `{
		"matchPercentage": 91,
		"matchingKeywords": ["Go"],
		"missingKeywords": ["Rust"],
		"matchFeedback": "Good",
		"tailoredSections": [{"id": "a", "title": "Experience", "content": "Built Go APIs"}]
	}`}
	svc := New(client, nil)

	result, err := svc.TailorSections(context.Background(), []types.Section{{ID: "a", Title: "Experience", Content: "Did work"}}, "Go developer")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, result.MatchingKeywords)
	assert.Equal(t, []string{"Rust"}, result.MissingKeywords)
	assert.Equal(t, "Built Go APIs", result.TailoredSections[0].Content)
	assert.Contains(t, client.requests[0].Prompt, "Go developer")
	assert.Equal(t, llm.TierStandard, client.requests[0].Tier)
}

func TestSchemaMismatchIsFatal(t *testing.T) {
	client := &fakeClient{reply: `{"professional": "only one"}`}
	svc := New(client, nil)

	_, err := svc.ImproveSection(context.Background(), types.Section{ID: "a"})
	require.Error(t, err)

	var respErr *ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, "improve", respErr.Operation)
	assert.Equal(t, llm.ClassFatal, llm.Classify(err))
}

func TestClientErrorsPassThrough(t *testing.T) {
	cause := errors.New("connection reset by peer")
	svc := New(&fakeClient{err: cause}, nil)

	_, err := svc.ReviseAll(context.Background(), nil)
	require.ErrorIs(t, err, cause)
	assert.True(t, llm.IsTransient(err))
}
