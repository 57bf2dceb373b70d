package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("advisor.json", "improve-section")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt.System)
	assert.Contains(t, prompt.User, "{{.Title}}")
	assert.Contains(t, prompt.User, "{{.Content}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("advisor.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestAdvisorPromptsPresent(t *testing.T) {
	ClearCache()

	keys, err := List("advisor.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"analyze-resume", "improve-section", "revise-all", "tailor-sections"}, keys)

	for _, key := range keys {
		assert.NotPanics(t, func() {
			p := MustGet("advisor.json", key)
			assert.NotEmpty(t, p.System, key)
		})
	}
}

func TestFormat(t *testing.T) {
	template := "Tailor {{.Title}} for {{.Company}}; {{.Unknown}} stays"
	result := Format(template, map[string]string{
		"Title":   "Experience",
		"Company": "Acme Corp",
	})
	assert.Equal(t, "Tailor Experience for Acme Corp; {{.Unknown}} stays", result)
}

func TestPrompt_Render(t *testing.T) {
	p := Prompt{System: "role for {{.Title}}", User: "Original:\n{{.Content}}"}
	rendered := p.Render(map[string]string{"Title": "Skills", "Content": "Go, SQL"})

	assert.Equal(t, "role for Skills", rendered.System)
	assert.Equal(t, "Original:\nGo, SQL", rendered.User)
}
