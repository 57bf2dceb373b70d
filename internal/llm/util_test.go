package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain object",
			input: `{"professional": "Led", "atsOptimized": "Go"}`,
			want:  `{"professional": "Led", "atsOptimized": "Go"}`,
		},
		{
			name:  "json fence",
			input: "```json\n{\"professional\": \"Led\"}\n```",
			want:  `{"professional": "Led"}`,
		},
		{
			name:  "bare fence",
			input: "```\n{\"professional\": \"Led\"}\n```",
			want:  `{"professional": "Led"}`,
		},
		{
			name:  "fence without newline",
			input: "```{\"a\": 1}```",
			want:  `{"a": 1}`,
		},
		{
			name:  "preamble",
			input: "Here is the revised section:\n{\"atsOptimized\": \"Go, SQL\"}",
			want:  `{"atsOptimized": "Go, SQL"}`,
		},
		{
			name:  "trailing chatter",
			input: "{\"sections\": []}\n\nLet me know if you want another pass!",
			want:  `{"sections": []}`,
		},
		{
			name:  "array after preamble",
			input: "Sections:\n[{\"id\": \"exp\"}]",
			want:  `[{"id": "exp"}]`,
		},
		{
			name:  "braces inside strings",
			input: `Result: {"content": "uses } and { freely"}`,
			want:  `{"content": "uses } and { freely"}`,
		},
		{
			name:  "escaped quotes",
			input: `{"content": "She said \"ship it\" {"}`,
			want:  `{"content": "She said \"ship it\" {"}`,
		},
		{
			name:  "unbalanced is returned as is",
			input: `{"content": "cut off`,
			want:  `{"content": "cut off`,
		},
		{
			name:  "empty",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	assert.Equal(t, `{"a": {"b": 1}}`, extractJSONObject(`{"a": {"b": 1}} tail`))
	assert.Equal(t, "", extractJSONObject(`x {"a": 1}`))
	assert.Equal(t, "", extractJSONObject(`{"a": 1`))
	assert.Equal(t, `["x", ["y"]]`, extractJSONArray(`["x", ["y"]], more`))
	assert.Equal(t, "", extractJSONArray(`{"a": []}`))
}
