package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSchemasCompile(t *testing.T) {
	for _, name := range []string{Analysis, Revision, BulkRevision, Tailoring, Snapshot} {
		t.Run(name, func(t *testing.T) {
			_, err := load(name)
			require.NoError(t, err)
			assert.NotEmpty(t, MustRaw(name))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		schema    string
		doc       string
		wantError bool
	}{
		{
			name:   "revision ok",
			schema: Revision,
			doc:    `{"professional": "Led work", "atsOptimized": "Led Go work"}`,
		},
		{
			name:      "revision missing alternative",
			schema:    Revision,
			doc:       `{"professional": "Led work"}`,
			wantError: true,
		},
		{
			name:   "bulk ok",
			schema: BulkRevision,
			doc:    `{"sections": [{"id": "a", "content": "New content"}]}`,
		},
		{
			name:      "bulk wrong type",
			schema:    BulkRevision,
			doc:       `{"sections": {"a": "New content"}}`,
			wantError: true,
		},
		{
			name:   "tailoring ok",
			schema: Tailoring,
			doc:    `{"matchingKeywords": ["Go"], "missingKeywords": [], "matchFeedback": "ok", "tailoredSections": []}`,
		},
		{
			name:   "snapshot ok",
			schema: Snapshot,
			doc:    `{"step": "EDITOR", "resumeText": "x", "analysis": null, "sections": [{"id": "a", "title": "Experience", "content": "Did work"}]}`,
		},
		{
			name:      "snapshot unknown step",
			schema:    Snapshot,
			doc:       `{"step": "REVIEW", "sections": []}`,
			wantError: true,
		},
		{
			name:      "malformed document",
			schema:    Revision,
			doc:       `{ invalid json }`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateString(tt.schema, tt.doc)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.NotEmpty(t, validationErr.Errors)
			assert.Equal(t, tt.schema, validationErr.Schema)
		})
	}
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("nope", []byte(`{}`))
	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "unknown schema")
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{
		Schema: Revision,
		Errors: []FieldError{{Field: "(root)", Message: "atsOptimized is required"}},
	}
	assert.Equal(t, "revision validation failed:\n  1. (root): atsOptimized is required", err.Error())
}
