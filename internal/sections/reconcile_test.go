package sections

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/ats-optimizer/internal/types"
)

func baseSet() []types.Section {
	return []types.Section{
		{ID: "a", Title: "Experience", Content: "Did work", OriginalContent: "Did work"},
		{ID: "b", Title: "Education", Content: "BSc", OriginalContent: "BSc"},
		{ID: "c", Title: "Skills", Content: "Go", OriginalContent: "Go"},
	}
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name       string
		candidates []types.Section
		want       []types.Section
		report     Report
	}{
		{
			name:       "partial update leaves missing ids unchanged",
			candidates: []types.Section{{ID: "a", Content: "New content"}},
			want: []types.Section{
				{ID: "a", Title: "Experience", Content: "New content", OriginalContent: "Did work"},
				{ID: "b", Title: "Education", Content: "BSc", OriginalContent: "BSc"},
				{ID: "c", Title: "Skills", Content: "Go", OriginalContent: "Go"},
			},
			report: Report{Updated: []string{"a"}, Missing: []string{"b", "c"}},
		},
		{
			name: "unknown ids are ignored and order follows the store",
			candidates: []types.Section{
				{ID: "z", Title: "Hobbies", Content: "Chess"},
				{ID: "c", Content: "Go, SQL"},
				{ID: "a", Content: "Led work"},
			},
			want: []types.Section{
				{ID: "a", Title: "Experience", Content: "Led work", OriginalContent: "Did work"},
				{ID: "b", Title: "Education", Content: "BSc", OriginalContent: "BSc"},
				{ID: "c", Title: "Skills", Content: "Go, SQL", OriginalContent: "Go"},
			},
			report: Report{Updated: []string{"a", "c"}, Missing: []string{"b"}, Ignored: []string{"z"}},
		},
		{
			name:       "title replaced only when provided",
			candidates: []types.Section{{ID: "b", Title: "Education & Training", Content: "BSc"}},
			want: []types.Section{
				{ID: "a", Title: "Experience", Content: "Did work", OriginalContent: "Did work"},
				{ID: "b", Title: "Education & Training", Content: "BSc", OriginalContent: "BSc"},
				{ID: "c", Title: "Skills", Content: "Go", OriginalContent: "Go"},
			},
			report: Report{Updated: []string{"b"}, Missing: []string{"a", "c"}},
		},
		{
			name:       "candidate original content is never adopted",
			candidates: []types.Section{{ID: "a", Content: "X", OriginalContent: "forged"}},
			want: []types.Section{
				{ID: "a", Title: "Experience", Content: "X", OriginalContent: "Did work"},
				{ID: "b", Title: "Education", Content: "BSc", OriginalContent: "BSc"},
				{ID: "c", Title: "Skills", Content: "Go", OriginalContent: "Go"},
			},
			report: Report{Updated: []string{"a"}, Missing: []string{"b", "c"}},
		},
		{
			name:       "empty candidate set changes nothing",
			candidates: nil,
			want:       baseSet(),
			report:     Report{Missing: []string{"a", "b", "c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := baseSet()
			got, report := Reconcile(current, tt.candidates)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.report, report)
			assert.Equal(t, baseSet(), current, "input must not be mutated")
		})
	}
}

func TestReconcile_OriginalContentStableAcrossRounds(t *testing.T) {
	first, _ := Reconcile(baseSet(), []types.Section{{ID: "a", Content: "round one"}, {ID: "b", Content: "round one"}})
	second, _ := Reconcile(first, []types.Section{{ID: "a", Content: "round two"}, {ID: "c", Content: "round two"}})

	for i := range first {
		assert.Equal(t, first[i].OriginalContent, second[i].OriginalContent)
		assert.Equal(t, first[i].ID, second[i].ID)
	}
	assert.Len(t, second, 3)
	assert.Equal(t, "round two", second[0].Content)
	assert.Equal(t, "round one", second[1].Content)
}

func TestContentMap(t *testing.T) {
	candidates := ContentMap(baseSet(), map[string]string{"c": "Rust", "a": "New content", "q": "stray"})

	assert.Equal(t, []types.Section{
		{ID: "a", Content: "New content"},
		{ID: "c", Content: "Rust"},
		{ID: "q", Content: "stray"},
	}, candidates)
}

func TestReport_Partial(t *testing.T) {
	assert.False(t, Report{Updated: []string{"a"}}.Partial())
	assert.True(t, Report{Missing: []string{"b"}}.Partial())
}
