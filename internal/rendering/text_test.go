package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/ats-optimizer/internal/types"
)

func TestPlainText(t *testing.T) {
	set := []types.Section{
		{ID: "a", Title: "Experience", Content: "- Led work\n- Shipped"},
		{ID: "b", Title: "Éducation", Content: "BSc"},
	}

	want := "EXPERIENCE\n==========\n- Led work\n- Shipped\n\nÉDUCATION\n=========\nBSc\n\n"
	assert.Equal(t, want, string(PlainText(set)))
}

func TestPlainText_Empty(t *testing.T) {
	assert.Empty(t, PlainText(nil))
}
