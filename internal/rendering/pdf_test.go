package rendering

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ats-optimizer/internal/types"
)

var pageObject = regexp.MustCompile(`/Type /Page[^s]`)

func TestFixedLayout_EmptySetIsSinglePage(t *testing.T) {
	data, err := FixedLayout(nil, DefaultPageParams())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Len(t, pageObject.FindAll(data, -1), 1)
}

func TestFixedLayout_IsByteIdentical(t *testing.T) {
	set := []types.Section{
		{ID: "a", Title: "Expérience", Content: "- Led migration of 12 services • cut p99 latency by 40%\n- Mentored 4 engineers"},
		{ID: "b", Title: "Skills", Content: numberedLines(90)},
	}

	first, err := FixedLayout(set, DefaultPageParams())
	require.NoError(t, err)
	second, err := FixedLayout(set, DefaultPageParams())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Greater(t, len(pageObject.FindAll(first, -1)), 1)
}

func TestFixedLayout_InvalidParams(t *testing.T) {
	params := DefaultPageParams()
	params.Width = 10

	_, err := FixedLayout(nil, params)
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, FormatPDF, renderErr.Format)
}

func TestFpdfMeasurer(t *testing.T) {
	m := newFpdfMeasurer(newPDF(DefaultPageParams()), 9.5)

	assert.Equal(t, 0.0, m.TextWidth(""))
	assert.Greater(t, m.TextWidth("W"), m.TextWidth("i"))
	assert.InDelta(t, m.TextWidth("ab"), m.TextWidth("a")+m.TextWidth("b"), 1e-9)
	assert.Equal(t, m.TextWidth("o"), m.TextWidth("é"))
}
