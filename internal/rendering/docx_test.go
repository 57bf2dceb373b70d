package rendering

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ats-optimizer/internal/types"
)

func readZipPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(content)
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func TestFlowDocument(t *testing.T) {
	set := []types.Section{
		{ID: "a", Title: "Experience", Content: "Led <platform> & tools\nShipped"},
		{ID: "b", Title: "Skills", Content: "Go"},
	}

	data, err := FlowDocument(set)
	require.NoError(t, err)

	doc := readZipPart(t, data, "word/document.xml")
	assert.Equal(t, 2, strings.Count(doc, `w:val="Heading2"`))
	assert.Contains(t, doc, ">EXPERIENCE<")
	assert.Contains(t, doc, ">SKILLS<")
	assert.Contains(t, doc, "Led &lt;platform&gt; &amp; tools")
	assert.Less(t, strings.Index(doc, "EXPERIENCE"), strings.Index(doc, "Shipped"))
	assert.Less(t, strings.Index(doc, "Shipped"), strings.Index(doc, "SKILLS"))

	ct := readZipPart(t, data, "[Content_Types].xml")
	assert.Contains(t, ct, "wordprocessingml.document.main+xml")
	assert.Contains(t, readZipPart(t, data, "word/styles.xml"), `w:styleId="Heading2"`)
}

func TestFlowDocument_Deterministic(t *testing.T) {
	set := []types.Section{{ID: "a", Title: "Summary", Content: "Engineer"}}

	first, err := FlowDocument(set)
	require.NoError(t, err)
	second, err := FlowDocument(set)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	r, err := zip.NewReader(bytes.NewReader(first), int64(len(first)))
	require.NoError(t, err)
	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
		assert.True(t, f.Modified.Equal(zipEpoch), f.Name)
	}
	assert.IsIncreasing(t, names)
}
