package rendering

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ats-optimizer/internal/types"
)

func TestLaTeX_DefaultTemplate(t *testing.T) {
	set := []types.Section{
		{ID: "a", Title: "Experience", Content: "Acme Corp\n- Cut costs 30%\n- Led R&D\nNote_1"},
	}

	out, err := LaTeX(set, "")
	require.NoError(t, err)
	tex := string(out)

	assert.Contains(t, tex, `\section*{Experience}`)
	assert.Contains(t, tex, `Acme Corp\par`)
	assert.Contains(t, tex, `\item Cut costs 30\%`)
	assert.Contains(t, tex, `\item Led R\&D`)
	assert.Contains(t, tex, `Note\_1\par`)
	assert.Contains(t, tex, `\end{document}`)
}

func TestBuildLaTeXData_GroupsBullets(t *testing.T) {
	data := buildLaTeXData([]types.Section{{ID: "a", Title: "X", Content: "intro\n- one\n- two\n\noutro"}})

	require.Len(t, data.Sections, 1)
	assert.Equal(t, []LaTeXBlock{
		{Bullets: false, Lines: []string{"intro"}},
		{Bullets: true, Lines: []string{"one", "two"}},
		{Bullets: false, Lines: []string{"outro"}},
	}, data.Sections[0].Blocks)
}

func TestLaTeX_CustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.tex")
	require.NoError(t, os.WriteFile(path, []byte(`{{range .Sections}}[{{upper .Title}}]{{end}}`), 0644))

	out, err := LaTeX([]types.Section{{ID: "a", Title: "Skills"}}, path)
	require.NoError(t, err)
	assert.Equal(t, "[SKILLS]", string(out))
}

func TestLaTeX_TemplateErrors(t *testing.T) {
	_, err := LaTeX(nil, filepath.Join(t.TempDir(), "missing.tex"))
	var tmplErr *TemplateError
	require.ErrorAs(t, err, &tmplErr)
	assert.Contains(t, err.Error(), "not found")

	bad := filepath.Join(t.TempDir(), "bad.tex")
	require.NoError(t, os.WriteFile(bad, []byte(`{{range}}`), 0644))
	_, err = LaTeX(nil, bad)
	require.ErrorAs(t, err, &tmplErr)
}
