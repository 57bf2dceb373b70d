package rendering

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/jonathan/ats-optimizer/internal/types"
)

//go:embed templates/resume.tex.tmpl
var templateFiles embed.FS

const defaultTemplate = "templates/resume.tex.tmpl"

// LaTeXData is the value passed to LaTeX templates. All text is already escaped.
type LaTeXData struct {
	Sections []LaTeXSection
}

// LaTeXSection is one section split into runs of bullets and plain lines.
type LaTeXSection struct {
	ID     string
	Title  string
	Blocks []LaTeXBlock
}

// LaTeXBlock is a run of consecutive bullet lines or plain lines.
type LaTeXBlock struct {
	Bullets bool
	Lines   []string
}

// LaTeX renders set through a text/template. An empty templatePath selects the
// built-in template.
func LaTeX(set []types.Section, templatePath string) ([]byte, error) {
	tmpl, err := parseTemplate(templatePath)
	if err != nil {
		return nil, err
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, buildLaTeXData(set)); err != nil {
		return nil, &TemplateError{Message: "failed to execute template", Cause: err}
	}
	return []byte(out.String()), nil
}

func parseTemplate(templatePath string) (*template.Template, error) {
	var content []byte
	var err error
	if templatePath == "" {
		content, err = templateFiles.ReadFile(defaultTemplate)
	} else {
		content, err = os.ReadFile(templatePath)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateError{Message: fmt.Sprintf("template file not found: %s", templatePath), Cause: err}
		}
		return nil, &TemplateError{Message: fmt.Sprintf("failed to read template file: %s", templatePath), Cause: err}
	}

	tmpl, err := template.New("resume").Funcs(template.FuncMap{
		"escape": EscapeLaTeX,
		"upper":  strings.ToUpper,
	}).Parse(string(content))
	if err != nil {
		return nil, &TemplateError{Message: "failed to parse template", Cause: err}
	}
	return tmpl, nil
}

func buildLaTeXData(set []types.Section) LaTeXData {
	data := LaTeXData{Sections: make([]LaTeXSection, 0, len(set))}
	for _, s := range set {
		sec := LaTeXSection{ID: s.ID, Title: EscapeLaTeX(s.Title)}
		for _, line := range types.ContentLines(s.Content) {
			if strings.TrimSpace(line) == "" {
				continue
			}
			text, bullet := types.BulletText(line)
			text = EscapeLaTeX(strings.TrimSpace(text))

			n := len(sec.Blocks)
			if n > 0 && sec.Blocks[n-1].Bullets == bullet {
				sec.Blocks[n-1].Lines = append(sec.Blocks[n-1].Lines, text)
				continue
			}
			sec.Blocks = append(sec.Blocks, LaTeXBlock{Bullets: bullet, Lines: []string{text}})
		}
		data.Sections = append(data.Sections, sec)
	}
	return data
}
