package rendering

import (
	"fmt"
	"strings"

	"github.com/jonathan/ats-optimizer/internal/types"
)

// Format is an export format.
type Format string

// Supported export formats.
const (
	FormatText  Format = "txt"
	FormatDOCX  Format = "docx"
	FormatPDF   Format = "pdf"
	FormatLaTeX Format = "tex"
)

// Formats lists the supported formats.
var Formats = []Format{FormatText, FormatDOCX, FormatPDF, FormatLaTeX}

// ParseFormat accepts a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "txt", "text", "plain":
		return FormatText, nil
	case "docx", "word":
		return FormatDOCX, nil
	case "pdf":
		return FormatPDF, nil
	case "tex", "latex":
		return FormatLaTeX, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatText:
		return "text/plain; charset=utf-8"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatPDF:
		return "application/pdf"
	case FormatLaTeX:
		return "application/x-tex"
	default:
		return "application/octet-stream"
	}
}

// Filename returns the default download name for the format.
func (f Format) Filename() string {
	return "ATS_Optimized_Resume." + string(f)
}

// Options carries per-format parameters.
type Options struct {
	Page         PageParams
	TemplatePath string
}

// DefaultOptions returns A4 page parameters and the built-in LaTeX template.
func DefaultOptions() Options {
	return Options{Page: DefaultPageParams()}
}

// Render produces the document bytes for format.
func Render(format Format, set []types.Section, opts Options) ([]byte, error) {
	switch format {
	case FormatText:
		return PlainText(set), nil
	case FormatDOCX:
		return FlowDocument(set)
	case FormatPDF:
		return FixedLayout(set, opts.Page)
	case FormatLaTeX:
		return LaTeX(set, opts.TemplatePath)
	default:
		return nil, &RenderError{Format: format, Message: "unsupported export format"}
	}
}
