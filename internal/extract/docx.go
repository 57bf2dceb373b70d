package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
)

const (
	docxDocumentXMLPath = "word/document.xml"
	contentTypesPath    = "[Content_Types].xml"
	docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

var (
	// paragraphTag matches one non-empty <w:p> element but not <w:pPr> or <w:p/>.
	paragraphTag = regexp.MustCompile(`(?s)<w:p(?:\s[^>/]*)?>(.*?)</w:p>`)
	wtTag        = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)
	tabOrBreak   = regexp.MustCompile(`<w:(tab|br)\b[^>]*/>`)

	partNameRe  = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)
	partNameRe2 = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)
)

// findDocxMainDocumentPath reads the main document part name from [Content_Types].xml.
// Returns "" when it cannot be determined.
func findDocxMainDocumentPath(zr *zip.Reader) string {
	data, err := readZipFile(zr, contentTypesPath)
	if err != nil || data == nil {
		return ""
	}
	content := string(data)
	if m := partNameRe.FindStringSubmatch(content); len(m) > 1 {
		return strings.TrimPrefix(m[1], "/")
	}
	if m := partNameRe2.FindStringSubmatch(content); len(m) > 1 {
		return strings.TrimPrefix(m[1], "/")
	}
	return ""
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, nil
}

// extractDOCX returns one line per paragraph of the main document part.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", &CorruptDocumentError{Format: "docx", Message: "not a zip archive", Cause: err}
	}

	docPath := findDocxMainDocumentPath(zr)
	if docPath == "" {
		docPath = docxDocumentXMLPath
	}
	docXML, err := readZipFile(zr, docPath)
	if err != nil {
		return "", &CorruptDocumentError{Format: "docx", Message: fmt.Sprintf("cannot read %s", docPath), Cause: err}
	}
	if docXML == nil {
		return "", &CorruptDocumentError{Format: "docx", Message: fmt.Sprintf("%s not found", docPath)}
	}

	paragraphs := paragraphTag.FindAllStringSubmatch(string(docXML), -1)
	lines := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		body := tabOrBreak.ReplaceAllStringFunc(p[1], func(tag string) string {
			if strings.HasPrefix(tag, "<w:tab") {
				return "<w:t>\t</w:t>"
			}
			return "<w:t>\n</w:t>"
		})
		var b strings.Builder
		for _, run := range wtTag.FindAllStringSubmatch(body, -1) {
			b.WriteString(html.UnescapeString(run[1]))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n"), nil
}
