package rendering

import (
	"archive/zip"
	"bytes"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/gomutex/godocx"

	"github.com/jonathan/ats-optimizer/internal/types"
)

// zipEpoch is stamped on every archive entry so identical input gives identical bytes.
var zipEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// FlowDocument renders a WordprocessingML document with one Heading2 paragraph
// per section followed by one paragraph per content line. Pagination is left to
// the consuming word processor.
func FlowDocument(set []types.Section) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, &RenderError{Format: FormatDOCX, Message: "failed to create document", Cause: err}
	}

	for _, s := range set {
		if _, err := doc.AddHeading(strings.ToUpper(s.Title), 2); err != nil {
			return nil, &RenderError{Format: FormatDOCX, Message: "failed to add heading for " + s.ID, Cause: err}
		}
		for _, line := range types.ContentLines(s.Content) {
			doc.AddParagraph(line)
		}
	}

	var raw bytes.Buffer
	if err := doc.Write(&raw); err != nil {
		return nil, &RenderError{Format: FormatDOCX, Message: "failed to write document", Cause: err}
	}
	return repack(raw.Bytes())
}

// repack rewrites a package with its parts sorted by name and a fixed
// modification time.
func repack(data []byte) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &RenderError{Format: FormatDOCX, Message: "failed to read package", Cause: err}
	}

	files := append([]*zip.File(nil), r.File...)
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for _, f := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: zipEpoch,
		})
		if err != nil {
			return nil, &RenderError{Format: FormatDOCX, Message: "failed to add " + f.Name, Cause: err}
		}
		rc, err := f.Open()
		if err != nil {
			return nil, &RenderError{Format: FormatDOCX, Message: "failed to open " + f.Name, Cause: err}
		}
		_, err = io.Copy(w, rc)
		rc.Close()
		if err != nil {
			return nil, &RenderError{Format: FormatDOCX, Message: "failed to copy " + f.Name, Cause: err}
		}
	}
	if err := zw.Close(); err != nil {
		return nil, &RenderError{Format: FormatDOCX, Message: "failed to finalize archive", Cause: err}
	}
	return out.Bytes(), nil
}
