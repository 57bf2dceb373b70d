package rendering

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/ats-optimizer/internal/types"
)

// PlainText renders each section as an upper-cased title, a rule of '=' as long
// as the title, the raw content, and a blank line.
func PlainText(set []types.Section) []byte {
	var buf bytes.Buffer
	for _, s := range set {
		buf.WriteString(strings.ToUpper(s.Title))
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat("=", utf8.RuneCountInString(s.Title)))
		buf.WriteByte('\n')
		buf.WriteString(s.Content)
		buf.WriteString("\n\n")
	}
	return buf.Bytes()
}
