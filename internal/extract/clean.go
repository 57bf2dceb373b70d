package extract

import (
	"regexp"
	"strings"
)

var (
	innerSpace  = regexp.MustCompile(`[ \t\x{00a0}\x{2007}\x{202f}]+`)
	blankRuns   = regexp.MustCompile(`\n{3,}`)
	controlRune = strings.NewReplacer("\f", "\n", "\v", "\n", "\u2028", "\n", "\u2029", "\n\n", "\u00ad", "")
)

// CleanText normalizes extracted text while keeping its line structure:
// line endings become LF, runs of spaces collapse, indentation before bullets
// is kept, and at most one blank line separates blocks.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = controlRune.Replace(content)

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	trimmed := strings.TrimSpace(innerSpace.ReplaceAllString(line, " "))
	if trimmed == "" {
		return ""
	}

	if isBulletLine(trimmed) {
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		return strings.Repeat(" ", indent) + trimmed
	}
	return trimmed
}

func isBulletLine(line string) bool {
	for _, prefix := range []string{"- ", "* ", "• ", "· ", "▪ ", "◦ "} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
