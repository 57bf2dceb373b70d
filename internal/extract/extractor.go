// Package extract turns uploaded résumé and job description documents into
// plain text.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Extensions lists the file extensions the extractor accepts.
var Extensions = []string{".pdf", ".docx", ".txt", ".md"}

// Extractor extracts plain text from document files.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor returns a new Extractor. A nil logger disables logging.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract reads the file at path and returns its cleaned text content.
func (e *Extractor) Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(ext) {
		return "", &UnsupportedFormatError{Extension: ext}
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf").
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	ext = strings.ToLower(ext)

	var text string
	var err error
	switch ext {
	case ".pdf":
		text, err = extractPDF(content)
	case ".docx":
		text, err = extractDOCX(content)
	case ".txt", ".md":
		text = extractPlain(content)
	default:
		return "", &UnsupportedFormatError{Extension: ext}
	}
	if err != nil {
		e.logger.Warn("document extraction failed", zap.String("format", ext), zap.Error(err))
		return "", err
	}

	cleaned := CleanText(text)
	if cleaned == "" && ext != ".txt" && ext != ".md" {
		return "", &CorruptDocumentError{Format: strings.TrimPrefix(ext, "."), Message: "no extractable text"}
	}

	e.logger.Debug("extracted document text",
		zap.String("format", ext),
		zap.Int("bytes", len(content)),
		zap.Int("chars", len(cleaned)),
	)
	return cleaned, nil
}

// Supported reports whether ext (with leading dot) can be extracted.
func Supported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, s := range Extensions {
		if s == ext {
			return true
		}
	}
	return false
}
