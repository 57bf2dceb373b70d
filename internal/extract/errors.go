package extract

import "fmt"

// UnsupportedFormatError is returned for document formats the extractor cannot read.
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Extension == "" {
		return "unsupported document format: missing file extension"
	}
	return fmt.Sprintf("unsupported document format: %s", e.Extension)
}

// CorruptDocumentError is returned when a supported document cannot be parsed.
type CorruptDocumentError struct {
	Format  string
	Message string
	Cause   error
}

func (e *CorruptDocumentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("corrupt %s document: %s: %v", e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("corrupt %s document: %s", e.Format, e.Message)
}

func (e *CorruptDocumentError) Unwrap() error {
	return e.Cause
}
