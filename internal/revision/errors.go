// Package revision orchestrates single-section, bulk and tailoring revisions
// against the content service and applies their results to the section store.
package revision

import (
	"errors"
	"fmt"
)

var (
	// ErrWholeSetBusy is returned when an operation conflicts with a whole-set
	// revision already in flight.
	ErrWholeSetBusy = errors.New("a whole-set revision is already in progress")
	// ErrNoSections is returned when a revision is requested before any résumé was analyzed.
	ErrNoSections = errors.New("no sections loaded")
	// ErrNoTailoring is returned when applying a tailoring result that is not pending.
	ErrNoTailoring = errors.New("no pending tailoring result")
)

// RevisionError wraps a content-service failure for a revision request.
type RevisionError struct {
	Operation string
	SectionID string
	Cause     error
}

func (e *RevisionError) Error() string {
	if e.SectionID != "" {
		return fmt.Sprintf("%s of section %s failed: %v", e.Operation, e.SectionID, e.Cause)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Cause)
}

func (e *RevisionError) Unwrap() error {
	return e.Cause
}
