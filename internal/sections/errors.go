// Package sections owns the authoritative, ordered section set and reconciles
// externally produced content back into it.
package sections

import (
	"errors"
	"fmt"
)

// ErrStaleProposal is returned when a proposal was produced for content the
// section no longer has.
var ErrStaleProposal = errors.New("section changed since the proposal was requested")

// NotFoundError is returned when a section id is not in the store.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("section not found: %s", e.ID)
}

// NoProposalError is returned when applying or reading a proposal that is not pending.
type NoProposalError struct {
	ID string
}

func (e *NoProposalError) Error() string {
	return fmt.Sprintf("no pending proposal for section: %s", e.ID)
}

// InvalidSetError is returned when a section set cannot be loaded.
type InvalidSetError struct {
	Message string
	Cause   error
}

func (e *InvalidSetError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid section set: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid section set: %s", e.Message)
}

func (e *InvalidSetError) Unwrap() error {
	return e.Cause
}
