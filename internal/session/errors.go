package session

import (
	"errors"
	"fmt"
)

// ErrNoResume is returned by operations that need an analyzed résumé.
var ErrNoResume = errors.New("no résumé has been analyzed yet")

// PersistError reports that a state change succeeded in memory but could not
// be written to the snapshot store.
type PersistError struct {
	Namespace string
	Cause     error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist session %q: %v", e.Namespace, e.Cause)
}

func (e *PersistError) Unwrap() error {
	return e.Cause
}

// RestoreError reports a stored snapshot that could not be restored.
type RestoreError struct {
	Namespace string
	Message   string
	Cause     error
}

func (e *RestoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to restore session %q: %s: %v", e.Namespace, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to restore session %q: %s", e.Namespace, e.Message)
}

func (e *RestoreError) Unwrap() error {
	return e.Cause
}
