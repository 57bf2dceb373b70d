package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"

	"google.golang.org/api/googleapi"
)

// ErrMissingAPIKey is returned when no credential is configured for the content service.
var ErrMissingAPIKey = errors.New("API key is required")

// FatalError represents a failure that must not be retried.
type FatalError struct {
	Operation string
	Cause     error
}

func (e *FatalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("%s failed", e.Operation)
}

func (e *FatalError) Unwrap() error {
	return e.Cause
}

// TransientError marks a failure as retryable regardless of its underlying type.
type TransientError struct {
	Cause error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient failure: %v", e.Cause)
}

func (e *TransientError) Unwrap() error {
	return e.Cause
}

// RetryExhaustedError is returned once every permitted attempt failed transiently.
type RetryExhaustedError struct {
	Operation string
	Attempts  int
	Cause     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Operation, e.Attempts, e.Cause)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Cause
}

// ErrorClass is the retry classification of a failure.
type ErrorClass int

const (
	// ClassFatal failures propagate immediately.
	ClassFatal ErrorClass = iota
	// ClassTransient failures are retried with backoff.
	ClassTransient
)

func (c ErrorClass) String() string {
	if c == ClassTransient {
		return "transient"
	}
	return "fatal"
}

var transientStatusCodes = map[int]bool{
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// transientMarkers are substrings seen in rate-limit, overload and transport
// failures that surface as plain errors.
var transientMarkers = []string{
	"resource_exhausted",
	"unavailable",
	"rate limit",
	"quota",
	"overloaded",
	"error 429",
	"error 500",
	"error 502",
	"error 503",
	"error 504",
	"connection refused",
	"connection reset",
	"broken pipe",
	"temporary failure",
	"i/o timeout",
	"unexpected eof",
}

// Classify decides whether err is worth retrying.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassFatal
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ClassFatal
	}

	var transient *TransientError
	if errors.As(err, &transient) {
		return ClassTransient
	}
	var fatal *FatalError
	if errors.As(err, &fatal) {
		return ClassFatal
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if transientStatusCodes[apiErr.Code] {
			return ClassTransient
		}
		return ClassFatal
	}

	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return ClassTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ClassTransient
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return ClassTransient
		}
	}
	return ClassFatal
}

// IsTransient reports whether err would be retried.
func IsTransient(err error) bool {
	return Classify(err) == ClassTransient
}

// IsCredentialError reports whether err stems from a missing or rejected credential.
func IsCredentialError(err error) bool {
	if errors.Is(err, ErrMissingAPIKey) {
		return true
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 401 || apiErr.Code == 403
	}
	msg := strings.ToLower(errString(err))
	return strings.Contains(msg, "api key not valid") || strings.Contains(msg, "permission_denied")
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
