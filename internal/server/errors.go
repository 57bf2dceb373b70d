package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/ats-optimizer/internal/advisor"
	"github.com/jonathan/ats-optimizer/internal/analysis"
	"github.com/jonathan/ats-optimizer/internal/extract"
	"github.com/jonathan/ats-optimizer/internal/fetch"
	"github.com/jonathan/ats-optimizer/internal/llm"
	"github.com/jonathan/ats-optimizer/internal/revision"
	"github.com/jonathan/ats-optimizer/internal/sections"
	"github.com/jonathan/ats-optimizer/internal/session"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnsupportedExport indicates an unknown export format in the request path
type ErrUnsupportedExport struct {
	Format string
}

func (e *ErrUnsupportedExport) Error() string {
	return fmt.Sprintf("unsupported export format: %s", e.Format)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr  *ErrValidation
		exportErr      *ErrUnsupportedExport
		exhaustedErr   *llm.RetryExhaustedError
		fatalErr       *llm.FatalError
		responseErr    *advisor.ResponseError
		invalidSetErr  *sections.InvalidSetError
		fetchErr       *fetch.Error
		notFoundErr    *sections.NotFoundError
		noProposalErr  *sections.NoProposalError
		unsupportedErr *extract.UnsupportedFormatError
		corruptErr     *extract.CorruptDocumentError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr),
		errors.Is(err, analysis.ErrEmptyResume),
		errors.Is(err, fetch.ErrNoJobSource),
		errors.Is(err, fetch.ErrAmbiguousJobSource):
		return http.StatusBadRequest
	case errors.As(err, &exportErr), errors.As(err, &unsupportedErr):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &corruptErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &exhaustedErr):
		return http.StatusServiceUnavailable
	case llm.IsCredentialError(err):
		return http.StatusUnauthorized
	case errors.As(err, &fatalErr),
		errors.As(err, &responseErr),
		errors.As(err, &invalidSetErr),
		errors.As(err, &fetchErr):
		return http.StatusBadGateway
	case errors.Is(err, revision.ErrWholeSetBusy),
		errors.Is(err, sections.ErrStaleProposal):
		return http.StatusConflict
	case errors.As(err, &notFoundErr),
		errors.As(err, &noProposalErr),
		errors.Is(err, revision.ErrNoTailoring),
		errors.Is(err, revision.ErrNoSections),
		errors.Is(err, session.ErrNoResume):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
