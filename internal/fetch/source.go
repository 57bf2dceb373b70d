package fetch

import (
	"context"
	"errors"
	"strings"

	"github.com/jonathan/ats-optimizer/internal/extract"
)

var (
	// ErrNoJobSource is returned when no job description was given.
	ErrNoJobSource = errors.New("no job description given: provide text, a file or a URL")
	// ErrAmbiguousJobSource is returned when more than one job description source was given.
	ErrAmbiguousJobSource = errors.New("give exactly one job description source")
)

// JobSource names where a job description comes from. Exactly one field is set.
type JobSource struct {
	Text string
	Path string
	URL  string
}

// Resolve returns the job description text. fetcher and extractor are only
// used for URL and file sources respectively.
func (s JobSource) Resolve(ctx context.Context, fetcher JobFetcher, extractor *extract.Extractor) (string, error) {
	set := 0
	for _, v := range []string{s.Text, s.Path, s.URL} {
		if strings.TrimSpace(v) != "" {
			set++
		}
	}
	switch {
	case set == 0:
		return "", ErrNoJobSource
	case set > 1:
		return "", ErrAmbiguousJobSource
	}

	switch {
	case strings.TrimSpace(s.Text) != "":
		return strings.TrimSpace(s.Text), nil
	case s.Path != "":
		if extractor == nil {
			extractor = extract.NewExtractor(nil)
		}
		return extractor.Extract(s.Path)
	default:
		if fetcher == nil {
			return "", &Error{URL: s.URL, Message: "no fetcher configured"}
		}
		result, err := fetcher.JobPosting(ctx, strings.TrimSpace(s.URL))
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(result.Text) == "" {
			return "", &Error{URL: s.URL, Message: "page has no readable text"}
		}
		return result.Text, nil
	}
}
