package fetch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFetcher struct {
	calls atomic.Int32
	err   error
}

func (f *countingFetcher) JobPosting(_ context.Context, urlStr string) (*Result, error) {
	n := f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &Result{URL: urlStr, Text: "posting", StatusCode: int(n)}, nil
}

func TestCachedFetcher_ReusesFreshResult(t *testing.T) {
	inner := &countingFetcher{}
	c := NewCachedFetcher(inner, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	first, err := c.JobPosting(context.Background(), "https://example.com/job")
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := c.JobPosting(context.Background(), "https://example.com/job")
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, "posting", second.Text)
	assert.Equal(t, int32(1), inner.calls.Load())

	now = now.Add(time.Minute)
	third, err := c.JobPosting(context.Background(), "https://example.com/job")
	require.NoError(t, err)
	assert.False(t, third.FromCache)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCachedFetcher_Invalidate(t *testing.T) {
	inner := &countingFetcher{}
	c := NewCachedFetcher(inner, 0)

	_, err := c.JobPosting(context.Background(), "https://example.com/job")
	require.NoError(t, err)
	c.Invalidate("https://example.com/job")
	_, err = c.JobPosting(context.Background(), "https://example.com/job")
	require.NoError(t, err)

	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCachedFetcher_DoesNotCacheFailures(t *testing.T) {
	inner := &countingFetcher{err: errors.New("boom")}
	c := NewCachedFetcher(inner, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := c.JobPosting(context.Background(), "https://example.com/job")
		assert.Error(t, err)
	}
	assert.Equal(t, int32(2), inner.calls.Load())
}
