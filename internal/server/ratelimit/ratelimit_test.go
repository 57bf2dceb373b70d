package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ats-optimizer/internal/config"
)

func newTestLimiter(rps float64, burst int) (*Limiter, *time.Time) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(&Config{Enabled: true, RequestsPerSecond: rps, Burst: burst, Whitelist: map[string]bool{}})
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiter_Allow(t *testing.T) {
	l, _ := newTestLimiter(1, 3)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("127.0.0.1", CostDefault)
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 3, info.Limit)
		assert.Equal(t, 2-i, info.Remaining)
	}

	allowed, info := l.Allow("127.0.0.1", CostDefault)
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Equal(t, time.Second, info.RetryAfter)
	assert.Equal(t, 3*time.Second, info.ResetTime.Sub(l.now()))
}

func TestLimiter_Refill(t *testing.T) {
	l, now := newTestLimiter(1, 2)
	defer l.Stop()

	l.Allow("c", CostDefault)
	l.Allow("c", CostDefault)
	allowed, _ := l.Allow("c", CostDefault)
	require.False(t, allowed)

	*now = now.Add(time.Second)
	allowed, _ = l.Allow("c", CostDefault)
	assert.True(t, allowed)
	allowed, _ = l.Allow("c", CostDefault)
	assert.False(t, allowed)
}

func TestLimiter_Cost(t *testing.T) {
	l, _ := newTestLimiter(1, 5)
	defer l.Stop()

	allowed, info := l.Allow("c", CostAnalysis)
	require.True(t, allowed)
	assert.Equal(t, 2, info.Remaining)

	allowed, info = l.Allow("c", CostAnalysis)
	assert.False(t, allowed)
	assert.Equal(t, time.Second, info.RetryAfter)

	allowed, _ = l.Allow("c", CostDefault)
	assert.True(t, allowed, "cheaper request still fits")
}

func TestLimiter_CostAboveBurstIsCapped(t *testing.T) {
	l, _ := newTestLimiter(1, 2)
	defer l.Stop()

	allowed, _ := l.Allow("c", 10)
	assert.True(t, allowed)
}

func TestLimiter_FreeRequests(t *testing.T) {
	l, _ := newTestLimiter(1, 1)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("c", CostFree)
		assert.True(t, allowed)
	}
	assert.Equal(t, 0, l.Len())
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, 1)
	defer l.Stop()

	allowed, _ := l.Allow("a", CostDefault)
	assert.True(t, allowed)
	allowed, _ = l.Allow("a", CostDefault)
	assert.False(t, allowed)
	allowed, _ = l.Allow("b", CostDefault)
	assert.True(t, allowed)
	assert.Equal(t, 2, l.Len())
}

func TestLimiter_Whitelist(t *testing.T) {
	l, _ := newTestLimiter(1, 1)
	defer l.Stop()
	l.config.Whitelist["10.0.0.1"] = true

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("10.0.0.1", CostDefault)
		assert.True(t, allowed)
	}
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false, RequestsPerSecond: 1, Burst: 1})
	defer l.Stop()

	for i := 0; i < 5; i++ {
		allowed, info := l.Allow("c", CostAnalysis)
		assert.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(1, 50)
	defer l.Stop()

	var allowedCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("c", CostDefault); ok {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(50), allowedCount.Load())
}

func TestLimiter_Cleanup(t *testing.T) {
	l, now := newTestLimiter(1, 1)
	defer l.Stop()

	l.Allow("old", CostDefault)
	*now = now.Add(2 * time.Hour)
	l.Allow("new", CostDefault)

	l.cleanupBuckets(now.Add(-time.Hour))
	assert.Equal(t, 1, l.Len())
}

func TestLimiter_StopTwice(t *testing.T) {
	l := NewLimiter(nil)
	l.Stop()
	assert.NotPanics(t, l.Stop)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_WHITELIST", " 10.0.0.1, ,10.0.0.2")

	cfg := LoadConfig(config.RateLimit{RequestsPerSecond: 5, Burst: 20})

	assert.False(t, cfg.Enabled)
	assert.Equal(t, 5.0, cfg.RequestsPerSecond)
	assert.Equal(t, 20, cfg.Burst)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("RATE_LIMIT_WHITELIST", "")

	cfg := LoadConfig(config.RateLimit{})

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 2.0, cfg.RequestsPerSecond)
	assert.Equal(t, 10, cfg.Burst)
	assert.Empty(t, cfg.Whitelist)
}
