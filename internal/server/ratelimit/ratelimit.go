// Package ratelimit provides per-client request limiting on top of token buckets.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter manages one token bucket per client.
type Limiter struct {
	config *Config
	now    func() time.Time

	mu         sync.Mutex
	buckets    map[string]*rate.Limiter
	lastAccess map[string]time.Time

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}

	limiter := &Limiter{
		config:     config,
		now:        time.Now,
		buckets:    make(map[string]*rate.Limiter),
		lastAccess: make(map[string]time.Time),
	}

	if config.Enabled && config.CleanupInterval > 0 {
		limiter.cleanupTicker = time.NewTicker(config.CleanupInterval)
		limiter.cleanupStop = make(chan struct{})
		go limiter.cleanup()
	}

	return limiter
}

// Allow checks whether a request of the given cost from clientID may proceed and
// consumes cost tokens when it may. A cost of zero is never limited; a cost above
// the burst is charged as the full burst.
func (l *Limiter) Allow(clientID string, cost int) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] || cost <= 0 {
		return true, Info{Allowed: true}
	}
	if cost > l.config.Burst {
		cost = l.config.Burst
	}

	now := l.now()
	bucket := l.getBucket(clientID, now)

	allowed := bucket.AllowN(now, cost)
	tokens := bucket.TokensAt(now)

	info := Info{
		Allowed:   allowed,
		Limit:     l.config.Burst,
		Remaining: max(0, int(math.Floor(tokens))),
		ResetTime: now.Add(l.secondsFor(float64(l.config.Burst) - tokens)),
	}
	if !allowed {
		info.RetryAfter = l.secondsFor(float64(cost) - tokens)
	}
	return allowed, info
}

// secondsFor returns how long it takes to refill n tokens.
func (l *Limiter) secondsFor(n float64) time.Duration {
	if n <= 0 || l.config.RequestsPerSecond <= 0 {
		return 0
	}
	return time.Duration(math.Ceil(n / l.config.RequestsPerSecond * float64(time.Second)))
}

// getBucket gets or creates the token bucket for a client.
func (l *Limiter) getBucket(clientID string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastAccess[clientID] = now
	if bucket, ok := l.buckets[clientID]; ok {
		return bucket
	}
	bucket := rate.NewLimiter(rate.Limit(l.config.RequestsPerSecond), l.config.Burst)
	l.buckets[clientID] = bucket
	return bucket
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// cleanup removes old unused buckets to prevent memory leaks.
func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanupBuckets(l.now().Add(-l.config.IdleTimeout))
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupBuckets removes buckets that have not been used since cutoff.
func (l *Limiter) cleanupBuckets(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, last := range l.lastAccess {
		if last.Before(cutoff) {
			delete(l.buckets, key)
			delete(l.lastAccess, key)
		}
	}
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupTicker != nil {
			l.cleanupTicker.Stop()
		}
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}
