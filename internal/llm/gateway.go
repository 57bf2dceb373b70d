package llm

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Policy bounds retries for calls to the content service.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BaseDelay is the wait before the first retry; it doubles on each retry.
	BaseDelay time.Duration
	// MaxDelay caps a single wait.
	MaxDelay time.Duration
	// AttemptTimeout is the per-attempt allowance used to derive the overall deadline.
	// Zero disables the deadline.
	AttemptTimeout time.Duration
}

// DefaultPolicy returns three retries with 1s, 2s, 4s waits.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:     3,
		BaseDelay:      time.Second,
		MaxDelay:       30 * time.Second,
		AttemptTimeout: 90 * time.Second,
	}
}

// Backoff returns the wait before the given retry (1-based).
func (p Policy) Backoff(retry int) time.Duration {
	if retry < 1 || p.BaseDelay <= 0 {
		return 0
	}
	delay := p.BaseDelay
	for i := 1; i < retry; i++ {
		delay *= 2
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// Deadline is the total time a call may take including every wait.
func (p Policy) Deadline() time.Duration {
	if p.AttemptTimeout <= 0 {
		return 0
	}
	total := p.AttemptTimeout * time.Duration(p.MaxRetries+1)
	for retry := 1; retry <= p.MaxRetries; retry++ {
		total += p.Backoff(retry)
	}
	return total
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Gateway wraps every outbound call with classification and bounded exponential backoff.
type Gateway struct {
	policy Policy
	sleep  Sleeper
	logger *zap.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithSleeper replaces the wait function; tests use it to record delays.
func WithSleeper(s Sleeper) GatewayOption {
	return func(g *Gateway) {
		g.sleep = s
	}
}

// NewGateway creates a gateway with the given policy.
func NewGateway(policy Policy, logger *zap.Logger, opts ...GatewayOption) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gateway{
		policy: policy,
		sleep:  sleepContext,
		logger: logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Policy returns the gateway's retry policy.
func (g *Gateway) Policy() Policy {
	return g.policy
}

// Do runs op until it succeeds, fails fatally, or exhausts the retry budget.
// A transient failure on the last attempt is reported as *RetryExhaustedError.
func (g *Gateway) Do(ctx context.Context, operation string, op func(ctx context.Context) error) error {
	if deadline := g.policy.Deadline(); deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	attempts := g.policy.MaxRetries + 1
	for attempt := 1; ; attempt++ {
		err := op(ctx)
		if err == nil {
			if attempt > 1 {
				g.logger.Info("call recovered after retry",
					zap.String("operation", operation),
					zap.Int("attempt", attempt))
			}
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return &FatalError{Operation: operation, Cause: errors.Join(ctxErr, err)}
		}

		if Classify(err) == ClassFatal {
			g.logger.Debug("call failed fatally",
				zap.String("operation", operation),
				zap.Int("attempt", attempt),
				zap.Error(err))
			var fatal *FatalError
			if errors.As(err, &fatal) {
				return err
			}
			return &FatalError{Operation: operation, Cause: err}
		}

		if attempt >= attempts {
			g.logger.Warn("retries exhausted",
				zap.String("operation", operation),
				zap.Int("attempts", attempt),
				zap.Error(err))
			return &RetryExhaustedError{Operation: operation, Attempts: attempt, Cause: err}
		}

		delay := g.policy.Backoff(attempt)
		g.logger.Warn("transient failure, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
		if err := g.sleep(ctx, delay); err != nil {
			return &FatalError{Operation: operation, Cause: err}
		}
	}
}

// Invoke is Do for operations that produce a value.
func Invoke[T any](ctx context.Context, g *Gateway, operation string, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := g.Do(ctx, operation, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
