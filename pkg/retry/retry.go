package retry

import (
	"context"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

const (
	defaultAttempts = 5
	defaultDelay    = 2 * time.Second
)

// Policy bounds how often and how far apart an operation is retried.
type Policy struct {
	// Attempts counts the first call; 1 disables retrying.
	Attempts int
	// Delay is the wait before the first retry. Later waits double up to MaxDelay.
	Delay    time.Duration
	MaxDelay time.Duration
}

// DefaultPolicy matches the processor polling cadence: 5 attempts, 2s apart.
func DefaultPolicy() Policy {
	return Policy{Attempts: defaultAttempts, Delay: defaultDelay, MaxDelay: defaultDelay}
}

func (p Policy) normalized() Policy {
	if p.Attempts <= 0 {
		p.Attempts = defaultAttempts
	}
	if p.Delay <= 0 {
		p.Delay = defaultDelay
	}
	if p.MaxDelay < p.Delay {
		p.MaxDelay = p.Delay
	}
	return p
}

func (p Policy) backoff() goretry.Backoff {
	b := goretry.NewExponential(p.Delay)
	b = goretry.WithCappedDuration(p.MaxDelay, b)
	return goretry.WithMaxRetries(uint64(p.Attempts-1), b)
}

// Func is one attempt; attempt starts at 1.
type Func func(ctx context.Context, attempt int) error

// Do runs fn until it succeeds, returns a non-retryable error, the policy is
// exhausted, or ctx is done. Only errors wrapped with Retryable are retried.
func Do(ctx context.Context, policy Policy, fn Func) error {
	p := policy.normalized()
	attempt := 0
	return goretry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempt++
		return fn(ctx, attempt)
	})
}

// Retryable marks err as worth another attempt.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return goretry.RetryableError(err)
}
