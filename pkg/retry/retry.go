package retry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Policy is a bounded retry budget with a fixed delay between attempts
type Policy struct {
	// MaxAttempts is the number of times the condition is evaluated
	MaxAttempts int

	// Delay is slept after every failed attempt
	Delay time.Duration
}

// DefaultPolicy returns the overlay readiness budget: 6 attempts, 10s apart
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 6,
		Delay:       10 * time.Second,
	}
}

// Validate checks the policy is usable
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %v", p.Delay)
	}
	return nil
}

// Clock sleeps. Production code uses RealClock; tests inject FakeClock.
type Clock interface {
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in the
	// latter case
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock sleeps on wall-clock time
type RealClock struct{}

// Sleep waits for d or ctx cancellation
func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FakeClock records requested sleeps without blocking
type FakeClock struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

// Sleep records d and returns immediately
func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.mu.Unlock()
	return nil
}

// Sleeps returns every recorded sleep in call order
func (c *FakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}

// Total returns the sum of all recorded sleeps
func (c *FakeClock) Total() time.Duration {
	var total time.Duration
	for _, d := range c.Sleeps() {
		total += d
	}
	return total
}

// ErrExhausted is returned by Poll when every attempt failed
var ErrExhausted = errors.New("retry attempts exhausted")

// Poll evaluates condition until it returns true or the policy's budget is
// spent. After every false result it sleeps Delay, including the last one.
// onRetry, if non-nil, is called with the 1-based attempt number before
// each sleep.
func Poll(ctx context.Context, p Policy, clock Clock, condition func(ctx context.Context) bool, onRetry func(attempt int)) error {
	if err := p.Validate(); err != nil {
		return err
	}

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if condition(ctx) {
			return nil
		}
		if onRetry != nil {
			onRetry(attempt)
		}
		if err := clock.Sleep(ctx, p.Delay); err != nil {
			return err
		}
	}

	return ErrExhausted
}
