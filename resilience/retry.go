// Package resilience provides retry-with-backoff and circuit-breaker
// primitives shared by the llm client and any other outbound call the
// pipeline makes.
package resilience

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/deckforge/deckforge/core"
)

// RetryConfig configures Retry's backoff behavior.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterEnabled bool
}

// DefaultRetryConfig matches the llm client's default: 3 attempts,
// 100ms initial delay, 2x backoff (spec.md §4.1.2).
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		JitterEnabled: true,
	}
}

// Retry executes fn up to config.MaxAttempts times with exponential
// backoff, stopping early on ctx cancellation. It does not itself
// distinguish transient from non-transient errors; callers should wrap
// fn to return immediately (without consuming an attempt's benefit) on
// a non-transient error if early exit is desired.
func Retry(ctx context.Context, config *RetryConfig, fn func() error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == config.MaxAttempts {
			break
		}

		if attempt > 1 {
			delay = time.Duration(float64(delay) * config.BackoffFactor)
			if delay > config.MaxDelay {
				delay = config.MaxDelay
			}
		}

		if config.JitterEnabled {
			jitter := time.Duration(float64(delay) * 0.1 * math.Sin(float64(attempt)))
			delay += jitter
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("max retry attempts (%d) exceeded for %v: %w", config.MaxAttempts, lastErr, core.ErrMaxRetriesExceeded)
}

// RetryTransientOnly runs fn under Retry, but a non-transient error
// (per classify) aborts immediately without spending remaining attempts.
func RetryTransientOnly(ctx context.Context, config *RetryConfig, classify func(error) bool, fn func() error) error {
	var final error
	err := Retry(ctx, config, func() error {
		e := fn()
		if e == nil {
			final = nil
			return nil
		}
		if !classify(e) {
			final = e
			return nil // stop retrying; treat as "succeeded" from Retry's view
		}
		final = e
		return e
	})
	if err != nil {
		return err
	}
	return final
}
