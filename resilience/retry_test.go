package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deckforge/deckforge/core"
)

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	cfg := &RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1}
	err := Retry(context.Background(), cfg, func() error {
		attempts++
		if attempts < 3 {
			return core.ErrUpstreamUnavailable
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	cfg := &RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1}
	err := Retry(context.Background(), cfg, func() error {
		return core.ErrUpstreamUnavailable
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if !errors.Is(err, core.ErrMaxRetriesExceeded) {
		t.Fatalf("expected wrapped ErrMaxRetriesExceeded, got %v", err)
	}
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := &RetryConfig{MaxAttempts: 5, InitialDelay: time.Second}
	err := Retry(ctx, cfg, func() error { return core.ErrUpstreamUnavailable })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRetryTransientOnlyStopsOnNonTransient(t *testing.T) {
	attempts := 0
	cfg := &RetryConfig{MaxAttempts: 5, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1}
	err := RetryTransientOnly(context.Background(), cfg, core.IsTransient, func() error {
		attempts++
		return core.ErrInvalidConfiguration
	})
	if !errors.Is(err, core.ErrInvalidConfiguration) {
		t.Fatalf("expected non-transient error passthrough, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected single attempt for non-transient error, got %d", attempts)
	}
}
