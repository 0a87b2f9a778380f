package resilience

import (
	"testing"
	"time"

	"github.com/deckforge/deckforge/core"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{
		Name:             "test",
		FailureThreshold: 2,
		SleepWindow:      time.Hour,
		HalfOpenRequests: 1,
		ErrorClassifier:  DefaultErrorClassifier,
	})

	if !cb.CanExecute() {
		t.Fatal("expected closed breaker to admit requests")
	}
	cb.RecordFailure(core.ErrUpstreamUnavailable)
	if cb.State() != StateClosed {
		t.Fatal("expected breaker to remain closed below threshold")
	}
	cb.RecordFailure(core.ErrUpstreamUnavailable)
	if cb.State() != StateOpen {
		t.Fatal("expected breaker to open at threshold")
	}
	if cb.CanExecute() {
		t.Fatal("expected open breaker to reject requests within sleep window")
	}
}

func TestCircuitBreakerIgnoresConfigurationErrors(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{
		Name: "test", FailureThreshold: 1, SleepWindow: time.Hour, HalfOpenRequests: 1,
		ErrorClassifier: DefaultErrorClassifier,
	})
	cb.RecordFailure(core.ErrInvalidConfiguration)
	if cb.State() != StateClosed {
		t.Fatal("expected configuration errors not to trip the breaker")
	}
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{
		Name: "test", FailureThreshold: 1, SleepWindow: time.Millisecond, HalfOpenRequests: 1,
		ErrorClassifier: DefaultErrorClassifier,
	})
	cb.RecordFailure(core.ErrUpstreamUnavailable)
	if cb.State() != StateOpen {
		t.Fatal("expected breaker to open")
	}

	time.Sleep(5 * time.Millisecond)
	if !cb.CanExecute() {
		t.Fatal("expected breaker to admit a half-open probe after sleep window")
	}
	if cb.State() != StateHalfOpen {
		t.Fatal("expected breaker to transition to half-open")
	}
	cb.RecordSuccess()
	if cb.State() != StateClosed {
		t.Fatal("expected breaker to close after successful half-open probe")
	}
}
