package resilience

import (
	"sync"
	"time"

	"github.com/deckforge/deckforge/core"
)

// CircuitState is the three-state machine classic to the circuit
// breaker pattern.
type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrorClassifier decides whether an error should count toward the
// breaker's failure threshold.
type ErrorClassifier func(error) bool

// DefaultErrorClassifier excludes configuration errors (user/caller
// mistakes, not upstream health signals) from tripping the breaker.
func DefaultErrorClassifier(err error) bool {
	if err == nil {
		return false
	}
	return !core.IsConfigurationError(err)
}

// CircuitBreakerConfig configures a CircuitBreaker. Trimmed from the
// teacher's sliding-window design to a fixed consecutive-failure
// threshold, sufficient for a single outbound dependency (the LLM
// provider) rather than a fleet of discovered services.
type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int
	SleepWindow      time.Duration
	HalfOpenRequests int
	ErrorClassifier  ErrorClassifier
	Logger           core.Logger
}

func DefaultCircuitBreakerConfig(name string) *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		SleepWindow:      30 * time.Second,
		HalfOpenRequests: 2,
		ErrorClassifier:  DefaultErrorClassifier,
		Logger:           &core.NoOpLogger{},
	}
}

// CircuitBreaker implements closed/open/half-open request gating for
// one outbound dependency (spec.md §4.1.2: "upstream unavailable" path).
type CircuitBreaker struct {
	config *CircuitBreakerConfig

	mu              sync.Mutex
	state           CircuitState
	consecutiveFail int
	openedAt        time.Time
	halfOpenInFlight int
	halfOpenSuccess  int
}

func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = DefaultCircuitBreakerConfig("default")
	}
	if config.ErrorClassifier == nil {
		config.ErrorClassifier = DefaultErrorClassifier
	}
	if config.Logger == nil {
		config.Logger = &core.NoOpLogger{}
	}
	return &CircuitBreaker{config: config, state: StateClosed}
}

// CanExecute reports whether a new call should be attempted, advancing
// open -> half-open once the sleep window has elapsed.
func (cb *CircuitBreaker) CanExecute() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(cb.openedAt) >= cb.config.SleepWindow {
			cb.state = StateHalfOpen
			cb.halfOpenInFlight = 0
			cb.halfOpenSuccess = 0
			cb.config.Logger.Info("circuit breaker half-open", map[string]interface{}{"name": cb.config.Name})
			return cb.admitHalfOpenLocked()
		}
		return false
	case StateHalfOpen:
		return cb.admitHalfOpenLocked()
	}
	return false
}

func (cb *CircuitBreaker) admitHalfOpenLocked() bool {
	if cb.halfOpenInFlight >= cb.config.HalfOpenRequests {
		return false
	}
	cb.halfOpenInFlight++
	return true
}

// RecordSuccess counts a half-open probe success and closes the breaker
// once HalfOpenRequests probes have succeeded, or resets the failure
// counter (from closed).
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.halfOpenSuccess++
		if cb.halfOpenSuccess >= cb.config.HalfOpenRequests {
			cb.state = StateClosed
			cb.consecutiveFail = 0
			cb.config.Logger.Info("circuit breaker closed", map[string]interface{}{"name": cb.config.Name})
		}
	case StateClosed:
		cb.consecutiveFail = 0
	}
}

// RecordFailure reopens the breaker from half-open, or trips it from
// closed once the failure threshold is reached. err is passed through
// the configured ErrorClassifier; user errors are not counted.
func (cb *CircuitBreaker) RecordFailure(err error) {
	if !cb.config.ErrorClassifier(err) {
		return
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.state = StateOpen
		cb.openedAt = time.Now()
		cb.config.Logger.Error("circuit breaker reopened", map[string]interface{}{"name": cb.config.Name})
	case StateClosed:
		cb.consecutiveFail++
		if cb.consecutiveFail >= cb.config.FailureThreshold {
			cb.state = StateOpen
			cb.openedAt = time.Now()
			cb.config.Logger.Error("circuit breaker opened", map[string]interface{}{"name": cb.config.Name})
		}
	}
}

// State returns the breaker's current state, for diagnostics/tests.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
