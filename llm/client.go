// Package llm provides the single abstraction every stage uses to talk
// to a generative model: a provider-agnostic Client wrapping timeout,
// retry, and circuit-breaker policy, plus the free-form-reply JSON
// extraction procedure spec.md §4.1.1 requires of every stage that
// parses a model reply.
package llm

import (
	"context"
	"errors"
	"time"

	"github.com/deckforge/deckforge/core"
	"github.com/deckforge/deckforge/resilience"
)

// Options configures one Generate call, mirroring the teacher's
// AIOptions (core/interfaces.go).
type Options struct {
	Model        string
	Temperature  float32
	MaxTokens    int
	SystemPrompt string
}

// Response is a provider's reply, mirroring the teacher's AIResponse.
type Response struct {
	Content string
	Model   string
}

// Provider is the minimal interface a concrete model backend
// implements (spec.md §3.1 "LLM Client abstraction").
type Provider interface {
	Generate(ctx context.Context, prompt string, opts Options) (Response, error)
}

// TemporaryError is implemented by provider errors that distinguish
// transient failures (network blips, 5xx, 429) from permanent ones
// (4xx other than 429, malformed request) — the convention the
// stdlib's net package itself uses.
type TemporaryError interface {
	Temporary() bool
}

// ClientConfig configures a Client.
type ClientConfig struct {
	Timeout       time.Duration
	RetryConfig   *resilience.RetryConfig
	CircuitConfig *resilience.CircuitBreakerConfig
	Logger        core.Logger
}

// DefaultClientConfig matches spec.md §4.1.2: 60s timeout, up to 3 attempts.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:       60 * time.Second,
		RetryConfig:   resilience.DefaultRetryConfig(),
		CircuitConfig: resilience.DefaultCircuitBreakerConfig("llm"),
		Logger:        core.NoOpLogger{},
	}
}

// Client wraps a Provider with a per-call timeout, exponential-backoff
// retry over transient failures, and a circuit breaker shared across
// calls (spec.md §4.1.2).
type Client struct {
	provider Provider
	config   ClientConfig
	breaker  *resilience.CircuitBreaker
}

// NewClient builds a Client around provider. A zero ClientConfig value
// is replaced with DefaultClientConfig.
func NewClient(provider Provider, config ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.RetryConfig == nil {
		config.RetryConfig = resilience.DefaultRetryConfig()
	}
	if config.CircuitConfig == nil {
		config.CircuitConfig = resilience.DefaultCircuitBreakerConfig("llm")
	}
	if config.Logger == nil {
		config.Logger = core.NoOpLogger{}
	}
	return &Client{
		provider: provider,
		config:   config,
		breaker:  resilience.NewCircuitBreaker(config.CircuitConfig),
	}
}

// Generate calls the provider with a bounded timeout, retrying
// transient failures up to the configured attempt count. A circuit
// breaker trip short-circuits to ErrCircuitBreakerOpen without calling
// the provider.
func (c *Client) Generate(ctx context.Context, prompt string, opts Options) (Response, error) {
	var resp Response
	var callErr error

	err := resilience.RetryTransientOnly(ctx, c.config.RetryConfig, isClassifiedTransient, func() error {
		if !c.breaker.CanExecute() {
			callErr = core.ErrCircuitBreakerOpen
			return callErr
		}

		callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()

		r, err := c.provider.Generate(callCtx, prompt, opts)
		if err != nil {
			c.breaker.RecordFailure(err)
			callErr = classifyProviderError(err)
			return callErr
		}

		c.breaker.RecordSuccess()
		resp = r
		callErr = nil
		return nil
	})

	if err != nil {
		return Response{}, err
	}
	if callErr != nil {
		return Response{}, callErr
	}
	return resp, nil
}

// isClassifiedTransient distinguishes retryable sentinel errors from
// everything else, the boundary resilience.RetryTransientOnly uses to
// stop early. A circuit-open rejection is deliberately excluded: the
// breaker's sleep window vastly exceeds this call's retry backoff, so
// retrying within the same Generate call cannot help and would only
// bury the circuit-open error under a "max retries exceeded" wrapper.
func isClassifiedTransient(err error) bool {
	if errors.Is(err, core.ErrCircuitBreakerOpen) {
		return false
	}
	return core.IsTransient(err)
}

// classifyProviderError maps a raw provider error onto the client's
// sentinel taxonomy (spec.md §7): timeouts and errors the provider
// marks Temporary() are transient and eligible for retry; everything
// else is treated as permanent.
func classifyProviderError(err error) error {
	if isTimeoutErr(err) {
		return core.ErrTimeout
	}
	if te, ok := err.(TemporaryError); ok {
		if te.Temporary() {
			return core.ErrUpstreamUnavailable
		}
		return err
	}
	// Unclassified errors default to transient, matching the teacher's
	// ExecuteWithRetry behavior of retrying anything that isn't an
	// explicit non-retryable client error.
	return core.ErrUpstreamUnavailable
}

func isTimeoutErr(err error) bool {
	t, ok := err.(interface{ Timeout() bool })
	return ok && t.Timeout()
}
