package core

import (
	"os"
	"strconv"
	"time"
)

// Config holds the recognized settings of spec.md §6.5 plus the ambient
// settings every package needs (logging, Redis URL, telemetry toggle).
// Precedence: defaults (lowest) < environment variables < functional
// options passed to NewConfig (highest).
type Config struct {
	// §6.5 quality-target configuration.
	TargetQuality   float64       `json:"target_quality"`
	MaxIterations   int           `json:"max_iterations"`
	PerStageTimeout time.Duration `json:"per_stage_timeout"`
	JobTimeout      time.Duration `json:"job_timeout"`
	Language        string        `json:"language"`

	// Ambient.
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
	RedisURL  string `json:"redis_url"`
	OTelOn    bool   `json:"otel_enabled"`

	Logger Logger `json:"-"`
}

// Option mutates a Config during construction.
type Option func(*Config) error

// NewConfig builds a Config from defaults, then environment variables,
// then the supplied options, in that precedence order.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		TargetQuality:   0.85,
		MaxIterations:   3,
		PerStageTimeout: 60 * time.Second,
		JobTimeout:      10 * time.Minute,
		Language:        "ko",
		LogLevel:        "INFO",
		LogFormat:       "text",
	}

	applyEnv(cfg)

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, &DeckError{Op: "core.NewConfig", Kind: "config", Err: err}
		}
	}

	if cfg.TargetQuality <= 0 || cfg.TargetQuality > 1 {
		return nil, &DeckError{Op: "core.NewConfig", Kind: "config", Err: ErrInvalidConfiguration, Message: "target_quality must be in (0,1]"}
	}
	if cfg.MaxIterations < 1 {
		return nil, &DeckError{Op: "core.NewConfig", Kind: "config", Err: ErrInvalidConfiguration, Message: "max_iterations must be >= 1"}
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DECKFORGE_TARGET_QUALITY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.TargetQuality = f
		}
	}
	if v := os.Getenv("DECKFORGE_MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxIterations = n
		}
	}
	if v := os.Getenv("DECKFORGE_PER_STAGE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PerStageTimeout = d
		}
	}
	if v := os.Getenv("DECKFORGE_JOB_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.JobTimeout = d
		}
	}
	if v := os.Getenv("DECKFORGE_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv("DECKFORGE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DECKFORGE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("DECKFORGE_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("DECKFORGE_OTEL_ENABLED"); v != "" {
		cfg.OTelOn = v == "true" || v == "1"
	}
}

// WithTargetQuality sets the Reviewer's passing threshold.
func WithTargetQuality(q float64) Option {
	return func(c *Config) error { c.TargetQuality = q; return nil }
}

// WithMaxIterations sets the maximum number of refinement passes.
func WithMaxIterations(n int) Option {
	return func(c *Config) error { c.MaxIterations = n; return nil }
}

// WithPerStageTimeout sets the default per-stage deadline.
func WithPerStageTimeout(d time.Duration) Option {
	return func(c *Config) error { c.PerStageTimeout = d; return nil }
}

// WithJobTimeout sets the outer job deadline.
func WithJobTimeout(d time.Duration) Option {
	return func(c *Config) error { c.JobTimeout = d; return nil }
}

// WithLanguage sets the BCP-47-ish language tag driving prompts and
// number formatting.
func WithLanguage(lang string) Option {
	return func(c *Config) error { c.Language = lang; return nil }
}

// WithRedisURL sets the connection string for the progress-sink store.
func WithRedisURL(url string) Option {
	return func(c *Config) error { c.RedisURL = url; return nil }
}

// WithLogger overrides the default logger.
func WithLogger(logger Logger) Option {
	return func(c *Config) error { c.Logger = logger; return nil }
}
