package core

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the subset of Config recognized settings that may be
// supplied via an optional YAML file. The file is applied through the
// WithConfigFile option, so its non-zero values take precedence over
// environment variables and defaults.
type FileConfig struct {
	TargetQuality   float64 `yaml:"target_quality"`
	MaxIterations   int     `yaml:"max_iterations"`
	PerStageTimeout string  `yaml:"per_stage_timeout"`
	JobTimeout      string  `yaml:"job_timeout"`
	Language        string  `yaml:"language"`
	RedisURL        string  `yaml:"redis_url"`
}

// WithConfigFile loads recognized settings from a YAML file and applies
// them as an Option. A missing file is not an error (the option is a
// no-op); a malformed file is.
func WithConfigFile(path string) Option {
	return func(c *Config) error {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return &DeckError{Op: "core.WithConfigFile", Kind: "config", Err: err}
		}

		var fc FileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return &DeckError{Op: "core.WithConfigFile", Kind: "config", Err: ErrInvalidConfiguration, Message: err.Error()}
		}

		if fc.TargetQuality > 0 {
			c.TargetQuality = fc.TargetQuality
		}
		if fc.MaxIterations > 0 {
			c.MaxIterations = fc.MaxIterations
		}
		if fc.PerStageTimeout != "" {
			if d, err := time.ParseDuration(fc.PerStageTimeout); err == nil {
				c.PerStageTimeout = d
			}
		}
		if fc.JobTimeout != "" {
			if d, err := time.ParseDuration(fc.JobTimeout); err == nil {
				c.JobTimeout = d
			}
		}
		if fc.Language != "" {
			c.Language = fc.Language
		}
		if fc.RedisURL != "" {
			c.RedisURL = fc.RedisURL
		}
		return nil
	}
}
