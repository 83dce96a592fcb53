// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"io"
	"time"
)

const (
	defaultRetryTimes    = 3
	defaultRetryBaseWait = 800 * time.Millisecond
	defaultRetryMaxWait  = time.Minute
	defaultAttempt       = 5 * time.Second
)

// Config configures the standard pipeline.
type Config struct {
	// ConnectionString holds the signing credential, in the form
	// accepted by auth.ParseConnectionString. If empty, requests are
	// not signed.
	ConnectionString string `yaml:"connection_string" mapstructure:"connection_string"`

	// ClientRequestIDHeader names the header carrying each request's
	// correlation id. Defaults to x-ms-client-request-id.
	ClientRequestIDHeader string `yaml:"client_request_id_header" mapstructure:"client_request_id_header"`

	// Buffered causes response bodies to be read in full by the
	// transport, making them seekable.
	Buffered bool `yaml:"buffered" mapstructure:"buffered"`

	Retry   RetryConfig   `yaml:"retry" mapstructure:"retry"`
	Timeout TimeoutConfig `yaml:"timeout" mapstructure:"timeout"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
}

// RetryConfig configures the retry policy.
type RetryConfig struct {
	Disabled bool `yaml:"disabled" mapstructure:"disabled"`
	// Times is the maximum number of retries after the first attempt.
	Times    int           `yaml:"times" mapstructure:"times"`
	BaseWait time.Duration `yaml:"base_wait" mapstructure:"base_wait"`
	MaxWait  time.Duration `yaml:"max_wait" mapstructure:"max_wait"`
	// StatusCodes lists the retryable response statuses. Defaults to
	// 408, 429, 500, 502, 503 and 504.
	StatusCodes []int `yaml:"status_codes" mapstructure:"status_codes"`
}

// TimeoutConfig configures the per-attempt timeout policy.
type TimeoutConfig struct {
	// Attempt is the usual attempt timeout. A negative value disables
	// the deadline.
	Attempt time.Duration `yaml:"attempt" mapstructure:"attempt"`
	// After holds the timeouts used after an attempt timed out. See
	// timeout.Adaptive.
	After []time.Duration `yaml:"after" mapstructure:"after"`
}

// LoggingConfig configures the diagnostics logger.
type LoggingConfig struct {
	Disabled bool   `yaml:"disabled" mapstructure:"disabled"`
	Level    string `yaml:"level" mapstructure:"level"`
	Format   string `yaml:"format" mapstructure:"format"`
	Output   string `yaml:"output" mapstructure:"output"`
	// Content enables content records for successful calls.
	Content bool `yaml:"content" mapstructure:"content"`
	// ErrorContent enables content records for error responses.
	ErrorContent bool `yaml:"error_content" mapstructure:"error_content"`

	// Writer, if set, replaces Output.
	Writer io.Writer `yaml:"-" mapstructure:"-"`
}

// TracingConfig configures the tracing policy.
type TracingConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// ApplyDefaults fills in zero-value fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.Retry.Times == 0 {
		c.Retry.Times = defaultRetryTimes
	}
	if c.Retry.BaseWait == 0 {
		c.Retry.BaseWait = defaultRetryBaseWait
	}
	if c.Retry.MaxWait == 0 {
		c.Retry.MaxWait = defaultRetryMaxWait
	}
	if len(c.Retry.StatusCodes) == 0 {
		c.Retry.StatusCodes = []int{408, 429, 500, 502, 503, 504}
	}
	if c.Timeout.Attempt == 0 {
		c.Timeout.Attempt = defaultAttempt
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Retry.Times < 0 {
		return fmt.Errorf("httpipe/config: retry.times must not be negative (got: %d)", c.Retry.Times)
	}
	if c.Retry.BaseWait <= 0 {
		return fmt.Errorf("httpipe/config: retry.base_wait must be positive (got: %s)", c.Retry.BaseWait)
	}
	if c.Retry.MaxWait < c.Retry.BaseWait {
		return fmt.Errorf("httpipe/config: retry.max_wait must be at least retry.base_wait (got: %s)", c.Retry.MaxWait)
	}
	for _, s := range c.Retry.StatusCodes {
		if s < 100 || s > 999 {
			return fmt.Errorf("httpipe/config: invalid retry status code %d", s)
		}
	}
	for _, d := range c.Timeout.After {
		if d <= 0 {
			return fmt.Errorf("httpipe/config: timeout.after values must be positive (got: %s)", d)
		}
	}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("httpipe/config: logging.level must be one of %v (got: %s)", validLevels, c.Logging.Level)
	}
	if !contains(validFormats, c.Logging.Format) {
		return fmt.Errorf("httpipe/config: logging.format must be one of %v (got: %s)", validFormats, c.Logging.Format)
	}
	if c.Logging.output() == nil {
		return fmt.Errorf("httpipe/config: logging.output must be one of %v (got: %s)", validOutputs, c.Logging.Output)
	}
	return nil
}

var (
	validLevels  = []string{"trace", "debug", "info", "warn", "error", "disabled"}
	validFormats = []string{"json", "console"}
	validOutputs = []string{"stdout", "stderr", "discard"}
)

func contains(slice []string, val string) bool {
	for _, s := range slice {
		if s == val {
			return true
		}
	}
	return false
}
