package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvExtractionMaxPages      = "QUALIS_EXTRACTION_MAX_PAGES"
	EnvExtractionRetryAttempts = "QUALIS_EXTRACTION_RETRY_ATTEMPTS"
	EnvExtractionRetryBackoff  = "QUALIS_EXTRACTION_RETRY_BACKOFF"
)

// ExtractionConfig holds extraction pipeline parameters: the page cap that
// bounds rasterization cost and the retry policy for transient provider
// failures.
type ExtractionConfig struct {
	MaxPages      int    `toml:"max_pages"`
	RetryAttempts int    `toml:"retry_attempts"`
	RetryBackoff  string `toml:"retry_backoff"`
}

// RetryBackoffDuration returns RetryBackoff as a time.Duration.
func (c *ExtractionConfig) RetryBackoffDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryBackoff)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ExtractionConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ExtractionConfig) Merge(overlay *ExtractionConfig) {
	if overlay.MaxPages != 0 {
		c.MaxPages = overlay.MaxPages
	}
	if overlay.RetryAttempts != 0 {
		c.RetryAttempts = overlay.RetryAttempts
	}
	if overlay.RetryBackoff != "" {
		c.RetryBackoff = overlay.RetryBackoff
	}
}

func (c *ExtractionConfig) loadDefaults() {
	if c.MaxPages == 0 {
		c.MaxPages = 5
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = 3
	}
	if c.RetryBackoff == "" {
		c.RetryBackoff = "2s"
	}
}

func (c *ExtractionConfig) loadEnv() {
	if v := os.Getenv(EnvExtractionMaxPages); v != "" {
		if pages, err := strconv.Atoi(v); err == nil {
			c.MaxPages = pages
		}
	}
	if v := os.Getenv(EnvExtractionRetryAttempts); v != "" {
		if attempts, err := strconv.Atoi(v); err == nil {
			c.RetryAttempts = attempts
		}
	}
	if v := os.Getenv(EnvExtractionRetryBackoff); v != "" {
		c.RetryBackoff = v
	}
}

func (c *ExtractionConfig) validate() error {
	if c.MaxPages < 1 {
		return fmt.Errorf("invalid max_pages: %d", c.MaxPages)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("invalid retry_attempts: %d", c.RetryAttempts)
	}
	if _, err := time.ParseDuration(c.RetryBackoff); err != nil {
		return fmt.Errorf("invalid retry_backoff: %w", err)
	}
	return nil
}
