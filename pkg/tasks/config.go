package tasks

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds task runner pool parameters.
type Config struct {
	Workers     int    `toml:"workers"`
	QueueSize   int    `toml:"queue_size"`
	TaskTimeout string `toml:"task_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Workers     string
	QueueSize   string
	TaskTimeout string
}

// TaskTimeoutDuration returns TaskTimeout as a time.Duration.
func (c *Config) TaskTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.TaskTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.QueueSize != 0 {
		c.QueueSize = overlay.QueueSize
	}
	if overlay.TaskTimeout != "" {
		c.TaskTimeout = overlay.TaskTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.Workers == 0 {
		c.Workers = 2
	}
	if c.QueueSize == 0 {
		c.QueueSize = 64
	}
	if c.TaskTimeout == "" {
		c.TaskTimeout = "120s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Workers != "" {
		if v := os.Getenv(env.Workers); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.Workers = n
			}
		}
	}
	if env.QueueSize != "" {
		if v := os.Getenv(env.QueueSize); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.QueueSize = n
			}
		}
	}
	if env.TaskTimeout != "" {
		if v := os.Getenv(env.TaskTimeout); v != "" {
			c.TaskTimeout = v
		}
	}
}

func (c *Config) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("queue_size must be positive")
	}
	if _, err := time.ParseDuration(c.TaskTimeout); err != nil {
		return fmt.Errorf("invalid task_timeout: %w", err)
	}
	return nil
}
