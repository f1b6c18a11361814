package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/vantagesource/qualis/pkg/database"
	"github.com/vantagesource/qualis/pkg/storage"
	"github.com/vantagesource/qualis/pkg/tasks"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvQualisEnv             = "QUALIS_ENV"
	EnvQualisShutdownTimeout = "QUALIS_SHUTDOWN_TIMEOUT"
	EnvQualisVersion         = "QUALIS_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "QUALIS_DB_HOST",
	Port:            "QUALIS_DB_PORT",
	Name:            "QUALIS_DB_NAME",
	User:            "QUALIS_DB_USER",
	Password:        "QUALIS_DB_PASSWORD",
	SSLMode:         "QUALIS_DB_SSL_MODE",
	MaxOpenConns:    "QUALIS_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "QUALIS_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "QUALIS_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "QUALIS_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Driver:           "QUALIS_STORAGE_DRIVER",
	ContainerName:    "QUALIS_STORAGE_CONTAINER_NAME",
	ConnectionString: "QUALIS_STORAGE_CONNECTION_STRING",
	LocalRoot:        "QUALIS_STORAGE_LOCAL_ROOT",
}

var tasksEnv = &tasks.Env{
	Workers:     "QUALIS_TASKS_WORKERS",
	QueueSize:   "QUALIS_TASKS_QUEUE_SIZE",
	TaskTimeout: "QUALIS_TASKS_TASK_TIMEOUT",
}

// Config is the root configuration for the Qualis service.
type Config struct {
	Server          ServerConfig         `toml:"server"`
	Database        database.Config      `toml:"database"`
	Storage         storage.Config       `toml:"storage"`
	API             APIConfig            `toml:"api"`
	Agent           gaconfig.AgentConfig `toml:"agent"`
	Extraction      ExtractionConfig     `toml:"extraction"`
	Tasks           tasks.Config         `toml:"tasks"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the QUALIS_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvQualisEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Agent.Merge(&overlay.Agent)
	c.Extraction.Merge(&overlay.Extraction)
	c.Tasks.Merge(&overlay.Tasks)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := FinalizeAgent(&c.Agent); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.Extraction.Finalize(); err != nil {
		return fmt.Errorf("extraction: %w", err)
	}
	if err := c.Tasks.Finalize(tasksEnv); err != nil {
		return fmt.Errorf("tasks: %w", err)
	}
	return nil
}
func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvQualisShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvQualisVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvQualisEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
