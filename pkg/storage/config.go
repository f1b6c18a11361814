package storage

import (
	"fmt"
	"os"
)

// Supported storage drivers.
const (
	DriverAzure = "azure"
	DriverLocal = "local"
)

// Config holds storage driver selection and driver-specific parameters.
// ContainerName and ConnectionString apply to the azure driver;
// LocalRoot applies to the local driver.
type Config struct {
	Driver           string `toml:"driver"`
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	LocalRoot        string `toml:"local_root"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Driver           string
	ContainerName    string
	ConnectionString string
	LocalRoot        string
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
	if overlay.Driver != "" {
		c.Driver = overlay.Driver
	}
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.LocalRoot != "" {
		c.LocalRoot = overlay.LocalRoot
	}
}

func (c *Config) loadDefaults() {
	if c.Driver == "" {
		c.Driver = DriverLocal
	}
	if c.ContainerName == "" {
		c.ContainerName = "audits"
	}
	if c.LocalRoot == "" {
		c.LocalRoot = "data/blobs"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Driver != "" {
		if v := os.Getenv(env.Driver); v != "" {
			c.Driver = v
		}
	}
	if env.ContainerName != "" {
		if v := os.Getenv(env.ContainerName); v != "" {
			c.ContainerName = v
		}
	}
	if env.ConnectionString != "" {
		if v := os.Getenv(env.ConnectionString); v != "" {
			c.ConnectionString = v
		}
	}
	if env.LocalRoot != "" {
		if v := os.Getenv(env.LocalRoot); v != "" {
			c.LocalRoot = v
		}
	}
}

func (c *Config) validate() error {
	switch c.Driver {
	case DriverAzure:
		if c.ContainerName == "" {
			return fmt.Errorf("container_name required")
		}
		if c.ConnectionString == "" {
			return fmt.Errorf("connection_string required")
		}
	case DriverLocal:
		if c.LocalRoot == "" {
			return fmt.Errorf("local_root required")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Driver)
	}
	return nil
}
