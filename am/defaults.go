package am

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Default values
const (
	DefaultDatabasePath   = "provgraph.db"
	DefaultSchemaDir      = "schemas"
	DefaultStrategy       = "ancestors"
	DefaultTimeoutSeconds = 30
	DefaultMaxRadius      = 8
	DefaultMCPRateLimit   = 10.0
	DefaultMCPBurst       = 5
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)

	v.SetDefault("schema.dir", DefaultSchemaDir)
	v.SetDefault("schema.watch", false)

	v.SetDefault("explore.default_strategy", DefaultStrategy)
	v.SetDefault("explore.timeout_seconds", DefaultTimeoutSeconds)
	v.SetDefault("explore.max_radius", DefaultMaxRadius)

	v.SetDefault("log.json", false)

	v.SetDefault("mcp.rate_limit", DefaultMCPRateLimit)
	v.SetDefault("mcp.burst", DefaultMCPBurst)
}

// BindEnvVars explicitly binds the settings most often overridden per shell
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("database.path", EnvPrefix+"_DATABASE_PATH")
	v.BindEnv("schema.dir", EnvPrefix+"_SCHEMA_DIR")
}

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return DefaultDatabasePath
	}
	return c.Database.Path
}

// GetSchemaDir returns the configured schema directory
func (c *Config) GetSchemaDir() string {
	if c.Schema.Dir == "" {
		return DefaultSchemaDir
	}
	return c.Schema.Dir
}

// GetTimeout returns the per-command time budget
func (c *Config) GetTimeout() time.Duration {
	if c.Explore.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.Explore.TimeoutSeconds) * time.Second
}

// GetDefaultStrategy returns the strategy used when none is given
func (c *Config) GetDefaultStrategy() string {
	if c.Explore.DefaultStrategy == "" {
		return DefaultStrategy
	}
	return c.Explore.DefaultStrategy
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Database: %s, Schema: %s, Explore: {Strategy: %s, Timeout: %ds}}",
		c.Database.Path, c.Schema.Dir, c.Explore.DefaultStrategy, c.Explore.TimeoutSeconds)
}
