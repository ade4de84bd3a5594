// Package am loads provgraph configuration from TOML files and PROVGRAPH_*
// environment variables.
package am

import (
	"github.com/teranos/provgraph/graph"
)

// Config represents the provgraph configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Schema   SchemaConfig   `mapstructure:"schema"`
	Explore  ExploreConfig  `mapstructure:"explore"`
	Log      LogConfig      `mapstructure:"log"`
	Graph    GraphConfig    `mapstructure:"graph"`
	MCP      MCPConfig      `mapstructure:"mcp"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SchemaConfig configures where operation schemas are loaded from
type SchemaConfig struct {
	Dir   string `mapstructure:"dir"`
	Watch bool   `mapstructure:"watch"` // Reload schemas when files in Dir change (long-running commands only)
}

// ExploreConfig configures lineage and frame exploration
type ExploreConfig struct {
	DefaultStrategy string `mapstructure:"default_strategy"` // Used when --strategy is omitted
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`  // Time budget per command or tool call
	MaxRadius       int    `mapstructure:"max_radius"`       // Largest +N accepted in a strategy
}

// LogConfig configures logging output
type LogConfig struct {
	JSON bool `mapstructure:"json"` // JSON encoder instead of console
}

// MCPConfig throttles tool calls of the MCP server
type MCPConfig struct {
	RateLimit float64 `mapstructure:"rate_limit"` // Tool calls per second; 0 disables throttling
	Burst     int     `mapstructure:"burst"`
}

// GraphConfig configures visualization export
type GraphConfig struct {
	Styles graph.Styles `mapstructure:"styles"`
}

// Config file names and directories
const (
	ConfigFileName = "am.toml"
	UserConfigDir  = ".provgraph"
	SystemConfig   = "/etc/provgraph/am.toml"
	EnvPrefix      = "PROVGRAPH"
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
