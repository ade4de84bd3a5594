package am

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/teranos/provgraph/errors"
)

// layer is one config file found on the search path.
type layer struct {
	path   string
	source ConfigSource
}

// snapshot is the merged view of defaults, config files and environment.
// Load caches one per process until Reset.
type snapshot struct {
	v       *viper.Viper
	layers  []layer
	origins map[string]SourceInfo // flattened key -> file that last set it
	cfg     *Config
}

var (
	mu      sync.Mutex
	current *snapshot
)

// Load returns the merged configuration, validated. The result is cached
// until Reset.
func Load() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()

	snap := currentSnapshot()
	if snap.cfg == nil {
		cfg, err := LoadWithViper(snap.v)
		if err != nil {
			return nil, err
		}
		snap.cfg = cfg
	}
	return snap.cfg, nil
}

// LoadWithViper decodes and validates the settings held by v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads one config file on top of defaults, ignoring the search
// path and environment.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	if err := readTOML(v, configPath); err != nil {
		return nil, err
	}
	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, errors.Wrapf(err, "config file %s", configPath)
	}
	return cfg, nil
}

// Reset drops the cached snapshot; the next call re-reads every layer.
func Reset() {
	mu.Lock()
	current = nil
	mu.Unlock()
}

// GetViper returns the merged Viper instance
func GetViper() *viper.Viper {
	mu.Lock()
	defer mu.Unlock()
	return currentSnapshot().v
}

// Get returns a configuration value using dot notation
func Get(key string) interface{} {
	return GetViper().Get(key)
}

// GetString returns a configuration value as string using dot notation
func GetString(key string) string {
	return GetViper().GetString(key)
}

// ConfigFileUsed returns the highest-precedence config file that was merged,
// or "" when only defaults and environment apply.
func ConfigFileUsed() string {
	mu.Lock()
	defer mu.Unlock()
	layers := currentSnapshot().layers
	if len(layers) == 0 {
		return ""
	}
	return layers[len(layers)-1].path
}

// currentSnapshot builds the snapshot on first use. Callers hold mu.
func currentSnapshot() *snapshot {
	if current != nil {
		return current
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	BindEnvVars(v)
	SetDefaults(v)

	snap := &snapshot{v: v, origins: make(map[string]SourceInfo)}
	for _, l := range searchPath() {
		file := viper.New()
		if err := readTOML(file, l.path); err != nil {
			continue
		}
		if err := v.MergeConfigMap(file.AllSettings()); err != nil {
			continue
		}
		for _, key := range file.AllKeys() {
			snap.origins[key] = SourceInfo{Source: l.source, Path: l.path}
		}
		snap.layers = append(snap.layers, l)
	}
	current = snap
	return snap
}

// searchPath lists existing config files from lowest to highest precedence:
// system, user, then the nearest am.toml above the working directory.
func searchPath() []layer {
	var out []layer
	add := func(path string, source ConfigSource) {
		if path == "" {
			return
		}
		for _, l := range out {
			if l.path == path {
				return
			}
		}
		if _, err := os.Stat(path); err == nil {
			out = append(out, layer{path: path, source: source})
		}
	}
	add(SystemConfig, SourceSystem)
	add(UserConfigPath(), SourceUser)
	add(findProjectConfig(), SourceProject)
	return out
}

func readTOML(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	return errors.Wrapf(v.ReadInConfig(), "failed to read config file %s", path)
}

// findProjectConfig walks up from the working directory to the first am.toml.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// UserConfigPath returns ~/.provgraph/am.toml, or "" without a home directory
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, ConfigFileName)
}
