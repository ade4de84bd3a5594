package am

import (
	"os"
	"sort"
	"strings"
)

// ConfigSource names the layer a setting came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceSystem      ConfigSource = "system"      // /etc/provgraph/am.toml
	SourceUser        ConfigSource = "user"        // ~/.provgraph/am.toml
	SourceProject     ConfigSource = "project"     // nearest am.toml above the working directory
	SourceEnvironment ConfigSource = "environment" // PROVGRAPH_* variables
)

// SourceInfo is a layer plus the file or variable within it
type SourceInfo struct {
	Source ConfigSource `json:"source" yaml:"source"`
	Path   string       `json:"source_path,omitempty" yaml:"source_path,omitempty"`
}

// SettingInfo is one effective setting and where it came from
type SettingInfo struct {
	Key        string       `json:"key" yaml:"key"`
	Value      interface{}  `json:"value" yaml:"value"`
	Source     ConfigSource `json:"source" yaml:"source"`
	SourcePath string       `json:"source_path,omitempty" yaml:"source_path,omitempty"`
}

// ConfigIntrospection is the output of "am show" in JSON and YAML form
type ConfigIntrospection struct {
	ConfigFile string        `json:"config_file" yaml:"config_file"`
	Settings   []SettingInfo `json:"settings" yaml:"settings"`
}

// SourceOf reports which layer supplies key. The environment beats every file.
func SourceOf(key string) SourceInfo {
	mu.Lock()
	origin, ok := currentSnapshot().origins[key]
	mu.Unlock()

	env := EnvKey(key)
	if os.Getenv(env) != "" {
		return SourceInfo{Source: SourceEnvironment, Path: env}
	}
	if ok {
		return origin
	}
	return SourceInfo{Source: SourceDefault, Path: "built-in default"}
}

// GetConfigIntrospection lists every effective setting, sorted by key
func GetConfigIntrospection() *ConfigIntrospection {
	intro := &ConfigIntrospection{
		ConfigFile: ConfigFileUsed(),
		Settings:   []SettingInfo{},
	}
	values := map[string]interface{}{}
	flatten("", GetViper().AllSettings(), values)

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		src := SourceOf(k)
		intro.Settings = append(intro.Settings, SettingInfo{
			Key:        k,
			Value:      values[k],
			Source:     src.Source,
			SourcePath: src.Path,
		})
	}
	return intro
}

func flatten(prefix string, in map[string]interface{}, out map[string]interface{}) {
	for k, v := range in {
		if prefix != "" {
			k = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			flatten(k, nested, out)
			continue
		}
		out[k] = v
	}
}

// EnvKey returns the environment variable overriding a dotted key
func EnvKey(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
