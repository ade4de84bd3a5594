package am

import (
	"encoding/json"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/teranos/provgraph/errors"
)

// Output formats for Render
const (
	FormatTOML = "toml"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Render serializes the effective settings. TOML output is the merged
// configuration as a config file would hold it; JSON and YAML carry the
// per-key sources as well.
func Render(format string) ([]byte, error) {
	switch format {
	case FormatTOML:
		data, err := toml.Marshal(GetViper().AllSettings())
		return data, errors.Wrap(err, "render toml")
	case FormatJSON:
		data, err := json.MarshalIndent(GetConfigIntrospection(), "", "  ")
		return data, errors.Wrap(err, "render json")
	case FormatYAML:
		data, err := yaml.Marshal(GetConfigIntrospection())
		return data, errors.Wrap(err, "render yaml")
	}
	return nil, errors.WithHint(
		errors.Invalidf("unknown format %q", format),
		"valid formats: toml, json, yaml")
}
