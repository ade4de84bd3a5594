package am

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/provgraph/errors"
)

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete old backup %s", back3)
	}

	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}

	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}
	if err := os.WriteFile(back1, content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}
	return nil
}

// loadTOMLFile reads a TOML file into a map; a missing file is an empty map
func loadTOMLFile(configPath string) (map[string]interface{}, error) {
	config := make(map[string]interface{})
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", configPath)
	}
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", configPath)
	}
	return config, nil
}

// SetValue writes a dotted key into the TOML file at configPath, creating
// intermediate tables as needed and backing up the previous file. The
// result must still validate.
func SetValue(configPath, key string, value interface{}) error {
	segments := strings.Split(key, ".")
	for _, s := range segments {
		if s == "" {
			return errors.Invalidf("malformed key %q", key)
		}
	}

	config, err := loadTOMLFile(configPath)
	if err != nil {
		return err
	}

	table := config
	for _, s := range segments[:len(segments)-1] {
		next, ok := table[s].(map[string]interface{})
		if !ok {
			if _, exists := table[s]; exists {
				return errors.Invalidf("%s is not a table in %s", s, configPath)
			}
			next = make(map[string]interface{})
			table[s] = next
		}
		table = next
	}
	table[segments[len(segments)-1]] = value

	data, err := toml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := checkTOML(data); err != nil {
		return errors.Wrapf(err, "refusing to write %s=%v", key, value)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), DefaultDirPermissions); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}
	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	markActiveWrite()

	if err := os.WriteFile(configPath, data, DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", configPath)
	}
	return nil
}

// checkTOML validates rendered TOML on top of defaults
func checkTOML(data []byte) error {
	tmp, err := os.CreateTemp("", "am-*.toml")
	if err != nil {
		return errors.Wrap(err, "failed to stage config")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to stage config")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to stage config")
	}
	_, err = LoadFromFile(tmp.Name())
	return err
}
