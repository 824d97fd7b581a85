package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigPath returns $WECHATFED_CONFIG, or ~/.wechatfed/config.yaml when
// it is unset.
func ConfigPath() (string, error) {
	if path := os.Getenv("WECHATFED_CONFIG"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".wechatfed", "config.yaml"), nil
}

// LoadFile overlays the YAML file at path onto c. Keys missing from the
// file keep their current values. A missing file is not an error; loaded
// reports whether one was read.
func (c *Config) LoadFile(path string) (loaded bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return false, fmt.Errorf("failed to parse config file: %w", err)
	}

	return true, nil
}

// WriteDefaultConfigFile writes the default configuration to ConfigPath.
// An existing file is left alone unless force is set. created reports
// whether a file was written.
func WriteDefaultConfigFile(force bool) (created bool, path string, err error) {
	path, err = ConfigPath()
	if err != nil {
		return false, "", err
	}

	if _, err := os.Stat(path); err == nil && !force {
		return false, path, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return false, path, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return false, path, fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return false, path, fmt.Errorf("failed to write config file: %w", err)
	}

	return true, path, nil
}
