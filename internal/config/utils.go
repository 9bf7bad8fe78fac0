package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SaveConfig saves the configuration to a YAML file
func SaveConfig(config *Config, filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file with
// example settings
func CreateDefaultConfigFile(filename string) error {
	config := DefaultConfig()

	// Columns that change on every run of the generating suite are the
	// usual candidates for ignoring.
	config.Compare.IgnoreColumns = []string{"spectrum", "runtime"}

	return SaveConfig(config, filename)
}

// GetConfigFilePath returns the path to the configuration file
func GetConfigFilePath(configFile string) string {
	if configFile != "" {
		return configFile
	}
	return ".tablediff.yaml"
}

// ConfigExists checks if a configuration file exists
func ConfigExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
