// Package config loads unipatch settings from an optional YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the file-backed settings of the CLI. Explicit flags and
// environment variables override these values.
type Config struct {
	// BaseDir is the directory patch paths are resolved under.
	BaseDir string `yaml:"base_dir"`
	// Verbose enables per-hunk diagnostics.
	Verbose bool `yaml:"verbose"`
	// NoColor disables ANSI styling on status output.
	NoColor bool `yaml:"no_color"`
	// LogFile appends JSON diagnostics to the named file when set.
	LogFile string `yaml:"log_file"`
}

// Load reads the YAML config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath names the config file to try when --config is not given:
// $UNIPATCH_CONFIG if set, otherwise config.yaml under the user config
// directory. The boolean reports whether that file exists.
func DefaultPath() (string, bool) {
	if path := os.Getenv("UNIPATCH_CONFIG"); path != "" {
		return path, fileExists(path)
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	path := filepath.Join(base, "unipatch", "config.yaml")
	return path, fileExists(path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
