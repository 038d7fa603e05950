// Package config loads and saves the editor's configuration file.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config represents the user's configuration.
type Config struct {
	// BaseURL is the remote store's base URL, e.g.
	// https://example.atlassian.net/wiki.
	BaseURL string `json:"base_url"`
	// Username and APIToken are handed to the HTTP transport as basic auth.
	Username string `json:"username"`
	APIToken string `json:"api_token,omitempty"`
	// SchemaPath points at the RELAX NG schema used for advisory validation.
	SchemaPath string `json:"schema_path,omitempty"`
	// FormatterCommand overrides the external pretty-printer argv.
	FormatterCommand []string `json:"formatter_command,omitempty"`
	// DraftsPath overrides where draft snapshots are stored.
	DraftsPath string `json:"drafts_path,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{}
}

// globalConfigDir returns the global config directory path (~/.el-confluence).
func globalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".el-confluence"), nil
}

func globalConfigPath() (string, error) {
	dir, err := globalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// projectConfigPath returns the project-level config path
// (.el-confluence/config.json in cwd).
func projectConfigPath() string {
	return filepath.Join(".el-confluence", "config.json")
}

// Exists checks if a config file exists (project or global).
func Exists() bool {
	if _, err := os.Stat(projectConfigPath()); err == nil {
		return true
	}
	path, err := globalConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads the config from disk, checking project config first, then
// global. A missing config is not an error; the default is returned.
func Load() (*Config, error) {
	if data, err := os.ReadFile(projectConfigPath()); err == nil {
		var cfg Config
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	globalPath, err := globalConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(globalPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to the global location (~/.el-confluence/config.json).
// Credentials stay out of project directories.
func Save(cfg *Config) error {
	dir, err := globalConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	path, err := globalConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// DraftsDBPath resolves the drafts database location, defaulting next to the
// global config.
func (c *Config) DraftsDBPath() (string, error) {
	if c.DraftsPath != "" {
		return c.DraftsPath, nil
	}
	dir, err := globalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "drafts.db"), nil
}
