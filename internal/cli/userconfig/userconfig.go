// Package userconfig remembers the last login of the portal CLI so later
// commands need neither --api nor --email.
package userconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const appDir = "placement-portal"

// UserConfig is the content of <user config dir>/placement-portal/config.json
type UserConfig struct {
	APIBaseURL string `json:"api_base_url"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role,omitempty"`
}

// Path returns the config file location, honouring XDG_CONFIG_HOME
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, appDir, "config.json"), nil
}

// Load reads the remembered settings. A missing file yields an empty config.
func Load() (*UserConfig, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	cfg := &UserConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the settings, readable by the current user only
func (c *UserConfig) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}
	return nil
}

// EmailFor returns the remembered email when it was used against apiBaseURL
func (c *UserConfig) EmailFor(apiBaseURL string) string {
	if c.APIBaseURL != apiBaseURL {
		return ""
	}
	return c.Email
}

// RememberLogin records the backend, email and role of a successful login
func RememberLogin(apiBaseURL, email, role string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.APIBaseURL = apiBaseURL
	cfg.Email = email
	cfg.Role = role
	return cfg.Save()
}
