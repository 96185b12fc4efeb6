// Package filterconf persists the list-filter preferences between sessions.
package filterconf

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Top-level selector values for the users and groups lists. Regular accounts
// are those with id >= 1000; system accounts sit below.
const (
	FilterNone    = ""
	FilterRegular = "regular"
	FilterSystem  = "system"
)

// Chips are independently toggleable secondary conditions applied to the
// users list only. Enabled chips compose conjunctively.
type Chips struct {
	Inactive   bool `yaml:"inactive,omitempty"`
	NoHome     bool `yaml:"no-home,omitempty"`
	Locked     bool `yaml:"locked,omitempty"`
	NoPassword bool `yaml:"no-password,omitempty"`
	Expired    bool `yaml:"expired,omitempty"`
}

// Settings is the persistent filter configuration.
type Settings struct {
	Users  string `yaml:"users,omitempty"`  // "", "regular" or "system"
	Groups string `yaml:"groups,omitempty"` // "", "regular" or "system"
	Chips  Chips  `yaml:"user-conditions,omitempty"`
}

// DefaultPath returns the filter settings file location, honoring
// XDG_CONFIG_HOME and falling back to ~/.config.
func DefaultPath() string {
	root := os.Getenv("XDG_CONFIG_HOME")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "filters.yaml"
		}
		root = filepath.Join(home, ".config")
	}
	return filepath.Join(root, "usrgrp", "filters.yaml")
}

// Load reads settings from path. A missing file yields zero-value defaults
// (no filters) without error; unknown selector values are normalized to none.
func Load(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("reading filter settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parsing filter settings: %w", err)
	}
	if s.Users != FilterRegular && s.Users != FilterSystem {
		s.Users = FilterNone
	}
	if s.Groups != FilterRegular && s.Groups != FilterSystem {
		s.Groups = FilterNone
	}
	return s, nil
}

// Save writes settings to path, creating parent directories as needed.
func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshalling filter settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing filter settings: %w", err)
	}
	return nil
}
