// Package config persists the launcher's installation configuration.
//
// Config is stored at $XDG_CONFIG_HOME/dockhand/config.yaml (defaults to
// ~/.config/dockhand/config.yaml). A missing file reads as an empty config,
// never an error: the bootstrap controller treats an empty or partial config
// as "not configured yet" and routes the user to the configuration form.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ReservedPorts are host ports the backend must not claim: they collide
// with services the backend container itself exposes.
var ReservedPorts = map[int]struct{}{
	5432: {},
	8089: {},
	8443: {},
	8444: {},
	8446: {},
}

// PortMin and PortMax bound the backend port to the IANA registered range.
const (
	PortMin = 1024
	PortMax = 49151
)

// Install is the persisted installation configuration.
type Install struct {
	InstallDir  string `yaml:"install-dir"`
	BackendPort string `yaml:"backend-port"`
}

// Complete reports whether both fields are set. A config with only one
// field present is treated identically to no config at all.
func (c Install) Complete() bool {
	return c.InstallDir != "" && c.BackendPort != ""
}

// Validate checks the config before any persistence attempt. The live
// port-availability probe against the container runtime is separate and
// runs immediately before saving.
func (c Install) Validate() error {
	if c.InstallDir == "" {
		return errors.New("installation directory must not be empty")
	}
	port, err := strconv.Atoi(c.BackendPort)
	if err != nil {
		return fmt.Errorf("port %q is not a number", c.BackendPort)
	}
	return ValidatePort(port)
}

// ValidatePort checks that a port is inside the allowed range and not in
// the reserved set.
func ValidatePort(port int) error {
	if port < PortMin || port > PortMax {
		return fmt.Errorf("port must be between %d and %d", PortMin, PortMax)
	}
	if _, reserved := ReservedPorts[port]; reserved {
		return fmt.Errorf("port %d is reserved for other services", port)
	}
	return nil
}

// Path returns the config file location. It respects XDG_CONFIG_HOME,
// falling back to ~/.config/dockhand/config.yaml.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".config", "dockhand", "config.yaml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "dockhand", "config.yaml")
}

// Store reads and writes the install config at a fixed path.
type Store struct {
	path string
}

// NewStore creates a store rooted at path. An empty path uses Path().
func NewStore(path string) *Store {
	if path == "" {
		path = Path()
	}
	return &Store{path: path}
}

// Load reads the config file. If the file does not exist, an empty Install
// is returned (not an error).
func (s *Store) Load() (Install, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Install{}, nil
		}
		return Install{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Install
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Install{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save validates and writes the config to disk, creating directories as
// needed.
func (s *Store) Save(cfg Install) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
