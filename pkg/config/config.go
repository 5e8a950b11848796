// Package config handles loading and saving depthlog configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/depthlog/config.yaml
//   - Data:    ~/.local/share/depthlog/ (dive logs, device maps)
//   - State:   ~/.local/state/depthlog/ (view state cache)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Logbook represents a registered dive log in the config.
type Logbook struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	DefaultView string `yaml:"default_view,omitempty"` // dives, stats, devices
	Layout      string `yaml:"layout,omitempty"`       // tree, list
	Headless    bool   `yaml:"headless,omitempty"`     // never launch the TUI
}

// UnitsConfig selects the measurement system for display.
type UnitsConfig struct {
	System string `yaml:"system,omitempty"` // metric, imperial
}

// Config is the top-level configuration for depthlog.
type Config struct {
	Logbooks  []Logbook   `yaml:"logbooks,omitempty"`
	Default   string      `yaml:"default,omitempty"` // name of the logbook to open on start
	UI        UIConfig    `yaml:"ui,omitempty"`
	Units     UnitsConfig `yaml:"units,omitempty"`
	Autogroup bool        `yaml:"autogroup,omitempty"` // group tripless dives automatically
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			DefaultView: "dives",
			Layout:      "tree",
		},
		Units: UnitsConfig{
			System: "metric",
		},
	}
}

// ConfigDir returns the XDG config directory for depthlog.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "depthlog")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "depthlog")
}

// DataDir returns the XDG data directory for depthlog.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "depthlog")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "depthlog")
}

// StateDir returns the XDG state directory for depthlog.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "depthlog")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "depthlog")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// Expand ~ in logbook paths
	for i := range cfg.Logbooks {
		cfg.Logbooks[i].Path = expandHome(cfg.Logbooks[i].Path)
	}

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// FindLogbook returns the logbook with the given name, or nil.
func (c Config) FindLogbook(name string) *Logbook {
	for i := range c.Logbooks {
		if strings.EqualFold(c.Logbooks[i].Name, name) {
			return &c.Logbooks[i]
		}
	}
	return nil
}

// DefaultLogbook returns the logbook named by Default, the first registered
// logbook if Default is unset, or nil when none are registered.
func (c Config) DefaultLogbook() *Logbook {
	if c.Default != "" {
		if lb := c.FindLogbook(c.Default); lb != nil {
			return lb
		}
	}
	if len(c.Logbooks) > 0 {
		return &c.Logbooks[0]
	}
	return nil
}

// ResolvedPath returns the logbook path with ~ expanded.
func (l Logbook) ResolvedPath() string {
	return expandHome(l.Path)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
