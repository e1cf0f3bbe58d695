// Package config handles loading and saving treeselect configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/treeselect/config.yaml
//   - State:   ~/.local/state/treeselect/ (collapse state)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/treeselect/pkg/keyboard"
	"gopkg.in/yaml.v3"
)

const appName = "treeselect"

// SelectConfig holds the behaviour flags of the select.
type SelectConfig struct {
	Multiple   bool   `yaml:"multiple,omitempty"`
	Searchable bool   `yaml:"searchable,omitempty"`
	Disabled   bool   `yaml:"disabled,omitempty"`
	MatchMode  string `yaml:"match_mode,omitempty"` // substring, fuzzy
	PageStep   int    `yaml:"page_step,omitempty"`
}

// UIConfig holds presentation settings for the terminal binding.
type UIConfig struct {
	Placeholder        string `yaml:"placeholder,omitempty"`
	CreatorPlaceholder string `yaml:"creator_placeholder,omitempty"`
	MaxHeight          int    `yaml:"max_height,omitempty"` // visible rows in the open menu
	PersistCollapse    bool   `yaml:"persist_collapse,omitempty"`
}

// SourcesConfig lists where option files come from when none are given.
type SourcesConfig struct {
	Files     []string `yaml:"files,omitempty"`
	ScanPaths []string `yaml:"scan_paths,omitempty"` // Directories to scan for option files
	MaxDepth  int      `yaml:"max_depth,omitempty"`  // How deep to scan (default 2)
}

// Config is the top-level configuration for treeselect.
type Config struct {
	Select  SelectConfig        `yaml:"select,omitempty"`
	UI      UIConfig            `yaml:"ui,omitempty"`
	Keys    map[string][]string `yaml:"keys,omitempty"` // binding name -> keys, e.g. down: [j, down]
	Sources SourcesConfig       `yaml:"sources,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Select: SelectConfig{
			MatchMode: "substring",
			PageStep:  keyboard.DefaultPageStep,
		},
		UI: UIConfig{
			Placeholder:        "Select…",
			CreatorPlaceholder: "New item",
			MaxHeight:          12,
		},
		Sources: SourcesConfig{
			MaxDepth: 2,
		},
	}
}

// ConfigDir returns the XDG config directory for treeselect.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// StateDir returns the XDG state directory for treeselect.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", appName)
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

	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Select.PageStep <= 0 {
		cfg.Select.PageStep = keyboard.DefaultPageStep
	}
	if cfg.UI.MaxHeight <= 0 {
		cfg.UI.MaxHeight = DefaultConfig().UI.MaxHeight
	}

	// Expand ~ in source paths
	for i := range cfg.Sources.Files {
		cfg.Sources.Files[i] = expandHome(cfg.Sources.Files[i])
	}
	for i := range cfg.Sources.ScanPaths {
		cfg.Sources.ScanPaths[i] = expandHome(cfg.Sources.ScanPaths[i])
	}

	return cfg, nil
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

// KeyMap returns the default key map with the configured overrides applied.
// A searchable select rejects overrides bound to printable characters.
func (c Config) KeyMap() (keyboard.KeyMap, error) {
	km := keyboard.DefaultKeyMap()
	for name, keys := range c.Keys {
		if err := km.Override(name, keys); err != nil {
			return km, fmt.Errorf("keys: %w", err)
		}
	}
	if c.Select.Searchable {
		if keys := km.PrintableKeys(); len(keys) > 0 {
			return km, fmt.Errorf("keys: %s would shadow typing in a searchable select", strings.Join(keys, ", "))
		}
	}
	return km, nil
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
