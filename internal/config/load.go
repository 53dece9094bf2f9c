package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects tileset geometry that cannot produce an attribute grid.
func (c *Config) Validate() error {
	t := c.Tileset
	if t.TileSize <= 0 || t.Columns <= 0 || t.Rows <= 0 {
		return fmt.Errorf("invalid tileset geometry: tile_size=%d columns=%d rows=%d", t.TileSize, t.Columns, t.Rows)
	}
	if t.Columns > 0xFFFF || t.Rows > 0xFFFF {
		return fmt.Errorf("tileset geometry %dx%d exceeds attribute grid limits", t.Columns, t.Rows)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "KeroTools")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "KeroTools")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "kerotools")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "kerotools")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
