// Package config handles tool configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Mod     ModConfig     `yaml:"mod"`
	Tileset TilesetConfig `yaml:"tileset"`
	Logging LoggingConfig `yaml:"logging"`
}

// ModConfig holds the location of the mod being edited.
type ModConfig struct {
	Executable string `yaml:"executable"` // Last loaded mod executable
}

// TilesetConfig describes the tileset image geometry attribute grids are derived from.
type TilesetConfig struct {
	TileSize int `yaml:"tile_size"` // Tile edge in pixels
	Columns  int `yaml:"columns"`
	Rows     int `yaml:"rows"`
}

// PixelWidth returns the width of the usable tileset area.
func (t TilesetConfig) PixelWidth() int { return t.TileSize * t.Columns }

// PixelHeight returns the height of the usable tileset area.
func (t TilesetConfig) PixelHeight() int { return t.TileSize * t.Rows }

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Tileset: TilesetConfig{
			TileSize: 8,
			Columns:  16,
			Rows:     16,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
