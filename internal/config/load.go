package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a loaded config fails validation.
var ErrInvalid = errors.New("invalid config")

// FileName is the config file looked up in the working directory and the
// OS config directory.
const FileName = "skinrig.yaml"

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

// Validate checks the values that would otherwise fail later in obscure ways.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Playback.Speed < 0 {
		return fmt.Errorf("%w: negative playback speed %v", ErrInvalid, c.Playback.Speed)
	}
	if c.Window.Samples < 0 {
		return fmt.Errorf("%w: negative sample count %d", ErrInvalid, c.Window.Samples)
	}
	return nil
}

// TextureDir returns the directory external textures are read from.
func (c *Config) TextureDir() string {
	if c.Asset.TextureDir != "" {
		return c.Asset.TextureDir
	}
	return filepath.Dir(c.Asset.Path)
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./" + FileName,
		filepath.Join(ConfigDir(), FileName),
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
		return filepath.Join(home, "Library", "Application Support", "Skinrig")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Skinrig")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "skinrig")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "skinrig")
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
