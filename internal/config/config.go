// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Asset    AssetConfig    `yaml:"asset"`
	Playback PlaybackConfig `yaml:"playback"`
	Camera   CameraConfig   `yaml:"camera"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Samples    int    `yaml:"samples"`

	// ScreenshotDir receives PNGs saved with the P key.
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// AssetConfig selects the model to load.
type AssetConfig struct {
	Path string `yaml:"path"`
	// TextureDir overrides the directory external textures are resolved
	// against. Empty means the asset's own directory.
	TextureDir string `yaml:"texture_dir"`
}

// PlaybackConfig holds animation playback settings.
type PlaybackConfig struct {
	Speed     float64 `yaml:"speed"`
	Paused    bool    `yaml:"paused"`
	StartTime float64 `yaml:"start_time"` // seconds
}

// CameraConfig holds the initial orbit. Zero distance fits the camera to
// the model bounds.
type CameraConfig struct {
	Distance  float32 `yaml:"distance"`
	Pitch     float32 `yaml:"pitch"` // radians
	Yaw       float32 `yaml:"yaw"`   // radians
	Wireframe bool    `yaml:"wireframe"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "skinview",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			Samples:    4,

			ScreenshotDir: "screenshots",
		},
		Playback: PlaybackConfig{
			Speed: 1.0,
		},
		Camera: CameraConfig{
			Pitch: 0.3,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
