package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagSpeed      = flag.Float64("speed", 0, "Playback speed multiplier")
	flagPaused     = flag.Bool("paused", false, "Start with playback paused")
	flagTextures   = flag.String("textures", "", "Directory for external textures")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config. The first
// positional argument names the asset.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Window.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagSpeed > 0 {
		cfg.Playback.Speed = *flagSpeed
	}
	if *flagPaused {
		cfg.Playback.Paused = true
	}
	if *flagTextures != "" {
		cfg.Asset.TextureDir = *flagTextures
	}
	if flag.NArg() > 0 {
		cfg.Asset.Path = flag.Arg(0)
	}
}
