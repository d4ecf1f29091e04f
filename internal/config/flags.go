package config

import (
	"flag"
	"fmt"
	"strconv"
	"time"
)

// Overrides holds command-line values that win over the config file.
// Zero values leave the loaded setting untouched.
type Overrides struct {
	Config     string
	Debug      bool
	LogFile    string
	Catalog    string
	Pack       string
	Listen     string
	Cache      string
	RedisAddr  string
	Timeout    time.Duration
	Threshold  *uint8
	NoOverlay  bool
	Scale      int
	Width      int
	Height     int
	Fullscreen bool
	Reload     bool
}

// RegisterFlags binds the overrides to a standard flag set.
func RegisterFlags(fs *flag.FlagSet) *Overrides {
	ov := &Overrides{}
	fs.StringVar(&ov.Config, "config", "", "Path to config file (.yaml or .toml)")
	fs.BoolVar(&ov.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&ov.LogFile, "log-file", "", "Also write logs to this file")
	fs.StringVar(&ov.Catalog, "catalog", "", "Path or URL of the skins.json catalog")
	fs.StringVar(&ov.Pack, "pack", "", "Pack to open")
	fs.StringVar(&ov.Cache, "cache", "", "Asset cache: memory, redis or none")
	fs.StringVar(&ov.RedisAddr, "redis", "", "Redis address for the redis cache")
	fs.DurationVar(&ov.Timeout, "timeout", 0, "Skin fetch timeout")
	fs.Func("alpha-threshold", "Overlay alpha threshold (0-255)", ov.setThreshold)
	fs.BoolVar(&ov.NoOverlay, "no-overlay", false, "Skip overlay voxels")
	fs.IntVar(&ov.Width, "width", 0, "Window width")
	fs.IntVar(&ov.Height, "height", 0, "Window height")
	fs.BoolVar(&ov.Fullscreen, "fullscreen", false, "Run in fullscreen mode")
	fs.BoolVar(&ov.Reload, "reload", false, "Reload local skins in the viewer when their files change")
	return ov
}

// apply copies every set override into cfg.
func (ov *Overrides) apply(cfg *Config) {
	if ov == nil {
		return
	}
	if ov.Debug {
		cfg.Logging.Level = "debug"
	}
	if ov.LogFile != "" {
		cfg.Logging.LogFile = ov.LogFile
	}
	if ov.Catalog != "" {
		cfg.Viewer.Catalog = ov.Catalog
		cfg.Server.Catalog = ov.Catalog
	}
	if ov.Pack != "" {
		cfg.Viewer.Pack = ov.Pack
	}
	if ov.Listen != "" {
		cfg.Server.Listen = ov.Listen
	}
	if ov.Cache != "" {
		cfg.Assets.Cache = ov.Cache
	}
	if ov.RedisAddr != "" {
		cfg.Assets.RedisAddr = ov.RedisAddr
	}
	if ov.Timeout > 0 {
		cfg.Assets.FetchTimeout = ov.Timeout
	}
	if ov.Threshold != nil {
		cfg.Builder.AlphaThreshold = *ov.Threshold
	}
	if ov.NoOverlay {
		cfg.Builder.DisableOverlay = true
	}
	if ov.Scale > 0 {
		cfg.Export.PreviewScale = ov.Scale
	}
	if ov.Width > 0 {
		cfg.Viewer.Width = ov.Width
	}
	if ov.Height > 0 {
		cfg.Viewer.Height = ov.Height
	}
	if ov.Fullscreen {
		cfg.Viewer.Fullscreen = true
	}
	if ov.Reload {
		cfg.Viewer.Reload = true
	}
}

func (ov *Overrides) setThreshold(s string) error {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return fmt.Errorf("alpha threshold %q: want 0-255", s)
	}
	t := uint8(v)
	ov.Threshold = &t
	return nil
}
