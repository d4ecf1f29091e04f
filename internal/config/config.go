// Package config handles skinforge configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/skinforge/pkg/skin"
)

// ErrInvalid is returned by Validate for unusable settings.
var ErrInvalid = errors.New("invalid config")

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds all settings shared by the CLI, the viewer and the server.
type Config struct {
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
	Builder BuilderConfig `yaml:"builder" toml:"builder"`
	Viewer  ViewerConfig  `yaml:"viewer" toml:"viewer"`
	Assets  AssetsConfig  `yaml:"assets" toml:"assets"`
	Server  ServerConfig  `yaml:"server" toml:"server"`
	Export  ExportConfig  `yaml:"export" toml:"export"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// BuilderConfig tunes model assembly.
type BuilderConfig struct {
	AlphaThreshold uint8   `yaml:"alpha_threshold" toml:"alpha_threshold"`
	OverlayOffset  float64 `yaml:"overlay_offset" toml:"overlay_offset"`
	VoxelSize      float64 `yaml:"voxel_size" toml:"voxel_size"`
	DisableOverlay bool    `yaml:"disable_overlay" toml:"disable_overlay"`
}

// Options converts the section into builder options.
func (b BuilderConfig) Options() skin.Options {
	return skin.Options{
		AlphaThreshold: b.AlphaThreshold,
		OverlayOffset:  b.OverlayOffset,
		VoxelSize:      b.VoxelSize,
		DisableOverlay: b.DisableOverlay,
	}
}

// ViewerConfig holds window and camera settings for the interactive viewer.
type ViewerConfig struct {
	Width      int     `yaml:"width" toml:"width"`
	Height     int     `yaml:"height" toml:"height"`
	Fullscreen bool    `yaml:"fullscreen" toml:"fullscreen"`
	VSync      bool    `yaml:"vsync" toml:"vsync"`
	AutoRotate float32 `yaml:"auto_rotate" toml:"auto_rotate"` // radians per frame
	Catalog    string  `yaml:"catalog" toml:"catalog"`
	Pack       string  `yaml:"pack" toml:"pack"`
	Reload     bool    `yaml:"reload" toml:"reload"` // watch local skin files
}

// AssetsConfig controls skin fetching and caching.
type AssetsConfig struct {
	FetchTimeout time.Duration `yaml:"fetch_timeout" toml:"fetch_timeout"`
	MaxBytes     int64         `yaml:"max_bytes" toml:"max_bytes"`
	Cache        string        `yaml:"cache" toml:"cache"`
	CacheEntries int           `yaml:"cache_entries" toml:"cache_entries"`
	CacheTTL     time.Duration `yaml:"cache_ttl" toml:"cache_ttl"`
	RedisAddr    string        `yaml:"redis_addr" toml:"redis_addr"`
	RedisDB      int           `yaml:"redis_db" toml:"redis_db"`
}

// ServerConfig holds HTTP service settings.
type ServerConfig struct {
	Listen          string        `yaml:"listen" toml:"listen"`
	Catalog         string        `yaml:"catalog" toml:"catalog"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	PreviewScale int `yaml:"preview_scale" toml:"preview_scale"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	opts := skin.DefaultOptions()
	return &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Builder: BuilderConfig{
			AlphaThreshold: opts.AlphaThreshold,
			OverlayOffset:  opts.OverlayOffset,
			VoxelSize:      opts.VoxelSize,
		},
		Viewer: ViewerConfig{
			Width:      1280,
			Height:     720,
			VSync:      true,
			AutoRotate: 0.003,
			Catalog:    "skins.json",
		},
		Assets: AssetsConfig{
			FetchTimeout: 10 * time.Second,
			MaxBytes:     4 << 20,
			Cache:        CacheMemory,
			CacheEntries: 256,
			CacheTTL:     time.Hour,
			RedisAddr:    "127.0.0.1:6379",
		},
		Server: ServerConfig{
			Listen:          ":8080",
			Catalog:         "skins.json",
			ShutdownTimeout: 5 * time.Second,
		},
		Export: ExportConfig{
			PreviewScale: 8,
		},
	}
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	switch c.Assets.Cache {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("%w: assets.cache %q (want memory, redis or none)", ErrInvalid, c.Assets.Cache)
	}
	if c.Assets.Cache == CacheRedis && c.Assets.RedisAddr == "" {
		return fmt.Errorf("%w: assets.redis_addr is required for the redis cache", ErrInvalid)
	}
	if c.Assets.FetchTimeout <= 0 {
		return fmt.Errorf("%w: assets.fetch_timeout must be positive", ErrInvalid)
	}
	if c.Builder.VoxelSize <= 0 {
		return fmt.Errorf("%w: builder.voxel_size must be positive", ErrInvalid)
	}
	if c.Export.PreviewScale < 1 {
		return fmt.Errorf("%w: export.preview_scale must be at least 1", ErrInvalid)
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("%w: viewer size %dx%d", ErrInvalid, c.Viewer.Width, c.Viewer.Height)
	}
	return nil
}
