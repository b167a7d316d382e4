// Package config loads pdfscan settings from an optional YAML file and
// PDFSCAN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/pdfscan/internal/enhance"
	"gopkg.in/yaml.v3"
)

// Config holds runtime settings. Zero values are replaced by defaults.
type Config struct {
	Port           string           `yaml:"port"`
	MaxUploadMB    int              `yaml:"max_upload_mb"`
	Workers        int              `yaml:"workers"`
	TempDir        string           `yaml:"temp_dir"`
	LogLevel       string           `yaml:"log_level"`
	Enhance        bool             `yaml:"enhance"`
	Enhancement    enhance.Settings `yaml:"enhancement"`
	MaxWidth       int              `yaml:"max_width"`
	ThumbnailWidth int              `yaml:"thumbnail_width"`
	FullQuality    int              `yaml:"full_quality"`
	ThumbQuality   int              `yaml:"thumbnail_quality"`
}

// Default returns the built-in configuration.
func Default() Config {
	opts := enhance.DefaultOptions()
	return Config{
		Port:           "8888",
		MaxUploadMB:    10,
		Workers:        0,
		LogLevel:       "info",
		Enhance:        opts.Enabled,
		Enhancement:    opts.Settings,
		MaxWidth:       opts.MaxWidth,
		ThumbnailWidth: opts.ThumbnailWidth,
		FullQuality:    opts.FullQuality,
		ThumbQuality:   opts.ThumbnailQuality,
	}
}

// Load reads path (a missing file is not an error) and applies environment
// overrides on top.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			slog.Debug("No config file found, using defaults", "path", path)
		case err != nil:
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
			slog.Debug("Loaded config file", "path", path)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PDFSCAN_PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("PDFSCAN_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("PDFSCAN_TEMP_DIR"); v != "" {
		c.TempDir = v
	}
	if v := os.Getenv("PDFSCAN_MAX_UPLOAD_MB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PDFSCAN_MAX_UPLOAD_MB %q: %w", v, err)
		}
		c.MaxUploadMB = n
	}
	if v := os.Getenv("PDFSCAN_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PDFSCAN_WORKERS %q: %w", v, err)
		}
		c.Workers = n
	}
	return nil
}

// Validate checks the values the rest of the program relies on.
func (c Config) Validate() error {
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	}
	if _, err := c.PipelineOptions(); err != nil {
		return err
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// MaxUploadBytes is the per-file upload limit.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

// PipelineOptions converts the config into enhancement pipeline options.
func (c Config) PipelineOptions() (enhance.Options, error) {
	opts := enhance.Options{
		Enabled:          c.Enhance,
		Settings:         c.Enhancement,
		MaxWidth:         c.MaxWidth,
		ThumbnailWidth:   c.ThumbnailWidth,
		FullQuality:      c.FullQuality,
		ThumbnailQuality: c.ThumbQuality,
		Workers:          1,
	}
	if _, err := enhance.New(opts); err != nil {
		return opts, fmt.Errorf("invalid enhancement config: %w", err)
	}
	return opts, nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
