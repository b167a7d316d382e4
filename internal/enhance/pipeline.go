// Package enhance implements the scanner's image enhancement pipeline:
// a linear brightness/contrast remap followed by an optional 3x3 sharpen,
// plus the decode, downscale, thumbnail and JPEG steps around it.
package enhance

import (
	"context"
	"fmt"
	"log/slog"
)

// Settings controls the enhancement stages. It is passed by value and never
// modified while a batch is being processed.
type Settings struct {
	Brightness int     `json:"brightness" yaml:"brightness"`
	Contrast   float64 `json:"contrast" yaml:"contrast"`
	Sharpen    bool    `json:"sharpen" yaml:"sharpen"`
}

// DefaultSettings matches the scanner's out-of-the-box enhancement.
func DefaultSettings() Settings {
	return Settings{
		Brightness: 10,
		Contrast:   1.3,
		Sharpen:    true,
	}
}

// Validate rejects settings the remap cannot honor.
func (s Settings) Validate() error {
	if !(s.Contrast > 0) {
		return fmt.Errorf("contrast must be positive, got %v", s.Contrast)
	}
	return nil
}

// Apply runs the tone remap and then, if requested, the sharpen stage.
// src is not modified.
func Apply(src *RasterImage, s Settings) *RasterImage {
	out := ToneRemap(src, s.Brightness, s.Contrast)
	if s.Sharpen {
		out = Sharpen(out)
	}
	return out
}

// Options configures a Pipeline.
type Options struct {
	Enabled          bool
	Settings         Settings
	MaxWidth         int
	ThumbnailWidth   int
	FullQuality      int
	ThumbnailQuality int
	// Workers bounds the goroutines used by the sharpen stage of a single image.
	Workers int
}

// DefaultOptions mirrors the scanner defaults: 2400px max width, JPEG 95 for
// pages and a 150px JPEG 70 thumbnail.
func DefaultOptions() Options {
	return Options{
		Enabled:          true,
		Settings:         DefaultSettings(),
		MaxWidth:         2400,
		ThumbnailWidth:   150,
		FullQuality:      95,
		ThumbnailQuality: 70,
		Workers:          1,
	}
}

// Result is the encoded output for one source image.
type Result struct {
	Full      []byte
	Thumbnail []byte
	Width     int
	Height    int
	Format    string
}

// Pipeline turns source image bytes into enhanced page images.
type Pipeline struct {
	opts Options
}

// New validates opts and returns a Pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Enabled {
		if err := opts.Settings.Validate(); err != nil {
			return nil, err
		}
	}
	if opts.ThumbnailWidth <= 0 {
		return nil, fmt.Errorf("thumbnail width must be positive, got %d", opts.ThumbnailWidth)
	}
	if opts.FullQuality < 1 || opts.FullQuality > 100 {
		return nil, fmt.Errorf("full quality must be in [1, 100], got %d", opts.FullQuality)
	}
	if opts.ThumbnailQuality < 1 || opts.ThumbnailQuality > 100 {
		return nil, fmt.Errorf("thumbnail quality must be in [1, 100], got %d", opts.ThumbnailQuality)
	}
	return &Pipeline{opts: opts}, nil
}

// Options returns the pipeline configuration.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Enhance applies the configured stages to img, or returns a copy when
// enhancement is disabled.
func (p *Pipeline) Enhance(img *RasterImage) *RasterImage {
	if !p.opts.Enabled {
		return img.Clone()
	}
	out := ToneRemap(img, p.opts.Settings.Brightness, p.opts.Settings.Contrast)
	if p.opts.Settings.Sharpen {
		if p.opts.Workers > 1 {
			out = SharpenParallel(out, p.opts.Workers)
		} else {
			out = Sharpen(out)
		}
	}
	return out
}

// Process decodes data, enhances it and encodes the page image and its
// thumbnail. The thumbnail is always built from the decoded source, never
// from the enhanced pixels. ctx is only checked between stages.
func (p *Pipeline) Process(ctx context.Context, name string, data []byte) (*Result, error) {
	src, format, err := Decode(name, data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raster := FromImage(LimitWidth(src, p.opts.MaxWidth))
	enhanced := p.Enhance(raster)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full, err := EncodeJPEG(name, enhanced.NRGBA(), p.opts.FullQuality)
	if err != nil {
		return nil, err
	}

	thumb, err := EncodeJPEG(name, Thumbnail(src, p.opts.ThumbnailWidth), p.opts.ThumbnailQuality)
	if err != nil {
		return nil, err
	}

	slog.Debug("Image processed",
		"name", name,
		"format", format,
		"width", enhanced.Width,
		"height", enhanced.Height,
		"enhanced", p.opts.Enabled,
		"sharpen", p.opts.Enabled && p.opts.Settings.Sharpen,
		"bytes", len(full))

	return &Result{
		Full:      full,
		Thumbnail: thumb,
		Width:     enhanced.Width,
		Height:    enhanced.Height,
		Format:    format,
	}, nil
}
