package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lehigh-university-libraries/pdfscan/internal/enhance"
	"github.com/lehigh-university-libraries/pdfscan/internal/scanner"
	"gopkg.in/yaml.v3"
)

// ScanConfig represents the configuration section of a scan report
type ScanConfig struct {
	Enhance    bool    `yaml:"enhance"`
	Brightness int     `yaml:"brightness"`
	Contrast   float64 `yaml:"contrast"`
	Sharpen    bool    `yaml:"sharpen"`
	Workers    int     `yaml:"workers"`
	Output     string  `yaml:"output"`
	Timestamp  string  `yaml:"timestamp"`
}

// PageResult represents the outcome for one input image
type PageResult struct {
	Index  int    `yaml:"index"`
	Source string `yaml:"source"`
	Status string `yaml:"status"`
	PageID string `yaml:"pageid,omitempty"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	Bytes  int    `yaml:"bytes,omitempty"`
	Error  string `yaml:"error,omitempty"`
}

// Summary counts the batch outcomes
type Summary struct {
	Images   int    `yaml:"images"`
	Pages    int    `yaml:"pages"`
	Failed   int    `yaml:"failed"`
	Duration string `yaml:"duration"`
}

// ScanReport is the complete report written after a CLI scan
type ScanReport struct {
	Config  ScanConfig   `yaml:"config"`
	Summary Summary      `yaml:"summary"`
	Results []PageResult `yaml:"results"`
}

// Build assembles a report from batch outcomes.
func Build(opts enhance.Options, workers int, output string, outcomes []scanner.Outcome, elapsed time.Duration) ScanReport {
	rep := ScanReport{
		Config: ScanConfig{
			Enhance:    opts.Enabled,
			Brightness: opts.Settings.Brightness,
			Contrast:   opts.Settings.Contrast,
			Sharpen:    opts.Settings.Sharpen,
			Workers:    workers,
			Output:     output,
			Timestamp:  time.Now().Format("2006-01-02_15-04-05"),
		},
		Results: make([]PageResult, 0, len(outcomes)),
	}

	for _, o := range outcomes {
		r := PageResult{
			Index:  o.Index,
			Source: o.Name,
		}
		if o.Err != nil {
			r.Status = "failed"
			r.Error = o.Err.Error()
			rep.Summary.Failed++
		} else {
			r.Status = "ok"
			r.PageID = o.Page.ID
			r.Width = o.Page.Width
			r.Height = o.Page.Height
			r.Bytes = len(o.Page.Image)
			rep.Summary.Pages++
		}
		rep.Results = append(rep.Results, r)
	}

	rep.Summary.Images = len(outcomes)
	rep.Summary.Duration = elapsed.Round(time.Millisecond).String()

	return rep
}

// SaveToYAML writes the report to path, creating parent directories.
func SaveToYAML(path string, rep ScanReport) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	data, err := yaml.Marshal(&rep)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}

	return nil
}

// LoadFromYAML reads a report previously written by SaveToYAML.
func LoadFromYAML(path string) (ScanReport, error) {
	var rep ScanReport
	data, err := os.ReadFile(path)
	if err != nil {
		return rep, fmt.Errorf("failed to read report: %w", err)
	}
	if err := yaml.Unmarshal(data, &rep); err != nil {
		return rep, fmt.Errorf("failed to parse report: %w", err)
	}
	return rep, nil
}
