package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/pdfscan/internal/config"
	"github.com/lehigh-university-libraries/pdfscan/internal/enhance"
	"github.com/lehigh-university-libraries/pdfscan/internal/images"
	"github.com/lehigh-university-libraries/pdfscan/internal/pdfdoc"
	"github.com/lehigh-university-libraries/pdfscan/internal/report"
	"github.com/lehigh-university-libraries/pdfscan/internal/scanner"
	"github.com/spf13/cobra"
)

type scanFlags struct {
	output     string
	reportPath string
	brightness int
	contrast   float64
	sharpen    bool
	noEnhance  bool
	workers    int
}

func newScanCmd(opts *rootOptions) *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan IMAGE...",
		Short: "Enhance images and assemble them into a PDF",
		Long: `Runs every image through the scanner enhancement (brightness/contrast
remap followed by an optional sharpen) and writes one PDF page per image,
in the order given.

Arguments may be local files or http(s) URLs. Images that cannot be read
are reported and skipped; the rest are still assembled.`,
		Example: `  # Scan three photos with the default enhancement
  pdfscan scan page1.jpg page2.jpg page3.jpg -o book.pdf

  # Brighter, higher contrast, no sharpening, with a YAML report
  pdfscan scan *.png --brightness 30 --contrast 1.6 --sharpen=false --report scan.yaml

  # Keep the original pixels
  pdfscan scan receipt.jpg --no-enhance -o receipt.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if cmd.Flags().Changed("brightness") {
				cfg.Enhancement.Brightness = flags.brightness
			}
			if cmd.Flags().Changed("contrast") {
				cfg.Enhancement.Contrast = flags.contrast
			}
			if cmd.Flags().Changed("sharpen") {
				cfg.Enhancement.Sharpen = flags.sharpen
			}
			if flags.noEnhance {
				cfg.Enhance = false
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = flags.workers
			}
			return executeScan(cmd.Context(), cfg, args, flags.output, flags.reportPath)
		},
	}

	def := config.Default()
	cmd.Flags().StringVarP(&flags.output, "output", "o", "scanned-document.pdf", "Output PDF path")
	cmd.Flags().StringVar(&flags.reportPath, "report", "", "Write a YAML report of the batch to this path")
	cmd.Flags().IntVar(&flags.brightness, "brightness", def.Enhancement.Brightness, "Brightness offset, typically -50 to 50")
	cmd.Flags().Float64Var(&flags.contrast, "contrast", def.Enhancement.Contrast, "Contrast multiplier, typically 0.5 to 2.5")
	cmd.Flags().BoolVar(&flags.sharpen, "sharpen", def.Enhancement.Sharpen, "Apply the sharpen filter")
	cmd.Flags().BoolVar(&flags.noEnhance, "no-enhance", false, "Skip enhancement and keep the original pixels")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Images processed in parallel (0 = number of CPUs)")

	return cmd
}

func executeScan(ctx context.Context, cfg config.Config, sources []string, output, reportPath string) error {
	pipelineOpts, err := cfg.PipelineOptions()
	if err != nil {
		return err
	}
	pipeline, err := enhance.New(pipelineOpts)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	slog.Info("Starting scan", "images", len(sources), "enhance", pipelineOpts.Enabled,
		"brightness", pipelineOpts.Settings.Brightness, "contrast", pipelineOpts.Settings.Contrast,
		"sharpen", pipelineOpts.Settings.Sharpen)

	start := time.Now()
	inputs := loadInputs(ctx, sources, images.NewFetcher(cfg.MaxUploadBytes()))
	outcomes := scanner.New(pipeline, cfg.Workers).ProcessBatch(ctx, inputs)
	pages := scanner.Pages(outcomes)

	if reportPath != "" {
		rep := report.Build(pipelineOpts, cfg.Workers, output, outcomes, time.Since(start))
		if err := report.SaveToYAML(reportPath, rep); err != nil {
			return err
		}
		slog.Info("Report saved", "path", reportPath)
	}

	if len(pages) == 0 {
		return fmt.Errorf("no images could be processed")
	}

	imgs := make([][]byte, len(pages))
	for i, page := range pages {
		imgs[i] = page.Image
	}
	doc, err := pdfdoc.NewProcessor(cfg.TempDir).AssembleImages(imgs)
	if err != nil {
		return fmt.Errorf("failed to assemble PDF: %w", err)
	}

	if err := os.WriteFile(output, doc, 0644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	absPath, _ := filepath.Abs(output)
	fmt.Printf("\n✅ %d of %d pages saved to: %s\n", len(pages), len(sources), absPath)
	for _, f := range scanner.Failures(outcomes) {
		fmt.Printf("   ⚠️  skipped %s: %s\n", f.Source, f.Error)
	}

	return nil
}

// loadInputs reads every source in order. A source that cannot be read
// carries its error so that it is reported with the rest of the batch.
func loadInputs(ctx context.Context, sources []string, fetcher *images.Fetcher) []scanner.Input {
	inputs := make([]scanner.Input, len(sources))
	for i, src := range sources {
		inputs[i] = scanner.Input{Name: src}
		if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
			img, err := fetcher.Fetch(ctx, src)
			if err != nil {
				inputs[i].Err = err
				continue
			}
			inputs[i] = scanner.Input{Name: img.Name, ContentType: img.ContentType, Data: img.Data}
			continue
		}
		data, err := os.ReadFile(src)
		if err != nil {
			inputs[i].Err = fmt.Errorf("failed to read image: %w", err)
			continue
		}
		inputs[i].Data = data
	}
	return inputs
}
