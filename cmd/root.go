package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/pdfscan/internal/config"
	"github.com/spf13/cobra"
)

// rootOptions is shared by every subcommand; cfg is populated before any
// subcommand runs.
type rootOptions struct {
	configPath string
	verbose    bool
	cfg        config.Config
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "pdfscan",
		Short: "Document scanner and PDF toolkit",
		Long: `pdfscan turns photographed or scanned pages into clean PDFs and edits
existing PDFs.

Images are enhanced with a brightness/contrast remap and an optional
sharpen filter before they are assembled into a document. The pdf
subcommands merge, split, rotate, stamp and otherwise rework PDF files.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.verbose {
				cfg.LogLevel = "debug"
			}
			level, err := config.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "pdfscan.yaml", "Path to the YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newScanCmd(opts))
	cmd.AddCommand(newPDFCmd(opts))

	return cmd
}
