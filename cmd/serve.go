package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/pdfscan/internal/handlers"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		port      string
		staticDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the scanner and PDF tools",
		Long: `Starts the pdfscan web interface and JSON API on the specified port.

Scan sessions collect enhanced page images in memory until they are
assembled into a PDF. The /api/tools endpoints run the PDF utilities on
uploaded documents.`,
		Example: `  # Start server on default port 8888
  pdfscan serve

  # Start server on custom port
  pdfscan serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			handler := handlers.New(cfg)
			handler.SetStaticDir(staticDir)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/scan", handler.HandleScan)
			mux.HandleFunc("/api/sessions", handler.HandleSessions)
			mux.HandleFunc("/api/sessions/", handler.HandleSessionDetail)
			mux.HandleFunc("/api/tools/", handler.HandleTools)
			mux.HandleFunc("/", handler.HandleStatic)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("pdfscan interface available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVar(&staticDir, "static", "static", "Directory holding the web interface files")

	return cmd
}
