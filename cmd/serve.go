package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"screenlens/internal/config"
	"screenlens/internal/handlers"
)

func newServeCmd() *cobra.Command {
	var port string
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the screenshot library web server",
		Long: `Starts the Screenlens web interface on the specified port.

Upload screenshots through the UI or POST /api/upload, then query the
library with natural language via POST /api/search.`,
		Example: `  # Start server on default port 8888
  screenlens serve

  # Start server on custom port
  screenlens serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			handler := handlers.New(cfg)

			mux := http.NewServeMux()
			mux.HandleFunc("/api/upload", handler.HandleUpload)
			mux.HandleFunc("/api/search", handler.HandleSearch)
			mux.HandleFunc("/api/images", handler.HandleImages)
			mux.HandleFunc("/api/progress", handler.HandleProgress)
			mux.HandleFunc("/", handler.HandleStatic)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Screenlens interface available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
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

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")

	return cmd
}
