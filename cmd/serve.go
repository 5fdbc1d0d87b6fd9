package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"sticker-studio/app"
	"sticker-studio/config"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the print fulfillment HTTP service",
		Example: `  # Start on PORT from the environment (default 8080)
  sticker-studio serve

  # Start on a custom port
  sticker-studio serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			application, err := app.Initialize(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer application.Close()

			// Listen on 0.0.0.0 to accept connections from all interfaces (required for Docker/Render)
			addr := "0.0.0.0:" + cfg.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           application.Handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			serverErr := make(chan error, 1)
			go func() {
				log.Printf("Server starting on %s", addr)
				log.Printf("Print job endpoint: POST http://localhost:%s/admin/print-jobs", cfg.Port)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				log.Printf("Shutting down server...")
				// In-flight builds get the print timeout to finish
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.PrintTimeout)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					log.Printf("❌ Server shutdown failed: %v", err)
					return err
				}
				log.Printf("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides PORT)")

	return cmd
}
