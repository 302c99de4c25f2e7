package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/nlpkit/internal/handlers"
	"github.com/lehigh-university-libraries/nlpkit/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var port string
	var history int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Starts the nlpkit HTTP API on the specified port.

Endpoints:
  POST   /api/analyze         {"task", "method", "text", "count"} -> analysis
  GET    /api/methods         methods and availability per task
  GET    /api/analyses        recent analyses
  GET    /api/analyses/{id}   one analysis
  DELETE /api/analyses/{id}   forget an analysis
  GET    /healthcheck`,
		Example: `  # Start server on default port 8888
  nlpkit serve

  # Start server on custom port
  nlpkit serve --port 3000`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{logLevelAnnotation: "info"},
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.buildAllTasks()
			if err != nil {
				return err
			}
			defer closeTasks(tasks...)

			handler := handlers.New(storage.New(history), tasks...)

			// Set up routes
			mux := http.NewServeMux()
			handler.Routes(mux)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("nlpkit API available", "addr", addr, "url", "http://localhost"+addr)
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
	cmd.Flags().IntVar(&history, "history", storage.DefaultLimit, "Number of recent analyses kept in memory")

	return cmd
}
