package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	httpDelivery "github.com/technest/backend/internal/delivery/http"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(app *application) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Example: `  # Start on the configured port
  technest serve

  # Start on a custom port
  technest serve --port 9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.buildServices(ctx); err != nil {
				return err
			}
			if port != "" {
				app.cfg.Server.Port = port
			}

			handler := httpDelivery.NewHandler(httpDelivery.Services{
				Comparison: app.comparison,
				Search:     app.search,
				Chat:       app.chat,
			}, version, app.logger)
			router := httpDelivery.SetupRouter(app.cfg, handler, app.logger)

			addr := ":" + app.cfg.Server.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			serverErr := make(chan error, 1)
			go func() {
				app.logger.Info().
					Str("addr", addr).
					Str("environment", app.cfg.Server.Environment).
					Str("version", version).
					Msg("server listening")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-ctx.Done():
				app.logger.Info().Msg("shutting down server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					app.logger.Error().Err(err).Msg("server shutdown failed")
					return err
				}
				app.logger.Info().Msg("server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides server.port)")

	return cmd
}
