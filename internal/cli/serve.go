package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"panel-cli/internal/server"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the panel server (configured via PANEL_* env vars)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.ConfigFromEnv()
			if err != nil {
				return writeErr(cmd, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			storage, err := server.OpenStorage(ctx, cfg.DBPath)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer storage.Close()

			logger := log.New(cmd.ErrOrStderr(), "panel ", log.LstdFlags)
			srv, err := server.New(cfg, storage, logger)
			if err != nil {
				return writeErr(cmd, err)
			}

			httpSrv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Printf("listening on %s (db %s)", cfg.Addr, cfg.DBPath)
				errCh <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return writeErr(cmd, err)
				}
				return nil
			case <-ctx.Done():
			}

			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(shutCtx); err != nil {
				return writeErr(cmd, err)
			}
			logger.Printf("shut down")
			return nil
		},
	}
}
