package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/sppb/internal/adapters/http/api"
	"github.com/okian/sppb/internal/adapters/http/swagger"
	"github.com/okian/sppb/pkg/logger"
)

// HTTP server timeouts. Writes wait for a generation call.
const (
	readTimeout       = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	writeTimeoutSlack = 10 * time.Second
)

type serveFlags struct {
	addr string
}

func newServeCmd(e *env) *cobra.Command {
	var flags serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve assessments over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := e.log.Named("http")
			addr := e.cfg.Addr
			if flags.addr != "" {
				addr = flags.addr
			}

			p, err := openPipeline(ctx, e.cfg, e.log)
			if err != nil {
				return err
			}
			defer func() {
				if err := p.Close(); err != nil {
					e.log.Error(ctx, "close rule store", logger.Error(err))
				}
			}()

			mux := http.NewServeMux()
			swagger.Register(ctx, mux)
			api.NewServer(p.runner, p.store, p.runner).Register(ctx, mux)

			srv := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadTimeout:       readTimeout,
				WriteTimeout:      e.cfg.GenerationTimeout() + writeTimeoutSlack,
				IdleTimeout:       idleTimeout,
				ReadHeaderTimeout: readHeaderTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info(ctx, "starting HTTP server", logger.String("addr", addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			log.Info(ctx, "shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error(ctx, "server shutdown failed", logger.Error(err))
				return err
			}
			log.Info(ctx, "server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address (overrides addr)")
	return cmd
}
