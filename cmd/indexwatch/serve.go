package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/indexwatch/internal/metrics"
	chiTransport "github.com/kailas-cloud/indexwatch/internal/transport/chi"
	"github.com/kailas-cloud/indexwatch/internal/version"
)

func serveCmd(opts *globalOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the verification API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, func(ctx context.Context, a *app) error {
				if port > 0 {
					a.cfg.HTTP.Port = port
				}
				return a.serve(ctx)
			})
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port, overrides http.port")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	a.logger.Info("Starting indexwatch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", a.cfg.HTTP.Port),
		zap.String("core", a.cfg.CoreURL()),
		zap.Strings("history_addrs", a.cfg.History.Addrs),
	)

	svc := chiTransport.Services{
		Poller:    a.poller,
		Playback:  a.playback,
		Documents: a.docs,
		Queries:   a.index,
		Health:    a.health,
	}
	// Pass nil interface (not typed nil pointer!) if history is not configured.
	if a.history != nil {
		svc.History = a.history
	}
	server := chiTransport.NewServer(svc, a.logger)
	metrics.RegisterHTTPMetrics()

	addr := fmt.Sprintf(":%d", a.cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, a.cfg.Auth.APIKeys, a.logger),
		ReadTimeout:  time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: a.cfg.WriteTimeout(),
	}
	if longest := a.cfg.LongestRequest(); a.cfg.WriteTimeout() <= longest {
		a.logger.Warn("http.write_timeout_sec is shorter than the longest wait or played request; responses may be cut off",
			zap.Duration("write_timeout", a.cfg.WriteTimeout()),
			zap.Duration("longest_request", longest),
		)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Error during shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	a.logger.Info("Server stopped gracefully")
	return nil
}
