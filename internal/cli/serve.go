package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"boardroom-backend/internal/config"
	"boardroom-backend/internal/di"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, loader, err := opts.load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Serve(ctx, cfg, loader)
		},
	}
}

// Serve runs the API until ctx is cancelled, then drains in-flight requests
// for up to server.shutdown_timeout. Zero waits for them without a limit.
func Serve(ctx context.Context, cfg *config.Config, loader *config.Loader) error {
	container, err := di.New(ctx, cfg, loader)
	if err != nil {
		return err
	}
	log := container.Logger

	var handler http.Handler = container.Router
	if cfg.Server.MaxRequestSize > 0 {
		handler = http.MaxBytesHandler(handler, cfg.Server.MaxRequestSize)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server",
			zap.String("address", srv.Addr),
			zap.String("environment", string(cfg.Environment)),
			zap.String("store", cfg.Store.Driver),
		)
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
			log.Error("Server failed", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithCancel(context.Background())
	if cfg.Server.ShutdownTimeout > 0 {
		shutdownCtx, cancel = context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	}
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}
	if err := container.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = err
	}
	return serveErr
}
