package di

import (
	"context"
	"fmt"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"boardroom-backend/internal/config"
)

// New builds a container and keeps its cleanup for Shutdown.
func New(ctx context.Context, cfg *config.Config, loader *config.Loader) (*Container, error) {
	c, cleanup, err := InitializeContainer(ctx, cfg, loader)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}
	c.cleanup = cleanup
	return c, nil
}

// GetRouter returns the configured router.
func (c *Container) GetRouter() *chi.Mux {
	return c.Router
}

// Shutdown stops the config watcher, closes the store, flushes traces and
// syncs the logger, in that order. Later calls do nothing.
func (c *Container) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.shutdownOnce.Do(func() {
			c.Logger.Info("Shutting down container")
			if c.cleanup != nil {
				c.cleanup()
			}
		})
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		c.Logger.Warn("Container shutdown interrupted", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}
