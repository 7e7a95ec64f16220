package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default from HTTP_ADDR)")
	return cmd
}

func (c *cli) runServe(ctx context.Context, addr string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger.Info("Lexiconaut starting...",
		zap.String("log_level", c.cfg.Logging.Level),
		zap.String("history_backend", c.cfg.History.Backend),
	)

	container, err := c.build(ctx, app.Options{WithSessions: true})
	if err != nil {
		return err
	}
	defer container.Close()

	server, err := container.NewWebServer(addr)
	if err != nil {
		c.logger.Error("Failed to initialize web server", zap.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	var runErr error
	select {
	case sig := <-sigCh:
		c.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case <-ctx.Done():
		c.logger.Info("Context cancelled, shutting down")
	case runErr = <-errCh:
		if runErr != nil {
			c.logger.Error("Web server error", zap.Error(runErr))
			return runErr
		}
	}

	c.logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		c.logger.Error("Error during shutdown", zap.Error(err))
		return err
	}

	c.logger.Info("Shutdown complete")
	return nil
}
