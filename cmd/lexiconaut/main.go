package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/app"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/config"
	"github.com/LLeon360/Lexiconaut-AI-Library-Namer/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries what PersistentPreRunE prepares for every subcommand.
type cli struct {
	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "lexiconaut",
		Short:         "Generate creative library names with a hosted language model",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			c.cfg = cfg
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runServe(cmd.Context(), "")
		},
	}

	root.AddCommand(
		newServeCmd(c),
		newGenerateCmd(c),
		newHistoryCmd(c),
	)
	return root
}

// build assembles services with a bounded startup deadline.
func (c *cli) build(ctx context.Context, opts app.Options) (*app.Container, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	buildCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	container, err := app.Build(buildCtx, c.cfg, c.logger, opts)
	if err != nil {
		c.logger.Error("Failed to assemble application services", zap.Error(err))
		return nil, err
	}
	return container, nil
}
