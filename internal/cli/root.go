// Package cli implements the bot's command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/community-bot/internal/config"
	"github.com/spec-kit/community-bot/internal/observability"
)

var envFile string

// RootCmd is the top-level command. Without a subcommand it serves.
var RootCmd = &cobra.Command{
	Use:          "bot",
	Short:        "Community bot for tickets, sessions and vehicle registration",
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment from this file before reading configuration")
}

// bootstrap loads configuration and builds the logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	if envFile != "" {
		if err := config.LoadEnvFile(envFile); err != nil {
			return nil, nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}
