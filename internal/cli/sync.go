package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/community-bot/internal/bot"
	"github.com/spec-kit/community-bot/internal/platform/discord"
)

var syncGlobal bool

func init() {
	cmd := &cobra.Command{
		Use:   "sync-commands",
		Short: "Register slash commands and exit",
		RunE:  runSync,
	}
	cmd.Flags().BoolVar(&syncGlobal, "global", false, "Register globally even when TEST_GUILD_ID is set")

	RootCmd.AddCommand(cmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	client, err := discord.New(cfg.Discord, logger)
	if err != nil {
		return err
	}
	guildID := cfg.Discord.CommandGuildID
	if syncGlobal {
		guildID = ""
	}
	n, err := client.SyncCommands(cmd.Context(), guildID, bot.Commands())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "registered %d commands\n", n)
	return nil
}
