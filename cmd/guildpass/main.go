package main

import (
	"os"

	"github.com/spf13/cobra"

	"guildpass/internal/interfaces/cli/migrate"
	"guildpass/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "guildpass",
		Short: "GuildPass - subscription to Discord role reconciliation",
		Long:  `GuildPass keeps Discord roles in sync with paid subscriptions, linking customers to their Discord accounts and reconciling roles as subscriptions change.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
