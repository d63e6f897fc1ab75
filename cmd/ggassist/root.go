package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ggassist",
		Short: "GG-Assist - chat assistant for your inbox",
		Long: `GG-Assist is a chat assistant that drives a locally running email
backend. Ask it about your inbox and it will summarize emails, suggest
labels, or pull calendar events out of them.

The backend service must be running (default: http://localhost:5000).`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newChatCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newEmailsCommand())
	cmd.AddCommand(newSessionCommand())
	cmd.AddCommand(newCacheCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
