package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Running it without a subcommand
// starts the HTTP server.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "gemrealm",
		Short:        "gemrealm account registration server",
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
