package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ifrc-nsd/nsdata/cmd/nsdata/cmd/datasets"
	"github.com/ifrc-nsd/nsdata/cmd/nsdata/cmd/fetch"
	"github.com/ifrc-nsd/nsdata/cmd/nsdata/cmd/identity"
	"github.com/ifrc-nsd/nsdata/cmd/nsdata/cmd/indicators"
	"github.com/ifrc-nsd/nsdata/cmd/nsdata/cmd/registry"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(datasets.NewCommand(a))
	rootCmd.AddCommand(fetch.NewCommand(a))
	rootCmd.AddCommand(indicators.NewCommand(a))

	// Identity commands
	rootCmd.AddCommand(registry.NewCommand(a))
	rootCmd.AddCommand(identity.NewCleanCommand(a))
	rootCmd.AddCommand(identity.NewMapCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.newVersionCommand())
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "nsdata %s (commit %s, built %s)\n", a.version, a.commit, a.date)
			return err
		},
	}
}
