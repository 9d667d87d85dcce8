package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	app := &application{}

	rootCmd := &cobra.Command{
		Use:   "technest",
		Short: "Tech Nest device comparison backend",
		Long: `Tech Nest compares consumer devices category by category from their raw
specification strings, and serves comparisons, search and a catalog
assistant over HTTP.

Configuration is read from config.yaml, a .env file and TECHNEST_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsConfig(cmd) {
				return nil
			}
			return app.loadConfig()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(newServeCommand(app))
	rootCmd.AddCommand(newCompareCommand(app))
	rootCmd.AddCommand(newSearchCommand(app))
	rootCmd.AddCommand(newSeedCommand(app))

	return rootCmd
}

// skipsConfig reports whether cmd runs without loading configuration
func skipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return true
		}
	}
	return false
}
