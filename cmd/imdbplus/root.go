package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "imdbplus",
		Short:         "IMDb+ scraper companion",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configFlag)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newServeCommand(&configFlag))
	rootCmd.AddCommand(newSyncCommand(&configFlag))
	rootCmd.AddCommand(newOptionsCommand(&configFlag))
	rootCmd.AddCommand(newReplacementsCommand(&configFlag))
	rootCmd.AddCommand(newSourcesCommand(&configFlag))

	return rootCmd
}
