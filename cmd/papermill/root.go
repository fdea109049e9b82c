package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var apiFlag string
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "papermill",
		Short:         "Papermill document conversion CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&apiFlag, "api", "", "Base URL of the papermill daemon API")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newSubmitCommand(&apiFlag, &configFlag))
	rootCmd.AddCommand(newStatusCommand(&apiFlag, &configFlag))
	rootCmd.AddCommand(newListCommand(&apiFlag, &configFlag))
	rootCmd.AddCommand(newDownloadCommand(&apiFlag, &configFlag))
	rootCmd.AddCommand(newHealthCommand(&apiFlag, &configFlag))
	rootCmd.AddCommand(newConfigCommand(&configFlag))

	return rootCmd
}
