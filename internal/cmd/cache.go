package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the chamber cache files",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the cached event logs",
	Long: `Remove both chambers' cache files so the next run starts from an empty
event log. Useful when a feed change has left stale events behind.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, logger, err := loadSettings()
		if err != nil {
			return err
		}
		clearCaches(settings, logger)
		return nil
	},
}
