// Package cli implements the mantrad command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mantrad",
	Short: "Adaptive mantra delivery daemon",
	Long: "Mantrad periodically delivers mantras to enrolled users, learns each\n" +
		"user's hourly availability from their responses, and adapts delivery\n" +
		"timing and cadence accordingly.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(enrollCmd)
	rootCmd.AddCommand(unenrollCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(themesCmd)
	rootCmd.AddCommand(respondCmd)
}
