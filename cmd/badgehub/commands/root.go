// Package commands implements the badgehub operator CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/badgehub/badgehub/cmd/badgehub/commands/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "badgehub",
	Short: "BadgeHub - app store metadata for electronic badges",
	Long: `BadgeHub keeps the revisioned metadata of badge apps: projects, their
draft and published versions, file records, registered badges, usage
events and per-project API tokens.

This tool operates the metadata store directly. It migrates the schema,
inspects and publishes projects, manages API tokens and runs the ops
server with health and metrics endpoints.

Use "badgehub [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once by main.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/badgehub/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(refreshReportsCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(config.Cmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}
