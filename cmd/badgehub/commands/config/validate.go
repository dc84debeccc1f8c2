package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/badgehub/badgehub/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Load the configuration, apply environment overrides and defaults, and
report the first problem found.

Examples:
  badgehub config validate
  badgehub config validate --config /etc/badgehub/config.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.MustLoad(configPath(cmd))
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid (engine: %s)\n", cfg.Database.Engine)
		return nil
	},
}
