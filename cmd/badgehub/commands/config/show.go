package config

import (
	"github.com/spf13/cobra"

	"github.com/badgehub/badgehub/internal/cli/output"
	"github.com/badgehub/badgehub/pkg/config"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Display the configuration after environment overrides and defaults.

By default outputs YAML format. Use --output to change format.

Examples:
  badgehub config show
  badgehub config show --output json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(configPath(cmd))
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	if format == output.FormatJSON {
		return output.PrintJSON(cmd.OutOrStdout(), cfg)
	}
	return output.PrintYAML(cmd.OutOrStdout(), cfg)
}
