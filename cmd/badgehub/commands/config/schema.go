package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/badgehub/badgehub/pkg/config"
)

var schemaOutput string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate JSON schema for IDE/validation",
	Long: `Print the JSON schema of the configuration file, or write it to --output.

Reference it from an editor for completion, for example with the
yaml-language-server modeline:

  # yaml-language-server: $schema=./badgehub.schema.json`,
	Args: cobra.NoArgs,
	RunE: runConfigSchema,
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaOutput, "output", "o", "", "Write the schema to this file instead of stdout")
}

func runConfigSchema(cmd *cobra.Command, args []string) error {
	data, err := config.Schema()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if schemaOutput == "" {
		_, err = cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	}
	if err := config.SaveRaw(schemaOutput, data); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Schema written to %s\n", schemaOutput)
	return nil
}
