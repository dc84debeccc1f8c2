package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/badgehub/badgehub/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample configuration file",
	Long: `Write a commented sample configuration to --config, or to
$XDG_CONFIG_HOME/badgehub/config.yaml when no path is given.

An existing file is kept unless --force is set.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath(cmd)

	var err error
	if path != "" {
		err = config.InitConfigToPath(path, initForce)
	} else {
		path, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file created at: %s\n", path)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Pick a database engine and edit its section")
	_, _ = fmt.Fprintf(out, "  2. Create the schema: badgehub migrate --config %s\n", path)
	return nil
}
