package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/badgehub/badgehub/internal/logger"
	"github.com/badgehub/badgehub/pkg/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Bring the schema of the configured metadata engine up to date.

The sqlite and gorm-postgres engines migrate with GORM. The postgres engine
applies its embedded SQL migrations. Run this after upgrading BadgeHub.

Examples:
  # Migrate with the default config
  badgehub migrate

  # Migrate a specific deployment
  badgehub migrate --config /etc/badgehub/config.yaml`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger.Info("Running database migrations", logger.Engine(cfg.Database.Engine))
	if err := config.MigrateDatabase(cmd.Context(), &cfg.Database); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Migrations completed successfully (engine: %s)\n", cfg.Database.Engine)
	return nil
}
