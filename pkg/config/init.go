package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/badgehub/badgehub/pkg/metadata/store/gormstore"
	"github.com/badgehub/badgehub/pkg/metadata/store/postgres"
)

const configHeader = `# BadgeHub Configuration File
#
# Every key can be overridden from the environment with the BADGEHUB_ prefix,
# e.g. BADGEHUB_LOGGING_LEVEL=DEBUG or BADGEHUB_DATABASE_ENGINE=postgres.
#
# database.engine selects the metadata engine:
#   sqlite         embedded file, GORM
#   gorm-postgres  PostgreSQL through GORM
#   postgres       PostgreSQL through pgx with versioned migrations
#
`

// sampleConfig is the configuration written by `badgehub config init`.
func sampleConfig() *Config {
	cfg := GetDefaultConfig()

	cfg.Database.GORMPostgres = gormstore.PostgresConfig{
		Host:     "localhost",
		Database: "badgehub",
		User:     "badgehub",
	}
	cfg.Database.Postgres = postgres.Config{
		Host:        "localhost",
		Database:    "badgehub",
		User:        "badgehub",
		AutoMigrate: true,
	}
	cfg.Database.Postgres.ApplyDefaults()

	cfg.Catalog = CatalogConfig{
		Badges:     []string{"mch2022", "troopers23", "why2025"},
		Categories: []string{"Uncategorised", "Event related", "Games", "Graphics", "Hardware", "Utility", "Wearable", "Data", "Silly", "Hacking", "Interpreter"},
	}

	cfg.StatsCache.ApplyDefaults()
	return cfg
}

// InitConfig writes a sample configuration to the default location and
// returns its path. An existing file is only replaced when force is set.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a sample configuration to path.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(sampleConfig()); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := SaveRaw(path, buf.Bytes()); err != nil {
		return err
	}
	return nil
}
