package config

import (
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// isolateXDG points config and data lookups at temp dirs.
func isolateXDG(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
}

func TestInitConfig_Success(t *testing.T) {
	isolateXDG(t)

	configPath, err := InitConfig(false)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	if configPath != GetDefaultConfigPath() {
		t.Errorf("InitConfig path = %q, want %q", configPath, GetDefaultConfigPath())
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	contentStr := string(content)
	for _, section := range []string{
		"# BadgeHub Configuration File",
		"logging:",
		"database:",
		"uploads:",
		"catalog:",
		"stats_cache:",
		"reports:",
	} {
		if !strings.Contains(contentStr, section) {
			t.Errorf("Config file missing section: %s", section)
		}
	}

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		t.Fatalf("Generated config is not valid YAML: %v", err)
	}
}

func TestInitConfig_AlreadyExists(t *testing.T) {
	isolateXDG(t)

	if _, err := InitConfig(false); err != nil {
		t.Fatalf("First InitConfig failed: %v", err)
	}

	_, err := InitConfig(false)
	if err == nil {
		t.Fatal("Expected error when config already exists")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("Expected 'already exists' error, got: %v", err)
	}
}

func TestInitConfig_Force(t *testing.T) {
	isolateXDG(t)

	configPath, err := InitConfig(false)
	if err != nil {
		t.Fatalf("First InitConfig failed: %v", err)
	}
	if err := os.WriteFile(configPath, []byte("modified"), 0600); err != nil {
		t.Fatalf("Failed to modify config: %v", err)
	}

	if _, err := InitConfig(true); err != nil {
		t.Fatalf("InitConfig with force failed: %v", err)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}
	if string(content) == "modified" {
		t.Error("Config file was not overwritten with force")
	}
}

func TestGeneratedConfigIsLoadable(t *testing.T) {
	isolateXDG(t)

	configPath, err := InitConfig(false)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Generated config failed to load: %v", err)
	}
	if cfg.Database.Engine != EngineSQLite {
		t.Errorf("Generated engine = %q, want sqlite", cfg.Database.Engine)
	}
	if len(cfg.Catalog.Badges) == 0 || len(cfg.Catalog.Categories) == 0 {
		t.Errorf("Generated catalog is empty: %+v", cfg.Catalog)
	}
	if !cfg.Database.Postgres.AutoMigrate {
		t.Error("Generated postgres section should enable auto_migrate")
	}
}
