package commands

import (
	"context"
	"fmt"

	"github.com/badgehub/badgehub/internal/logger"
	"github.com/badgehub/badgehub/internal/telemetry"
	"github.com/badgehub/badgehub/pkg/config"
	"github.com/badgehub/badgehub/pkg/metadata"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// loadConfig loads the config named by --config and sets up logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return nil, err
	}
	if err := InitLogger(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withService loads configuration, opens the metadata service and runs fn
// under a CLI span named after the command.
func withService(ctx context.Context, command string, fn func(ctx context.Context, svc *metadata.Service) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, span := telemetry.StartCLISpan(ctx, command)
	defer span.End()

	svc, err := config.CreateService(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			logger.Warn("Failed to close metadata store", logger.Err(cerr))
		}
	}()

	err = fn(ctx, svc)
	telemetry.RecordError(ctx, err)
	return err
}

// formatOptionalInt renders a nullable revision pointer.
func formatOptionalInt(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *p)
}
