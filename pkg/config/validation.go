package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags first, then the engine and cache sections
// that only apply when selected.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := validateDatabase(&cfg.Database); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if cfg.StatsCache.Enabled {
		if err := cfg.StatsCache.Validate(); err != nil {
			return fmt.Errorf("stats_cache: %w", err)
		}
	}
	return nil
}

func validateDatabase(cfg *DatabaseConfig) error {
	switch cfg.Engine {
	case EngineSQLite, EngineGORMPostgres:
		return cfg.gormConfig().Validate()
	case EnginePostgres:
		return cfg.Postgres.Validate()
	default:
		return fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}

// formatValidationError turns validator errors into one line per field,
// e.g. "Config.Logging.Level: failed 'oneof' (DEBUG INFO WARN ERROR ...)".
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s: failed '%s'", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg += fmt.Sprintf(" (%s)", fe.Param())
		}
		msgs = append(msgs, msg)
	}
	return errors.New(strings.Join(msgs, "; "))
}
