package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/badgehub/badgehub/internal/bytesize"
	"github.com/badgehub/badgehub/pkg/metadata/statscache"
	"github.com/badgehub/badgehub/pkg/metadata/store/gormstore"
	"github.com/badgehub/badgehub/pkg/metadata/store/postgres"
)

// EnvPrefix prefixes every environment override, e.g. BADGEHUB_LOGGING_LEVEL.
const EnvPrefix = "BADGEHUB"

// Config represents the BadgeHub configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (BADGEHUB_*)
//  2. Configuration file (YAML)
//  3. Default values
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry tracing and Pyroscope profiling
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// ShutdownTimeout bounds graceful shutdown of `badgehub serve`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Metrics configures Prometheus collection and the ops HTTP server
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Database selects and configures the metadata engine
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Uploads holds limits enforced before file metadata is recorded
	Uploads UploadsConfig `mapstructure:"uploads" yaml:"uploads"`

	// Catalog lists the known badges and categories
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`

	// StatsCache configures the optional Redis cache in front of GetStats
	StatsCache StatsCacheConfig `mapstructure:"stats_cache" yaml:"stats_cache"`

	// Reports configures the periodic report refresh
	Reports ReportsConfig `mapstructure:"reports" yaml:"reports"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	// Default: "localhost:4317"
	Endpoint string `mapstructure:"endpoint" validate:"required_if=Enabled true" yaml:"endpoint"`

	// Insecure controls whether to use a non-TLS connection to the collector
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server URL
	// Default: "http://localhost:4040"
	Endpoint string `mapstructure:"endpoint" validate:"required_if=Enabled true" yaml:"endpoint"`

	// ProfileTypes specifies which profile types to collect
	ProfileTypes []string `mapstructure:"profile_types" validate:"dive,oneof=cpu alloc_objects alloc_space inuse_objects inuse_space goroutines mutex_count mutex_duration block_count block_duration" yaml:"profile_types"`
}

// MetricsConfig configures Prometheus metrics and the ops HTTP server.
// The server always answers /healthz; /metrics is served only when Enabled.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port of the ops server
	// Default: 9090
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// Engine names accepted by database.engine.
const (
	EngineSQLite       = "sqlite"
	EngineGORMPostgres = "gorm-postgres"
	EnginePostgres     = "postgres"
)

// DatabaseConfig selects the metadata engine. Only the section matching
// Engine is used.
type DatabaseConfig struct {
	// Engine is one of sqlite, gorm-postgres or postgres
	Engine string `mapstructure:"engine" validate:"required,oneof=sqlite gorm-postgres postgres" yaml:"engine"`

	SQLite       gormstore.SQLiteConfig   `mapstructure:"sqlite" validate:"-" yaml:"sqlite"`
	GORMPostgres gormstore.PostgresConfig `mapstructure:"gorm_postgres" validate:"-" yaml:"gorm_postgres"`
	Postgres     postgres.Config          `mapstructure:"postgres" validate:"-" yaml:"postgres"`
}

// UploadsConfig holds upload limits.
type UploadsConfig struct {
	// MaxFileSize is the largest file whose metadata may be recorded
	// Supports human-readable formats: "32Mi", "10MB"
	// Default: 32Mi
	MaxFileSize bytesize.ByteSize `mapstructure:"max_file_size" validate:"gte=0" yaml:"max_file_size"`
}

// CatalogConfig lists the badges and categories projects may reference.
type CatalogConfig struct {
	Badges     []string `mapstructure:"badges" validate:"dive,required" yaml:"badges"`
	Categories []string `mapstructure:"categories" validate:"dive,required" yaml:"categories"`
}

// StatsCacheConfig enables the Redis stats cache.
type StatsCacheConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	statscache.Config `mapstructure:",squash" validate:"-" yaml:",inline"`
}

// ReportsConfig configures report maintenance.
type ReportsConfig struct {
	// RefreshInterval is how often `badgehub serve` calls RefreshReports.
	// Zero disables the periodic refresh.
	// Default: 1h
	RefreshInterval time.Duration `mapstructure:"refresh_interval" validate:"gte=0" yaml:"refresh_interval"`
}

// Load reads configPath (or the default location when empty), applies
// BADGEHUB_* overrides and defaults, and validates the result. A missing
// file yields defaults plus environment.
func Load(configPath string) (*Config, error) {
	v := newViper(configPath)
	if _, err := readIfPresent(v); err != nil {
		return nil, err
	}
	return decode(v)
}

// MustLoad is Load for commands that need a file on disk. The error tells
// the operator how to create one.
func MustLoad(configPath string) (*Config, error) {
	switch {
	case configPath == "" && !DefaultConfigExists():
		return nil, fmt.Errorf("no configuration file at %s\n\n"+
			"Create one with:\n  badgehub config init\n\n"+
			"or pass an explicit file:\n  badgehub <command> --config /path/to/config.yaml",
			GetDefaultConfigPath())
	case configPath == "":
		configPath = GetDefaultConfigPath()
	default:
		if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("configuration file %s does not exist\n\n"+
				"Create it with:\n  badgehub config init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// Watch calls onChange with every valid reload of configPath. Edits that
// fail to decode or validate go to onError and leave the old settings.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper(configPath)
	found, err := readIfPresent(v)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("cannot watch missing configuration file %s", configPath)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		switch {
		case err == nil:
			onChange(cfg)
		case onError != nil:
			onError(err)
		}
	})
	v.WatchConfig()
	return nil
}

// SaveConfig writes cfg to path as YAML.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return SaveRaw(path, data)
}

// SaveRaw writes data to path, creating parent directories. The file is
// owner-only since it may hold database and Redis passwords.
func SaveRaw(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := new(Config)
	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHooks())); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v, "", reflect.TypeFor[Config]())

	if configPath == "" {
		v.AddConfigPath(GetConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		return v
	}
	v.SetConfigFile(configPath)
	return v
}

// bindEnvKeys registers every leaf key of t so BADGEHUB_* variables apply
// even when the file omits the key.
func bindEnvKeys(v *viper.Viper, prefix string, t reflect.Type) {
	for i := range t.NumField() {
		field := t.Field(i)
		name, opts, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		switch {
		case opts == "squash":
			bindEnvKeys(v, prefix, field.Type)
			continue
		case name == "" || name == "-":
			continue
		}

		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeFor[time.Time]() {
			bindEnvKeys(v, key, field.Type)
			continue
		}
		_ = v.BindEnv(key)
	}
}

// readIfPresent reports whether a config file was read. Absence is not an
// error.
func readIfPresent(v *viper.Viper) (bool, error) {
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &notFound), errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("read config file: %w", err)
	}
}

// decodeHooks turns "32Mi" and "30s" style strings, and bare numbers, into
// sizes and durations. Comma-separated environment values become slices.
func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		unitHook(reflect.TypeFor[bytesize.ByteSize](), func(s string) (any, error) { return bytesize.Parse(s) }),
		unitHook(reflect.TypeFor[time.Duration](), func(s string) (any, error) { return time.ParseDuration(s) }),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// unitHook decodes into target from a string via parse, or from any
// integer or float (YAML numbers arrive as int or float64).
func unitHook(target reflect.Type, parse func(string) (any, error)) mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != target {
			return data, nil
		}
		switch n := data.(type) {
		case string:
			return parse(n)
		case int:
			return reflect.ValueOf(int64(n)).Convert(target).Interface(), nil
		case int64, uint64, float64:
			return reflect.ValueOf(n).Convert(target).Interface(), nil
		default:
			return data, nil
		}
	}
}

// GetConfigDir is $XDG_CONFIG_HOME/badgehub, else ~/.config/badgehub, else
// the working directory.
func GetConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "badgehub")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "badgehub")
	}
	return "."
}

// GetDefaultConfigPath is config.yaml inside GetConfigDir.
func GetDefaultConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether GetDefaultConfigPath is present.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
