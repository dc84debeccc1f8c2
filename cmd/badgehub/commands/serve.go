package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/badgehub/badgehub/internal/logger"
	"github.com/badgehub/badgehub/internal/telemetry"
	"github.com/badgehub/badgehub/pkg/api"
	"github.com/badgehub/badgehub/pkg/config"
	"github.com/badgehub/badgehub/pkg/metadata"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ops server and background jobs",
	Long: `Open the metadata store and keep it healthy until interrupted.

serve exposes /healthz, /healthz/ready and /metrics on metrics.port,
refreshes aggregate reports every reports.refresh_interval, exports traces
and profiles when telemetry is enabled, and applies logging.level changes
written to the config file without a restart.

Examples:
  badgehub serve
  BADGEHUB_LOGGING_LEVEL=DEBUG badgehub serve --config /etc/badgehub/config.yaml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "badgehub",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		// ctx is cancelled by now; flushing needs its own deadline.
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := telemetryShutdown(flushCtx); err != nil {
			logger.Error("Telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "badgehub",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("Profiling shutdown error", logger.Err(err))
		}
	}()

	logger.Info("Starting BadgeHub", logger.KeyVersion, Version, logger.Engine(cfg.Database.Engine))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", logger.KeyAddress, cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", logger.KeyAddress, cfg.Telemetry.Profiling.Endpoint)
	}

	config.InitializeMetrics(cfg)

	svc, err := config.CreateService(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Failed to close metadata store", logger.Err(err))
		}
	}()

	watchConfig()

	server := api.NewServer(api.Config{Port: cfg.Metrics.Port}, svc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx, cfg.ShutdownTimeout)
	})
	g.Go(func() error {
		refreshReportsLoop(gctx, svc, cfg.Reports.RefreshInterval)
		return nil
	})

	err = g.Wait()
	logger.Info("BadgeHub stopped")
	return err
}

// refreshReportsLoop calls RefreshReports every interval until ctx ends.
// Failures are logged and retried on the next tick.
func refreshReportsLoop(ctx context.Context, svc *metadata.Service, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Report refresh scheduled", logger.KeyInterval, interval.String())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			if err := svc.RefreshReports(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("Report refresh failed", logger.Err(err))
				continue
			}
			logger.Debug("Reports refreshed", logger.Elapsed(start))
		}
	}
}

// watchConfig applies logging changes from the config file. Other settings
// need a restart.
func watchConfig() {
	path := GetConfigFile()
	if path == "" {
		if !config.DefaultConfigExists() {
			return
		}
		path = config.GetDefaultConfigPath()
	}

	err := config.Watch(path,
		func(cfg *config.Config) {
			logger.SetLevel(cfg.Logging.Level)
			logger.SetFormat(cfg.Logging.Format)
			logger.Info("Configuration reloaded", "level", cfg.Logging.Level)
		},
		func(err error) {
			logger.Warn("Ignoring invalid configuration change", logger.Err(err))
		},
	)
	if err != nil {
		logger.Warn("Config hot reload disabled", logger.Err(err))
	}
}
