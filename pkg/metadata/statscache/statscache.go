// Package statscache puts a Redis read-through cache in front of GetStats.
//
// Stats are expensive on large hubs and tolerate staleness, so a cached
// snapshot is served until its TTL expires or RefreshReports drops it.
// Redis failures never fail a call: the cache logs, counts and falls
// through to the wrapped store.
package statscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/badgehub/badgehub/internal/logger"
	"github.com/badgehub/badgehub/internal/telemetry"
	"github.com/badgehub/badgehub/pkg/metadata"
)

const (
	// DefaultKey is the Redis key holding the stats snapshot.
	DefaultKey = "badgehub:stats"

	// DefaultTTL bounds how stale a served snapshot can be.
	DefaultTTL = 5 * time.Minute
)

// Metrics observes cache behavior. Implementations must accept a nil receiver.
type Metrics interface {
	RecordLookup(hit bool)
	RecordError(operation string)
	RecordInvalidation()
}

// Config configures the Redis connection and cache entry.
type Config struct {
	Addr        string        `mapstructure:"addr" yaml:"addr"`
	Username    string        `mapstructure:"username" yaml:"username,omitempty"`
	Password    string        `mapstructure:"password" yaml:"password,omitempty"`
	DB          int           `mapstructure:"db" yaml:"db"`
	Key         string        `mapstructure:"key" yaml:"key"`
	TTL         time.Duration `mapstructure:"ttl" yaml:"ttl"`
	DialTimeout time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
}

// ApplyDefaults fills in missing configuration with default values.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.Key == "" {
		c.Key = DefaultKey
	}
	if c.TTL == 0 {
		c.TTL = DefaultTTL
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TTL < 0 {
		return fmt.Errorf("invalid stats cache ttl: %s", c.TTL)
	}
	if c.DB < 0 {
		return fmt.Errorf("invalid redis db: %d", c.DB)
	}
	return nil
}

// Store wraps a MetadataStore and caches its stats. Every other operation
// goes straight to the wrapped store.
type Store struct {
	metadata.MetadataStore

	client  *redis.Client
	key     string
	ttl     time.Duration
	metrics Metrics
}

// New connects to Redis and wraps next. The connection is verified with a
// PING so misconfiguration surfaces at startup.
func New(ctx context.Context, next metadata.MetadataStore, cfg Config, m Metrics) (*Store, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("Stats cache connected", logger.KeyAddress, cfg.Addr, logger.KeyCache, cfg.Key)
	return NewWithClient(next, client, cfg, m), nil
}

// NewWithClient wraps next using an existing client. The Store takes
// ownership of client and closes it on Close.
func NewWithClient(next metadata.MetadataStore, client *redis.Client, cfg Config, m Metrics) *Store {
	cfg.ApplyDefaults()
	return &Store{
		MetadataStore: next,
		client:        client,
		key:           cfg.Key,
		ttl:           cfg.TTL,
		metrics:       m,
	}
}

// GetStats serves the cached snapshot, or computes and caches a fresh one.
func (s *Store) GetStats(ctx context.Context) (*metadata.Stats, error) {
	if stats, ok := s.lookup(ctx); ok {
		return stats, nil
	}

	stats, err := s.MetadataStore.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, stats)
	return stats, nil
}

// RefreshReports refreshes the wrapped store and drops the cached snapshot.
func (s *Store) RefreshReports(ctx context.Context) error {
	if err := s.MetadataStore.RefreshReports(ctx); err != nil {
		return err
	}
	_ = s.Invalidate(ctx)
	return nil
}

// Invalidate drops the cached snapshot.
func (s *Store) Invalidate(ctx context.Context) error {
	ctx, span := telemetry.StartCacheSpan(ctx, "del", telemetry.CacheName(s.key))
	defer span.End()

	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		s.recordError(ctx, "del", err)
		return fmt.Errorf("invalidate stats cache: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordInvalidation()
	}
	return nil
}

// Healthcheck checks the wrapped store only; a Redis outage degrades the
// cache without making the store unhealthy.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		logger.WarnCtx(ctx, "Stats cache unreachable", logger.Err(err))
	}
	return s.MetadataStore.Healthcheck(ctx)
}

// Close closes the Redis client and the wrapped store.
func (s *Store) Close() error {
	return errors.Join(s.client.Close(), s.MetadataStore.Close())
}

func (s *Store) lookup(ctx context.Context) (*metadata.Stats, bool) {
	ctx, span := telemetry.StartCacheSpan(ctx, "get", telemetry.CacheName(s.key))
	defer span.End()

	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.recordError(ctx, "get", err)
		}
		s.recordLookup(ctx, false)
		return nil, false
	}

	var stats metadata.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		s.recordError(ctx, "decode", err)
		s.recordLookup(ctx, false)
		return nil, false
	}
	s.recordLookup(ctx, true)
	return &stats, true
}

func (s *Store) fill(ctx context.Context, stats *metadata.Stats) {
	ctx, span := telemetry.StartCacheSpan(ctx, "set", telemetry.CacheName(s.key))
	defer span.End()

	data, err := json.Marshal(stats)
	if err != nil {
		s.recordError(ctx, "encode", err)
		return
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		s.recordError(ctx, "set", err)
	}
}

func (s *Store) recordLookup(ctx context.Context, hit bool) {
	telemetry.SetAttributes(ctx, telemetry.CacheHit(hit))
	logger.DebugCtx(ctx, "Stats cache lookup", logger.KeyHit, hit)
	if s.metrics != nil {
		s.metrics.RecordLookup(hit)
	}
}

func (s *Store) recordError(ctx context.Context, op string, err error) {
	telemetry.RecordError(ctx, err)
	logger.WarnCtx(ctx, "Stats cache call failed", logger.Operation(op), logger.Err(err))
	if s.metrics != nil {
		s.metrics.RecordError(op)
	}
}

var _ metadata.MetadataStore = (*Store)(nil)
