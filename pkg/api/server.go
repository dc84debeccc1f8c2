// Package api serves the operational HTTP endpoints of `badgehub serve`:
// liveness, readiness against the metadata store, and Prometheus metrics.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/badgehub/badgehub/internal/logger"
)

// Config configures the ops HTTP server.
type Config struct {
	// Port is the TCP port to listen on. Default: 9090
	Port int

	// ReadTimeout bounds reading a request. Default: 10s
	ReadTimeout time.Duration

	// WriteTimeout bounds writing a response. Default: 10s
	WriteTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.Port <= 0 {
		c.Port = 9090
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
}

// Server is the ops HTTP server. It is created stopped; Start blocks until
// its context is cancelled.
type Server struct {
	server       *http.Server
	config       Config
	shutdownOnce sync.Once
}

// NewServer builds a server whose readiness probe pings checker.
func NewServer(config Config, checker Healthchecker) *Server {
	config.applyDefaults()

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      NewRouter(checker),
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
		},
		config: config,
	}
}

// Start serves until ctx is cancelled, then shuts down within
// shutdownTimeout.
func (s *Server) Start(ctx context.Context, shutdownTimeout time.Duration) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("Ops server listening", logger.KeyAddress, s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		// ctx is already done; shutdown needs a fresh deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("ops server failed: %w", err)
	}
}

// Stop shuts the server down gracefully. Safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("ops server shutdown: %w", err)
			logger.Error("Ops server shutdown error", logger.Err(err))
			return
		}
		logger.Info("Ops server stopped")
	})
	return shutdownErr
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.config.Port
}
