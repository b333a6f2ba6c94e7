// Package server exposes the watch-mode HTTP endpoint: /metrics, /health and /.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/maximewewer/leontp-stats/internal/config"
	"github.com/maximewewer/leontp-stats/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

// Server serves the exporter endpoints in watch mode
type Server struct {
	config   *config.Config
	registry *prometheus.Registry
	health   *Health

	mu     sync.Mutex
	server *http.Server
}

// New returns a server for registry; it does not listen until Start
func New(cfg *config.Config, registry *prometheus.Registry, health *Health) *Server {
	return &Server{
		config:   cfg,
		registry: registry,
		health:   health,
	}
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	handlers := NewHandlers(s.config, s.registry, s.health)

	mux.HandleFunc("/metrics", handlers.MetricsHandler)
	mux.HandleFunc("/health", handlers.HealthHandler)
	mux.HandleFunc("/", handlers.IndexHandler)

	return NewMiddleware().Apply(mux)
}

// Start binds the listen address, then serves until ctx is cancelled and
// shuts down gracefully. A bind failure is returned immediately.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Server.Address, strconv.Itoa(s.config.Server.Port))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("server", "Cannot bind listen address", err)
		return fmt.Errorf("HTTP server failed on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.config.Server.ReadTimeout,
		ReadHeaderTimeout: s.config.Server.ReadTimeout,
		WriteTimeout:      s.config.Server.WriteTimeout,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	logger.Infof("server", "Serving metrics on %s", ln.Addr())

	served := make(chan error, 1)
	go func() {
		served <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		logger.Info("server", "Shutting down HTTP server")
		return s.Shutdown(context.Background())
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("server", "Server error", err)
		return fmt.Errorf("HTTP server failed on %s: %w", addr, err)
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server", "Server shutdown failed", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("server shutdown timeout after %s: %w", shutdownTimeout, err)
		}
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("server", "HTTP server stopped")
	return nil
}
