// Package server exposes engine health and Prometheus metrics over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker interface for checking component health.
type HealthChecker interface {
	Liveness() bool
	Readiness(ctx context.Context) bool
	IsHealthy() bool
	GetStatus() map[string]string
}

// Config holds listener ports and paths.
type Config struct {
	HealthPort     int
	LivenessPath   string
	ReadinessPath  string
	MetricsEnabled bool
	MetricsPort    int
	MetricsPath    string
}

func (c Config) withDefaults() Config {
	if c.LivenessPath == "" {
		c.LivenessPath = "/health/live"
	}
	if c.ReadinessPath == "" {
		c.ReadinessPath = "/health/ready"
	}
	if c.MetricsPath == "" {
		c.MetricsPath = "/metrics"
	}
	return c
}

// Server represents the HTTP server for health and metrics.
type Server struct {
	healthServer  *http.Server
	metricsServer *http.Server
	logger        *slog.Logger
}

// NewServer creates a new HTTP server. The metrics listener is omitted
// when metrics are disabled or share the health port, in which case the
// metrics path is served by the health listener.
func NewServer(
	config Config,
	healthChecker HealthChecker,
	registry *prometheus.Registry,
	logger *slog.Logger,
) *Server {
	config = config.withDefaults()

	healthMux := http.NewServeMux()
	healthMux.HandleFunc(config.LivenessPath, LivenessHandler(healthChecker, logger))
	healthMux.HandleFunc(config.ReadinessPath, ReadinessHandler(healthChecker, logger))

	s := &Server{
		healthServer: newHTTPServer(config.HealthPort, healthMux),
		logger:       logger,
	}

	if config.MetricsEnabled {
		metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		if config.MetricsPort == config.HealthPort {
			healthMux.Handle(config.MetricsPath, metricsHandler)
		} else {
			metricsMux := http.NewServeMux()
			metricsMux.Handle(config.MetricsPath, metricsHandler)
			s.metricsServer = newHTTPServer(config.MetricsPort, metricsMux)
		}
	}

	return s
}

func newHTTPServer(port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// HealthHandler returns the handler serving the health listener.
func (s *Server) HealthHandler() http.Handler {
	return s.healthServer.Handler
}

// MetricsHandler returns the handler serving the metrics listener, or nil
// when there is no separate metrics listener.
func (s *Server) MetricsHandler() http.Handler {
	if s.metricsServer == nil {
		return nil
	}
	return s.metricsServer.Handler
}

// Start starts the HTTP listeners in the background.
func (s *Server) Start() error {
	for _, srv := range s.servers() {
		go func(srv *http.Server) {
			s.logger.Info("starting http server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("http server failed", "addr", srv.Addr, "error", err)
			}
		}(srv)
	}
	return nil
}

// Shutdown gracefully shuts down the listeners.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP servers")

	servers := s.servers()
	errChan := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			errChan <- srv.Shutdown(ctx)
		}(srv)
	}

	var lastErr error
	for range servers {
		if err := <-errChan; err != nil {
			s.logger.Error("error shutting down server", "error", err)
			lastErr = err
		}
	}

	return lastErr
}

func (s *Server) servers() []*http.Server {
	servers := []*http.Server{s.healthServer}
	if s.metricsServer != nil {
		servers = append(servers, s.metricsServer)
	}
	return servers
}
