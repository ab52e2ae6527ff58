// Package api provides the RESTful HTTP API server for administering
// the per-user rule store. It exposes endpoints for rule management,
// statistics queries, the audit trail, health checks, and the active
// configuration.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/audit"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/config"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/dataplane"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/rules"
)

// Server represents the HTTP API server that provides RESTful endpoints
// for managing rules, querying statistics, and monitoring system health.
// It uses the Gin framework and reads the same rule table the control
// protocol mutates.
type Server struct {
	config     *Config
	daemonCfg  *config.Config
	store      rules.Table
	dataPlane  dataplane.DataPlaneInterface
	sink       audit.Sink
	registry   *prometheus.Registry
	httpServer *http.Server
	router     *gin.Engine
}

// NewAPIServer creates and initializes a new API server instance.
// It sets up the Gin router, configures middleware, and registers all
// routes. The data plane and audit sink may be nil when interception
// or auditing is disabled; the corresponding endpoints degrade
// gracefully. A nil registry disables the /metrics endpoint.
func NewAPIServer(cfg *Config, daemonCfg *config.Config, store rules.Table,
	dp dataplane.DataPlaneInterface, sink audit.Sink, registry *prometheus.Registry) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if store == nil {
		return nil, fmt.Errorf("rule table must not be nil")
	}

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &Server{
		config:    cfg,
		daemonCfg: daemonCfg,
		store:     store,
		dataPlane: dp,
		sink:      sink,
		registry:  registry,
		router:    gin.New(),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server, nil
}

// Start starts the HTTP server in a background goroutine.
// The server will listen on the configured host and port.
// This method returns immediately; the server runs asynchronously.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	log.Infof("Starting API server on %s", addr)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("API server stopped: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
// It waits for in-flight requests to complete (up to 30 seconds).
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	log.Info("Shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Errorf("API server forced to shutdown: %v", err)
		return err
	}

	log.Info("API server stopped gracefully")
	return nil
}

// GetRouter returns the underlying Gin router instance.
// This is primarily useful for testing purposes to inject
// test HTTP requests without starting the full HTTP server.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
