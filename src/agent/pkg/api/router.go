package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/api/handlers"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/api/models"
)

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Create handlers
	healthHandler := handlers.NewHealthHandler(s.dataPlane, s.store)
	rulesHandler := handlers.NewRulesHandler(s.store)
	statsHandler := handlers.NewStatisticsHandler(s.dataPlane, s.store)
	auditHandler := handlers.NewAuditHandler(s.sink)

	// API v1 group
	v1 := s.router.Group("/api/v1")
	{
		// Health and status endpoints
		v1.GET("/health", healthHandler.GetHealth)
		v1.GET("/status", healthHandler.GetStatus)

		// Rule table endpoints
		ruleRoutes := v1.Group("/rules")
		{
			ruleRoutes.POST("", rulesHandler.CreateRule)
			ruleRoutes.GET("", rulesHandler.ListRules)
			ruleRoutes.GET("/:uid", rulesHandler.GetRulesByUID)
			ruleRoutes.DELETE("", rulesHandler.DeleteRule)
		}

		// Statistics endpoints
		stats := v1.Group("/stats")
		{
			stats.GET("", statsHandler.GetAllStats)
			stats.GET("/table", statsHandler.GetTableStats)
			stats.GET("/events", statsHandler.GetEventStats)
		}

		// Decision trail
		v1.GET("/audit", auditHandler.GetRecent)

		// Active configuration, read-only
		v1.GET("/config", s.handleGetConfig)
	}

	// Prometheus scrape endpoint
	if s.registry != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
			s.registry, promhttp.HandlerOpts{})))
	}
}

// handleGetConfig reports the configuration the daemon is running
// with. The daemon does not support reconfiguration at runtime, so
// there is no PUT counterpart.
func (s *Server) handleGetConfig(c *gin.Context) {
	if s.daemonCfg == nil {
		c.JSON(http.StatusServiceUnavailable, models.NewErrorResponse(
			http.StatusServiceUnavailable, "configuration unavailable", ""))
		return
	}

	c.JSON(http.StatusOK, models.ConfigResponse{
		ControlSocket: s.daemonCfg.ControlSocket,
		MaxRules:      s.daemonCfg.MaxRules,
		BPFObject:     s.daemonCfg.BPFObject,
		AuditDB:       s.daemonCfg.AuditDB,
		LogLevel:      s.daemonCfg.LogLevel,
		StatsInterval: s.daemonCfg.StatsInterval,
		APIHost:       s.daemonCfg.API.Host,
		APIPort:       s.daemonCfg.API.Port,
	})
}
