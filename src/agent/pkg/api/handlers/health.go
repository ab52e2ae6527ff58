// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/api/models"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/dataplane"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/rules"
)

var startTime = time.Now()

// HealthHandler handles health check requests
type HealthHandler struct {
	dataPlane dataplane.DataPlaneInterface
	store     rules.Table
}

// NewHealthHandler creates a new health handler. A nil data plane
// means file-open interception is not running on this host.
func NewHealthHandler(dp dataplane.DataPlaneInterface, store rules.Table) *HealthHandler {
	return &HealthHandler{
		dataPlane: dp,
		store:     store,
	}
}

// GetHealth handles GET /api/v1/health
// Simple health check endpoint
func (h *HealthHandler) GetHealth(c *gin.Context) {
	response := models.HealthResponse{
		Status:  "ok",
		Message: "API server is healthy",
	}

	c.JSON(http.StatusOK, response)
}

// GetStatus handles GET /api/v1/status
// Detailed status endpoint with data plane information
func (h *HealthHandler) GetStatus(c *gin.Context) {
	dataPlaneStatus := models.DataPlaneStatus{
		Status:  "running",
		Message: "File-open interception is active",
	}

	var stats dataplane.Statistics
	if h.dataPlane != nil {
		stats = h.dataPlane.GetStatistics()
	} else {
		dataPlaneStatus.Status = "disabled"
		dataPlaneStatus.Message = "File-open interception is not loaded"
	}

	response := models.StatusResponse{
		Status:    "ok",
		Version:   "0.1.0",
		DataPlane: dataPlaneStatus,
		API: models.APIStatus{
			Status:  "running",
			Message: "API server is operational",
		},
		Statistics: &models.StatisticsResponse{
			RuleCount:     h.store.Len(),
			RuleCapacity:  h.store.Capacity(),
			TotalOpens:    stats.TotalOpens,
			DroppedEvents: stats.DroppedEvents,
		},
		RuleCount: h.store.Len(),
		Uptime:    int64(time.Since(startTime).Seconds()),
	}

	c.JSON(http.StatusOK, response)
}
