// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/api/models"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/dataplane"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/rules"
)

// StatisticsHandler handles statistics requests
type StatisticsHandler struct {
	dataPlane dataplane.DataPlaneInterface
	store     rules.Table
}

// NewStatisticsHandler creates a new statistics handler. A nil data
// plane reports zero event counters.
func NewStatisticsHandler(dp dataplane.DataPlaneInterface, store rules.Table) *StatisticsHandler {
	return &StatisticsHandler{
		dataPlane: dp,
		store:     store,
	}
}

func (h *StatisticsHandler) eventStats() dataplane.Statistics {
	if h.dataPlane == nil {
		return dataplane.Statistics{}
	}
	return h.dataPlane.GetStatistics()
}

// GetAllStats handles GET /api/v1/stats
func (h *StatisticsHandler) GetAllStats(c *gin.Context) {
	stats := h.eventStats()

	response := models.StatisticsResponse{
		RuleCount:     h.store.Len(),
		RuleCapacity:  h.store.Capacity(),
		TotalOpens:    stats.TotalOpens,
		DroppedEvents: stats.DroppedEvents,
	}

	c.JSON(http.StatusOK, response)
}

// GetTableStats handles GET /api/v1/stats/table
func (h *StatisticsHandler) GetTableStats(c *gin.Context) {
	count := h.store.Len()
	capacity := h.store.Capacity()

	var fillRate float64
	if capacity > 0 {
		fillRate = float64(count) / float64(capacity) * 100
	}

	response := models.TableStatsResponse{
		RuleCount:    count,
		RuleCapacity: capacity,
		FillRate:     fillRate,
	}

	c.JSON(http.StatusOK, response)
}

// GetEventStats handles GET /api/v1/stats/events
func (h *StatisticsHandler) GetEventStats(c *gin.Context) {
	stats := h.eventStats()

	var dropRate float64
	if stats.TotalOpens > 0 {
		dropRate = float64(stats.DroppedEvents) / float64(stats.TotalOpens) * 100
	}

	response := models.EventStatsResponse{
		TotalOpens:    stats.TotalOpens,
		DroppedEvents: stats.DroppedEvents,
		DropRate:      dropRate,
	}

	c.JSON(http.StatusOK, response)
}
