// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/api/models"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/dataplane"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/rules"
)

// setupStatsTestRouter creates a test router with statistics handler
func setupStatsTestRouter(dp dataplane.DataPlaneInterface, store rules.Table) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handler := NewStatisticsHandler(dp, store)

	router.GET("/api/v1/stats", handler.GetAllStats)
	router.GET("/api/v1/stats/table", handler.GetTableStats)
	router.GET("/api/v1/stats/events", handler.GetEventStats)

	return router
}

// TestGetAllStats_Success tests the combined statistics endpoint
func TestGetAllStats_Success(t *testing.T) {
	mockDP := NewMockDataPlane()
	router := setupStatsTestRouter(mockDP, seededStore(t, 2))

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.StatisticsResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, 2, response.RuleCount)
	assert.Equal(t, 64, response.RuleCapacity)
	assert.Equal(t, uint64(1000), response.TotalOpens)
	assert.Equal(t, uint64(20), response.DroppedEvents)
}

// TestGetTableStats_FillRate tests the fill rate calculation
func TestGetTableStats_FillRate(t *testing.T) {
	router := setupStatsTestRouter(NewMockDataPlane(), seededStore(t, 16))

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/stats/table", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.TableStatsResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, 16, response.RuleCount)
	assert.Equal(t, 64, response.RuleCapacity)
	assert.InDelta(t, 25.0, response.FillRate, 0.01)
}

// TestGetEventStats_DropRate tests the drop rate calculation
func TestGetEventStats_DropRate(t *testing.T) {
	mockDP := NewMockDataPlane()
	mockDP.SetStatistics(dataplane.Statistics{
		TotalOpens:    2000,
		DroppedEvents: 100, // 5%
	})
	router := setupStatsTestRouter(mockDP, seededStore(t, 0))

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/stats/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.EventStatsResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, uint64(2000), response.TotalOpens)
	assert.InDelta(t, 5.0, response.DropRate, 0.01)
}

// TestGetEventStats_NoDataPlane tests event stats without interception
func TestGetEventStats_NoDataPlane(t *testing.T) {
	router := setupStatsTestRouter(nil, seededStore(t, 0))

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/stats/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.EventStatsResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), response.TotalOpens)
	assert.Equal(t, float64(0), response.DropRate)
}
