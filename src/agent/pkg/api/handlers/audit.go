// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/api/models"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/audit"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 1000
)

// AuditHandler handles decision trail requests
type AuditHandler struct {
	sink audit.Sink
}

// NewAuditHandler creates a new audit handler. A nil sink means
// auditing is disabled.
func NewAuditHandler(sink audit.Sink) *AuditHandler {
	return &AuditHandler{sink: sink}
}

// GetRecent handles GET /api/v1/audit
// The optional limit query parameter caps the page size.
func (h *AuditHandler) GetRecent(c *gin.Context) {
	if h.sink == nil {
		c.JSON(http.StatusServiceUnavailable, models.NewErrorResponse(
			http.StatusServiceUnavailable, "auditing disabled", ""))
		return
	}

	limit := defaultAuditLimit
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, models.NewErrorResponse(
				http.StatusBadRequest, "invalid limit", "limit must be a positive integer"))
			return
		}
		limit = v
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	entries, err := h.sink.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(
			http.StatusInternalServerError, "failed to query audit trail", err.Error()))
		return
	}

	c.JSON(http.StatusOK, models.AuditListResponse{
		Entries: entries,
		Count:   len(entries),
	})
}
