// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/api/models"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/rules"
)

// RulesHandler handles rule table requests
type RulesHandler struct {
	store rules.Table
}

// NewRulesHandler creates a new rules handler
func NewRulesHandler(store rules.Table) *RulesHandler {
	return &RulesHandler{store: store}
}

// CreateRule handles POST /api/v1/rules
func (h *RulesHandler) CreateRule(c *gin.Context) {
	var req models.RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(
			http.StatusBadRequest, "invalid request body", err.Error()))
		return
	}

	// Only the legacy write path may record the legacy owner; the
	// store itself rejects the all-users sentinel.
	if req.UID == rules.LegacyOwner {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(
			http.StatusBadRequest, "invalid rule", "uid is a reserved sentinel"))
		return
	}

	err := h.store.Add(rules.Rule{OwnerUID: req.UID, Text: req.Rule})
	switch {
	case errors.Is(err, rules.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(
			http.StatusBadRequest, "invalid rule", err.Error()))
		return
	case errors.Is(err, rules.ErrTableFull):
		c.JSON(http.StatusInsufficientStorage, models.NewErrorResponse(
			http.StatusInsufficientStorage, "rule table full", err.Error()))
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse(
			http.StatusInternalServerError, "failed to add rule", err.Error()))
		return
	}

	c.JSON(http.StatusCreated, models.RuleResponse{UID: req.UID, Rule: req.Rule})
}

// ListRules handles GET /api/v1/rules
func (h *RulesHandler) ListRules(c *gin.Context) {
	c.JSON(http.StatusOK, toRuleList(h.store.List(rules.AllUsers)))
}

// GetRulesByUID handles GET /api/v1/rules/:uid
func (h *RulesHandler) GetRulesByUID(c *gin.Context) {
	uid, err := parseUID(c.Param("uid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(
			http.StatusBadRequest, "invalid uid", err.Error()))
		return
	}

	c.JSON(http.StatusOK, toRuleList(h.store.List(uid)))
}

// DeleteRule handles DELETE /api/v1/rules
// The (uid, rule) pair identifies the record; the first exact match is
// removed.
func (h *RulesHandler) DeleteRule(c *gin.Context) {
	var req models.RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewErrorResponse(
			http.StatusBadRequest, "invalid request body", err.Error()))
		return
	}

	if !h.store.Remove(req.UID, req.Rule) {
		c.JSON(http.StatusNotFound, models.NewErrorResponse(
			http.StatusNotFound, "rule not found", ""))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "rule removed"})
}

// parseUID parses a decimal uid path parameter, rejecting the reserved
// sentinel values.
func parseUID(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	uid := uint32(v)
	if uid == rules.AllUsers || uid == rules.LegacyOwner {
		return 0, errors.New("uid is a reserved sentinel")
	}
	return uid, nil
}

func toRuleList(in []rules.Rule) models.RuleListResponse {
	out := make([]models.RuleResponse, 0, len(in))
	for _, r := range in {
		out = append(out, models.RuleResponse{UID: r.OwnerUID, Rule: r.Text})
	}
	return models.RuleListResponse{Rules: out, Count: len(out)}
}
