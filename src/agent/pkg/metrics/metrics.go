// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause

// Package metrics defines the agent's Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the agent.
// Using a struct (not global vars) keeps metrics testable and avoids
// registry conflicts when multiple tests run in parallel.
type Metrics struct {
	// ControlRequestsTotal counts control-protocol requests by opcode
	// and terminal wire status.
	ControlRequestsTotal *prometheus.CounterVec

	// DecisionsTotal counts enforcement classifications by outcome
	// (allowed, flagged).
	DecisionsTotal *prometheus.CounterVec

	// DecisionFaultsTotal counts internal enforcement faults that fell
	// back to the allowed classification.
	DecisionFaultsTotal prometheus.Counter

	// RulesCount tracks the current rule table size.
	RulesCount prometheus.Gauge

	// OpenEventsTotal counts file-open events delivered by the
	// interception collaborator.
	OpenEventsTotal prometheus.Counter
}

// New creates and registers all agent metrics on the given registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ControlRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "secrules_control_requests_total",
			Help: "Total control protocol requests, by opcode and status.",
		}, []string{"op", "status"}),

		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "secrules_decisions_total",
			Help: "Total enforcement decisions, by classification.",
		}, []string{"decision"}),

		DecisionFaultsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "secrules_decision_faults_total",
			Help: "Total enforcement faults that failed safe to allowed.",
		}),

		RulesCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "secrules_rules_count",
			Help: "Current number of records in the rule table.",
		}),

		OpenEventsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "secrules_open_events_total",
			Help: "Total file-open events received from the interception layer.",
		}),
	}

	reg.MustRegister(
		m.ControlRequestsTotal,
		m.DecisionsTotal,
		m.DecisionFaultsTotal,
		m.RulesCount,
		m.OpenEventsTotal,
	)

	return m
}
