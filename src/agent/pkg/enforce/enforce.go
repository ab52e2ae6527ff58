// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause

// Package enforce classifies intercepted file-open operations against
// the rule store.
//
// The decision point is called synchronously for every intercepted
// open and returns a pure classification: Flagged when the opening
// uid has at least one registered rule, Allowed otherwise. It never
// blocks or denies by itself; escalation (log-only vs. deny) belongs
// to the interception collaborator's own policy layer. Any internal
// fault fails safe to Allowed with an observability record, never by
// taking down the host process.
package enforce

import (
	log "github.com/sirupsen/logrus"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/metrics"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/rules"
)

// Classification is the outcome of one enforcement decision.
type Classification int

const (
	// Allowed means no rule is registered for the uid.
	Allowed Classification = iota
	// Flagged means at least one rule exists for the uid; the caller
	// may escalate.
	Flagged
)

// String returns the label used in logs, metrics and the audit trail.
func (c Classification) String() string {
	if c == Flagged {
		return "flagged"
	}
	return "allowed"
}

// Event is the operation context delivered by the interception
// collaborator alongside the candidate uid.
type Event struct {
	UID  uint32
	PID  uint32
	Comm string
	Path string
}

// Observer receives every decision for out-of-band recording. The
// audit sink implements it.
type Observer interface {
	ObserveDecision(ev Event, c Classification)
}

// Decider is the enforcement decision point. It holds a read-only
// view of the store and never mutates it.
type Decider struct {
	store    rules.Matcher
	metrics  *metrics.Metrics
	observer Observer
}

// NewDecider creates a decision point over the given store view.
// Metrics and observer may be nil.
func NewDecider(store rules.Matcher, m *metrics.Metrics, obs Observer) *Decider {
	return &Decider{store: store, metrics: m, observer: obs}
}

// Decide classifies one intercepted open. The membership check is the
// presence of any rule owned by the uid; rule content is not matched
// by the baseline policy.
func (d *Decider) Decide(ev Event) (c Classification) {
	// The enforcement path must never surface a fault to the
	// intercepted operation's caller.
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Enforcement fault, failing safe to allowed: %v", r)
			if d.metrics != nil {
				d.metrics.DecisionFaultsTotal.Inc()
			}
			c = Allowed
		}
	}()

	if d.store.ContainsMatch(ev.UID, func(rules.Rule) bool { return true }) {
		c = Flagged
	} else {
		c = Allowed
	}

	if c == Flagged {
		log.WithFields(log.Fields{
			"uid":  ev.UID,
			"pid":  ev.PID,
			"comm": ev.Comm,
			"path": ev.Path,
		}).Warn("File open flagged")
	}

	if d.metrics != nil {
		d.metrics.DecisionsTotal.WithLabelValues(c.String()).Inc()
	}
	if d.observer != nil {
		d.observer.ObserveDecision(ev, c)
	}
	return c
}
