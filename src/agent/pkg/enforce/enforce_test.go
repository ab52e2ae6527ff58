// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package enforce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/rules"
)

// panickingMatcher simulates an internal fault on the hot path
type panickingMatcher struct{}

func (panickingMatcher) ContainsMatch(uint32, func(rules.Rule) bool) bool {
	panic("store corrupted")
}

// recordingObserver captures decisions for assertions
type recordingObserver struct {
	events  []Event
	results []Classification
}

func (r *recordingObserver) ObserveDecision(ev Event, c Classification) {
	r.events = append(r.events, ev)
	r.results = append(r.results, c)
}

// TestDecide_FlagsKnownUID tests the presence-based classification
func TestDecide_FlagsKnownUID(t *testing.T) {
	store := rules.NewStore(16)
	require.NoError(t, store.Add(rules.Rule{OwnerUID: 1000, Text: "no-write"}))

	d := NewDecider(store, nil, nil)

	assert.Equal(t, Flagged, d.Decide(Event{UID: 1000, PID: 42, Comm: "cat", Path: "/etc/passwd"}))
	assert.Equal(t, Allowed, d.Decide(Event{UID: 1001, PID: 42, Comm: "cat", Path: "/etc/passwd"}))
}

// TestDecide_EmptyStoreAllows tests the default-allow baseline
func TestDecide_EmptyStoreAllows(t *testing.T) {
	d := NewDecider(rules.NewStore(16), nil, nil)
	assert.Equal(t, Allowed, d.Decide(Event{UID: 0}))
}

// TestDecide_FailsSafeOnFault tests that a fault classifies Allowed
// instead of crashing the host
func TestDecide_FailsSafeOnFault(t *testing.T) {
	d := NewDecider(panickingMatcher{}, nil, nil)

	assert.NotPanics(t, func() {
		assert.Equal(t, Allowed, d.Decide(Event{UID: 1000}))
	})
}

// TestDecide_NotifiesObserver tests the observability hook
func TestDecide_NotifiesObserver(t *testing.T) {
	store := rules.NewStore(16)
	require.NoError(t, store.Add(rules.Rule{OwnerUID: 1000, Text: "no-write"}))

	obs := &recordingObserver{}
	d := NewDecider(store, nil, obs)

	d.Decide(Event{UID: 1000, Path: "/tmp/a"})
	d.Decide(Event{UID: 2000, Path: "/tmp/b"})

	require.Len(t, obs.events, 2)
	assert.Equal(t, Flagged, obs.results[0])
	assert.Equal(t, "/tmp/a", obs.events[0].Path)
	assert.Equal(t, Allowed, obs.results[1])
}
