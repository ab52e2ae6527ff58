// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package audit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/enforce"
)

func newTestSink(t *testing.T) *SQLiteSink {
	t.Helper()
	sink, err := NewSQLiteSink(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, sink.Close())
	})
	return sink
}

// TestSQLiteSink_ObserveAndRecent tests recording and retrieval order
func TestSQLiteSink_ObserveAndRecent(t *testing.T) {
	sink := newTestSink(t)

	sink.ObserveDecision(enforce.Event{UID: 1000, PID: 1, Comm: "cat", Path: "/etc/passwd"}, enforce.Flagged)
	sink.ObserveDecision(enforce.Event{UID: 1001, PID: 2, Comm: "ls", Path: "/tmp"}, enforce.Allowed)

	entries, err := sink.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first
	assert.Equal(t, uint32(1001), entries[0].UID)
	assert.Equal(t, "allowed", entries[0].Decision)
	assert.Equal(t, uint32(1000), entries[1].UID)
	assert.Equal(t, "flagged", entries[1].Decision)
	assert.Equal(t, "/etc/passwd", entries[1].Path)
}

// TestSQLiteSink_RecentLimit tests the result bound
func TestSQLiteSink_RecentLimit(t *testing.T) {
	sink := newTestSink(t)

	for i := 0; i < 5; i++ {
		sink.ObserveDecision(enforce.Event{UID: uint32(i)}, enforce.Allowed)
	}

	entries, err := sink.Recent(3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	count, err := sink.Count()
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

// TestSQLiteSink_EmptyRecent tests retrieval from an empty trail
func TestSQLiteSink_EmptyRecent(t *testing.T) {
	sink := newTestSink(t)

	entries, err := sink.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
