// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package dataplane

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildRawEvent(uid, pid uint32, comm, path string) []byte {
	raw := make([]byte, openEventSize)
	binary.LittleEndian.PutUint32(raw[0:4], uid)
	binary.LittleEndian.PutUint32(raw[4:8], pid)
	copy(raw[8:8+commSize], comm)
	copy(raw[8+commSize:], path)
	return raw
}

// TestParseOpenEvent tests the fixed-layout record decode
func TestParseOpenEvent(t *testing.T) {
	raw := buildRawEvent(1000, 4242, "cat", "/etc/passwd")

	ev, err := parseOpenEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), ev.UID)
	assert.Equal(t, uint32(4242), ev.PID)
	assert.Equal(t, "cat", ev.Comm)
	assert.Equal(t, "/etc/passwd", ev.Path)
}

// TestParseOpenEvent_Truncated tests rejection of short records
func TestParseOpenEvent_Truncated(t *testing.T) {
	_, err := parseOpenEvent(make([]byte, openEventSize-1))
	assert.Error(t, err)

	_, err = parseOpenEvent(nil)
	assert.Error(t, err)
}

// TestParseOpenEvent_UnterminatedStrings tests that full-width comm
// and path fields decode without reading past the record
func TestParseOpenEvent_UnterminatedStrings(t *testing.T) {
	raw := make([]byte, openEventSize)
	for i := 8; i < len(raw); i++ {
		raw[i] = 'x'
	}

	ev, err := parseOpenEvent(raw)
	require.NoError(t, err)
	assert.Len(t, ev.Comm, commSize)
	assert.Len(t, ev.Path, pathSize)
}
