// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package control

import (
	"encoding/binary"
	"net"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/rules"
)

func startTestServer(t *testing.T) (*Client, *rules.Store) {
	t.Helper()

	store := rules.NewStore(128)
	socket := filepath.Join(t.TempDir(), "secrules.sock")

	srv := NewServer(socket, NewHandler(store, nil))
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		assert.NoError(t, srv.Stop())
	})

	return NewClient(socket), store
}

// TestServer_AddRemoveRead tests the full framed round trip
func TestServer_AddRemoveRead(t *testing.T) {
	client, store := startTestServer(t)

	status, err := client.AddRule(1000, "no-write")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, 1, store.Len())

	status, dump, err := client.ReadRules(1000)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, "no-write\n", string(dump))

	status, err = client.RemoveRule(1000, "no-write")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)

	status, err = client.RemoveRule(1000, "no-write")
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, status)
}

// TestServer_StreamReadAll tests the resumable dump over the socket
func TestServer_StreamReadAll(t *testing.T) {
	client, store := startTestServer(t)

	require.NoError(t, store.Add(rules.Rule{OwnerUID: 5, Text: "alpha"}))
	require.NoError(t, store.Add(rules.Rule{OwnerUID: 5, Text: "beta"}))

	out, err := client.ReadAll()
	require.NoError(t, err)
	assert.Equal(t,
		"---- UID: 5 ----\nRule 1: alpha\nRule 2: beta\n ---- ---- ----\n",
		string(out))
}

// TestServer_LegacyWrite tests the raw write path over the socket
func TestServer_LegacyWrite(t *testing.T) {
	client, store := startTestServer(t)

	status, err := client.LegacyWrite("old-style-rule")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)

	got := store.List(rules.LegacyOwner)
	require.Len(t, got, 1)
	assert.Equal(t, "old-style-rule", got[0].Text)
}

// TestServer_OversizedFrame tests the bounded-allocation rejection
func TestServer_OversizedFrame(t *testing.T) {
	client, store := startTestServer(t)

	conn, err := net.Dial("unix", client.path)
	require.NoError(t, err)
	defer conn.Close()

	// Claim a payload far beyond MaxFrameSize; the server must reject
	// without reading it.
	var header [frameHeaderSize]byte
	binary.LittleEndian.PutUint32(header[:4], 1)
	binary.LittleEndian.PutUint32(header[4:8], MaxFrameSize+1)
	_, err = conn.Write(header[:])
	require.NoError(t, err)

	status, _, err := readReply(conn)
	require.NoError(t, err)
	assert.Equal(t, StatusInvalidInput, status)
	assert.Zero(t, store.Len())
}

// TestServer_ConcurrentClients hammers the server with parallel writers
// and readers; every request must terminate with a definite status.
func TestServer_ConcurrentClients(t *testing.T) {
	client, store := startTestServer(t)

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(uid uint32) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				status, err := client.AddRule(uid, "concurrent-rule")
				assert.NoError(t, err)
				assert.Equal(t, StatusOK, status)

				status, _, err = client.ReadRules(uid)
				assert.NoError(t, err)
				assert.Equal(t, StatusOK, status)
			}
		}(uint32(100 + i))
	}
	wg.Wait()

	assert.Equal(t, writers*10, store.Len())
}
