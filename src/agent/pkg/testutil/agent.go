// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause

// Package testutil provides helpers for control-protocol and
// end-to-end tests: an in-process agent bound to a temporary unix
// socket, and parsers for the dump formats.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/control"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/metrics"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/rules"
)

// Agent is an in-process control server wired like the daemon, minus
// the BPF layer.
type Agent struct {
	SocketPath string
	Store      *rules.Store
	Metrics    *metrics.Metrics
	Registry   *prometheus.Registry

	server *control.Server
}

// StartAgent starts a control server on a per-test socket. The server
// is stopped on test cleanup.
func StartAgent(t *testing.T, capacity int) *Agent {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "control.sock")
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	store := rules.NewStore(capacity)

	server := control.NewServer(socketPath, control.NewHandler(store, m))
	require.NoError(t, server.Start())
	t.Cleanup(func() {
		_ = server.Stop()
	})

	return &Agent{
		SocketPath: socketPath,
		Store:      store,
		Metrics:    m,
		Registry:   registry,
		server:     server,
	}
}

// Client returns a fresh control client for the agent's socket.
func (a *Agent) Client() *control.Client {
	return control.NewClient(a.SocketPath)
}

// FillStore adds n rules owned by consecutive uids starting at base.
func (a *Agent) FillStore(t *testing.T, base uint32, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := a.Store.Add(rules.Rule{
			OwnerUID: base + uint32(i),
			Text:     fmt.Sprintf("rule-%d", i),
		})
		require.NoError(t, err)
	}
}
