// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// TestDefault tests that the built-in defaults validate
func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 1024, cfg.MaxRules)
	assert.True(t, cfg.API.Enabled)
}

// TestLoad tests file values layered over defaults
func TestLoad(t *testing.T) {
	path := writeConfig(t, `
control_socket: /tmp/test.sock
max_rules: 16
log_level: debug
api:
  enabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/test.sock", cfg.ControlSocket)
	assert.Equal(t, 16, cfg.MaxRules)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.API.Enabled)
	// Untouched fields keep defaults
	assert.Equal(t, 5, cfg.StatsInterval)
}

// TestLoad_Invalid tests rejection of bad files and values
func TestLoad_Invalid(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "control_socket: [not, a, string]"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "max_rules: -1"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "log_level: loud"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "api:\n  port: 99999"))
	assert.Error(t, err)
}
