// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause

// Package config loads the agent's YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// APIConfig holds the admin REST server settings.
type APIConfig struct {
	// Enabled toggles the REST surface entirely.
	Enabled bool `yaml:"enabled"`
	// Host is the address to bind the API server to.
	Host string `yaml:"host"`
	// Port is the HTTP port to listen on.
	Port int `yaml:"port"`
}

// Config is the full agent configuration.
type Config struct {
	// ControlSocket is the unix socket path of the control protocol
	// (the device-node analog).
	ControlSocket string `yaml:"control_socket"`

	// MaxRules bounds the rule table. Adds beyond it fail.
	MaxRules int `yaml:"max_rules"`

	// BPFObject is the compiled LSM object to load. Empty disables
	// interception; the control plane still runs.
	BPFObject string `yaml:"bpf_object"`

	// AuditDB is the SQLite file for the decision trail. Empty
	// disables auditing.
	AuditDB string `yaml:"audit_db"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// StatsInterval is the period, in seconds, of the statistics log
	// line. Zero disables it.
	StatsInterval int `yaml:"stats_interval"`

	// SeedRule installs the historical default rule (uid 1001,
	// "Hello Rust :)") at startup.
	SeedRule bool `yaml:"seed_rule"`

	API APIConfig `yaml:"api"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		ControlSocket: "/run/secrules/control.sock",
		MaxRules:      1024,
		AuditDB:       "",
		LogLevel:      "info",
		StatsInterval: 5,
		API: APIConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8080,
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges the daemon relies on.
func (c *Config) Validate() error {
	if c.ControlSocket == "" {
		return fmt.Errorf("control_socket must not be empty")
	}
	if c.MaxRules <= 0 {
		return fmt.Errorf("max_rules must be positive, got %d", c.MaxRules)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	if c.StatsInterval < 0 {
		return fmt.Errorf("stats_interval must not be negative, got %d", c.StatsInterval)
	}
	if c.API.Enabled {
		if c.API.Port <= 0 || c.API.Port > 65535 {
			return fmt.Errorf("api.port %d is out of range", c.API.Port)
		}
	}
	return nil
}
