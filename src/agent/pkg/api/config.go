package api

import "time"

// Config holds the HTTP server settings of the admin API. It is
// derived from the daemon configuration's api section plus flag
// overrides; the daemon config itself is served read-only under
// /api/v1/config.
type Config struct {
	// Host is the bind address. The API is an administrative surface
	// with no caller authentication, so it defaults to loopback.
	Host string `json:"host" yaml:"host"`

	// Port is the HTTP port to listen on
	Port int `json:"port" yaml:"port"`

	// ReadTimeout bounds reading an entire request
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout bounds writing a response
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout bounds the wait for the next request on a kept-alive
	// connection
	IdleTimeout time.Duration `json:"idle_timeout" yaml:"idle_timeout"`

	// EnableCORS allows cross-origin requests, for a web UI fronting
	// the agent. Off unless asked for.
	EnableCORS bool `json:"enable_cors" yaml:"enable_cors"`

	// LogLevel sets the log level for API server (debug, info, warn, error)
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// DefaultConfig returns the API settings used when the daemon config
// carries no overrides.
func DefaultConfig() *Config {
	return &Config{
		Host:         "127.0.0.1",
		Port:         8080,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		EnableCORS:   false,
		LogLevel:     "info",
	}
}
