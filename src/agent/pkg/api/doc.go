// Package api provides a RESTful HTTP API server for administering the
// per-user rule store and its file-open interception layer.
//
// The API server exposes endpoints for:
//   - Rule management (create, list, delete)
//   - Real-time statistics queries (rule table, open events)
//   - The recorded decision trail
//   - Health checks and system status monitoring
//   - The active daemon configuration
//
// # Architecture
//
// The API server is built on the Gin web framework and integrates with:
//   - The in-memory rule table shared with the control protocol
//   - The BPF data plane that intercepts file opens
//   - The SQLite audit sink that records enforcement decisions
//
// # Example Usage
//
// Basic server setup:
//
//	cfg := api.DefaultConfig()
//	cfg.Port = 8080
//
//	server, err := api.NewAPIServer(cfg, daemonCfg, store, dataPlane, sink, registry)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := server.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Stop()
//
// # Endpoints
//
// Health check:
//   - GET /api/v1/health - Simple health check
//   - GET /api/v1/status - Detailed system status
//
// Rule management:
//   - POST   /api/v1/rules      - Add a rule
//   - GET    /api/v1/rules      - List all rules
//   - GET    /api/v1/rules/:uid - List rules owned by a uid
//   - DELETE /api/v1/rules      - Remove an exact (uid, rule) pair
//
// Statistics:
//   - GET /api/v1/stats        - All statistics
//   - GET /api/v1/stats/table  - Rule table statistics
//   - GET /api/v1/stats/events - Open event statistics
//
// Observability:
//   - GET /api/v1/audit  - Recent enforcement decisions
//   - GET /api/v1/config - Active configuration (read-only)
//   - GET /metrics       - Prometheus scrape endpoint
//
// # Middleware
//
// The server includes the following middleware:
//   - Recovery: Catches panics and prevents server crashes
//   - Logger: Logs all HTTP requests with timing information
//   - CORS: Optional cross-origin resource sharing for web UIs
//
// # Thread Safety
//
// The API server is designed to handle concurrent requests safely.
// The rule table guards itself; handlers only see snapshots.
package api
