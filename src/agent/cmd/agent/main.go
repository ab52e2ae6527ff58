// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/api"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/audit"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/config"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/control"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/dataplane"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/enforce"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/metrics"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/rules"
)

// The seed rule mirrors the historical default installed at module
// load time.
const (
	seedRuleUID  = 1001
	seedRuleText = "Hello Rust :)"
)

var (
	configPath    string
	socketPath    string
	bpfObject     string
	auditDB       string
	maxRules      int
	logLevel      string
	statsInterval int
	enableAPI     bool
	apiHost       string
	apiPort       int
)

var rootCmd = &cobra.Command{
	Use:   "secrules-agent",
	Short: "Per-user security rule agent",
	Long:  `A daemon holding a per-user access rule table, exposing the rule control protocol over a unix socket and optionally flagging file opens through a BPF LSM hook`,
	Run:   runAgent,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	rootCmd.Flags().StringVar(&socketPath, "socket", "", "Control socket path")
	rootCmd.Flags().StringVar(&bpfObject, "bpf-object", "", "Compiled BPF object for file-open interception")
	rootCmd.Flags().StringVar(&auditDB, "audit-db", "", "SQLite file for the decision trail")
	rootCmd.Flags().IntVar(&maxRules, "max-rules", 0, "Rule table capacity")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().IntVarP(&statsInterval, "stats-interval", "s", -1, "Statistics print interval in seconds (0 disables)")
	rootCmd.Flags().BoolVarP(&enableAPI, "enable-api", "a", true, "Enable REST API server")
	rootCmd.Flags().StringVar(&apiHost, "api-host", "", "API server host")
	rootCmd.Flags().IntVar(&apiPort, "api-port", 0, "API server port")
}

// loadConfig merges the YAML file with explicit flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	if cmd.Flags().Changed("socket") {
		cfg.ControlSocket = socketPath
	}
	if cmd.Flags().Changed("bpf-object") {
		cfg.BPFObject = bpfObject
	}
	if cmd.Flags().Changed("audit-db") {
		cfg.AuditDB = auditDB
	}
	if cmd.Flags().Changed("max-rules") {
		cfg.MaxRules = maxRules
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("stats-interval") {
		cfg.StatsInterval = statsInterval
	}
	if cmd.Flags().Changed("enable-api") {
		cfg.API.Enabled = enableAPI
	}
	if cmd.Flags().Changed("api-host") {
		cfg.API.Host = apiHost
	}
	if cmd.Flags().Changed("api-port") {
		cfg.API.Port = apiPort
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runAgent(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup logging
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	log.Infof("Starting security rule agent on %s", cfg.ControlSocket)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// Rule table
	store := rules.NewStore(cfg.MaxRules)
	if cfg.SeedRule {
		if err := store.Add(rules.Rule{OwnerUID: seedRuleUID, Text: seedRuleText}); err != nil {
			log.Warnf("Failed to add seed rule: %v", err)
		}
	}
	m.RulesCount.Set(float64(store.Len()))

	log.Info("✓ Rule table initialized")

	// Audit sink
	var sink audit.Sink
	if cfg.AuditDB != "" {
		sqlSink, err := audit.NewSQLiteSink(cfg.AuditDB)
		if err != nil {
			log.Fatalf("Failed to open audit sink: %v", err)
		}
		defer sqlSink.Close()
		sink = sqlSink

		log.Info("✓ Audit sink initialized")
	}

	// Control protocol server, the device-node analog
	ctl := control.NewServer(cfg.ControlSocket, control.NewHandler(store, m))
	if err := ctl.Start(); err != nil {
		log.Fatalf("Failed to start control server: %v", err)
	}
	defer ctl.Stop()

	log.Info("✓ Control server started")

	// File-open interception
	var dpIface dataplane.DataPlaneInterface
	if cfg.BPFObject != "" {
		dp, err := dataplane.New(cfg.BPFObject)
		if err != nil {
			log.Fatalf("Failed to load interception layer: %v", err)
		}
		defer dp.Close()
		dpIface = dp

		decider := enforce.NewDecider(store, m, sink)
		go dp.MonitorOpenEvents(decider, m)

		log.Info("✓ File-open interception attached")
	} else {
		log.Info("File-open interception disabled (no BPF object configured)")
	}

	// REST API
	var apiServer *api.Server
	if cfg.API.Enabled {
		apiConfig := api.DefaultConfig()
		apiConfig.Host = cfg.API.Host
		apiConfig.Port = cfg.API.Port
		apiConfig.LogLevel = cfg.LogLevel

		apiServer, err = api.NewAPIServer(apiConfig, cfg, store, dpIface, sink, registry)
		if err != nil {
			log.Fatalf("Failed to create API server: %v", err)
		}
		if err := apiServer.Start(); err != nil {
			log.Fatalf("Failed to start API server: %v", err)
		}

		log.Infof("✓ API server started on http://%s:%d", cfg.API.Host, cfg.API.Port)
	}

	// Print statistics periodically
	if cfg.StatsInterval > 0 {
		ticker := time.NewTicker(time.Duration(cfg.StatsInterval) * time.Second)
		defer ticker.Stop()

		go func() {
			for range ticker.C {
				m.RulesCount.Set(float64(store.Len()))

				log.Info("=== Statistics ===")
				log.Infof("  Rules:          %d / %d", store.Len(), store.Capacity())
				if dpIface != nil {
					stats := dpIface.GetStatistics()
					log.Infof("  Total Opens:    %d", stats.TotalOpens)
					log.Infof("  Dropped Events: %d", stats.DroppedEvents)
				}
			}
		}()
	}

	// Wait for interrupt signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	log.Info("✓ Agent running. Press Ctrl+C to exit")

	<-sig
	log.Info("Shutting down...")

	if apiServer != nil {
		if err := apiServer.Stop(); err != nil {
			log.Errorf("Error stopping API server: %v", err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
