// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause

// perf-test hammers a running agent's control socket with concurrent
// add/read/remove cycles and reports throughput and latency.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/control"
)

var (
	socketPath = flag.String("socket", "/run/secrules/control.sock", "Control socket of the running agent")
	workers    = flag.Int("workers", 8, "Concurrent client goroutines")
	duration   = flag.Int("duration", 30, "Test duration in seconds")
	interval   = flag.Int("interval", 5, "Statistics reporting interval in seconds")
)

type counters struct {
	requests  atomic.Uint64
	rejected  atomic.Uint64
	failed    atomic.Uint64
	latencyNs atomic.Uint64
}

func main() {
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)

	log.Info("=== Rule Control Protocol Performance Test ===")
	log.Infof("Socket: %s", *socketPath)
	log.Infof("Workers: %d", *workers)
	log.Infof("Duration: %d seconds", *duration)
	log.Info("==============================================")

	// One probe request before unleashing the workers
	probe := control.NewClient(*socketPath)
	if _, _, err := probe.ReadRules(0); err != nil {
		log.Fatalf("Agent not reachable: %v", err)
	}
	log.Info("✓ Agent reachable")

	var (
		totals  counters
		samples = newSampler(100000)
		stop    = make(chan struct{})
		wg      sync.WaitGroup
	)

	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			client := control.NewClient(*socketPath)

			// Every worker owns a disjoint uid range so removes never
			// race with another worker's adds
			uid := uint32(10000 + worker*1000)
			seq := 0

			for {
				select {
				case <-stop:
					return
				default:
				}

				text := fmt.Sprintf("perf-rule-%d-%d", worker, seq)
				seq++

				runOp(&totals, samples, func() (control.Status, error) {
					return client.AddRule(uid, text)
				})
				runOp(&totals, samples, func() (control.Status, error) {
					s, _, err := client.ReadRules(uid)
					return s, err
				})
				runOp(&totals, samples, func() (control.Status, error) {
					return client.RemoveRule(uid, text)
				})
			}
		}(w)
	}

	ticker := time.NewTicker(time.Duration(*interval) * time.Second)
	defer ticker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	deadline := time.After(time.Duration(*duration) * time.Second)

	start := time.Now()
	var last uint64

loop:
	for {
		select {
		case <-ticker.C:
			now := totals.requests.Load()
			rps := float64(now-last) / float64(*interval)
			log.Infof("Requests: %d (%.0f req/s), rejected: %d, failed: %d",
				now, rps, totals.rejected.Load(), totals.failed.Load())
			last = now
		case <-deadline:
			log.Info("=== Test duration completed ===")
			break loop
		case <-sigChan:
			log.Info("=== Test interrupted by user ===")
			break loop
		}
	}

	close(stop)
	wg.Wait()
	elapsed := time.Since(start)

	requests := totals.requests.Load()
	log.Info("=== Final Statistics ===")
	log.Infof("  Requests:   %d", requests)
	log.Infof("  Rejected:   %d", totals.rejected.Load())
	log.Infof("  Failed:     %d", totals.failed.Load())
	log.Infof("  Elapsed:    %s", elapsed.Round(time.Millisecond))

	if requests > 0 {
		log.Infof("  Throughput: %.0f req/s", float64(requests)/elapsed.Seconds())
		log.Infof("  Avg latency: %s",
			time.Duration(totals.latencyNs.Load()/requests))

		p50, p99 := samples.percentiles()
		log.Infof("  p50 latency: %s", p50)
		log.Infof("  p99 latency: %s", p99)
	} else {
		log.Warn("No requests completed during test")
	}

	log.Info("=== Test Complete ===")
}

func runOp(c *counters, s *sampler, op func() (control.Status, error)) {
	begin := time.Now()
	status, err := op()
	elapsed := time.Since(begin)

	if err != nil {
		c.failed.Add(1)
		return
	}
	c.requests.Add(1)
	c.latencyNs.Add(uint64(elapsed.Nanoseconds()))
	s.record(elapsed)

	if status != control.StatusOK && status != control.StatusTruncated {
		c.rejected.Add(1)
	}
}

// sampler keeps a bounded prefix of latency samples for percentile
// estimation.
type sampler struct {
	mu      sync.Mutex
	samples []time.Duration
	cap     int
}

func newSampler(capacity int) *sampler {
	return &sampler{cap: capacity}
}

func (s *sampler) record(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.samples) < s.cap {
		s.samples = append(s.samples, d)
	}
}

func (s *sampler) percentiles() (p50, p99 time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.samples) == 0 {
		return 0, 0
	}
	sorted := make([]time.Duration, len(s.samples))
	copy(sorted, s.samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[len(sorted)*50/100], sorted[len(sorted)*99/100]
}
