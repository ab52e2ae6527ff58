// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package dataplane

import (
	"errors"
	"fmt"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
	"github.com/cilium/ebpf/ringbuf"
	"github.com/cilium/ebpf/rlimit"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/enforce"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/metrics"
)

// Names of the objects expected in the compiled BPF ELF.
const (
	progFileOpen  = "lsm_file_open"
	mapOpenEvents = "open_events"
	mapStats      = "stats_map"
)

// DataPlane manages the BPF interception layer.
type DataPlane struct {
	coll     *ebpf.Collection
	lsmLink  link.Link
	rbReader *ringbuf.Reader
	objPath  string
}

// Statistics holds open-event processing statistics, summed across
// the kernel side's per-CPU counters.
type Statistics struct {
	TotalOpens    uint64
	DroppedEvents uint64
}

// New loads the BPF object at objPath and attaches the LSM file_open
// program.
func New(objPath string) (*DataPlane, error) {
	// The memlock rlimit bounds BPF map allocation on older kernels
	if err := rlimit.RemoveMemlock(); err != nil {
		return nil, fmt.Errorf("removing memlock limit: %w", err)
	}

	spec, err := ebpf.LoadCollectionSpec(objPath)
	if err != nil {
		return nil, fmt.Errorf("loading BPF object %s: %w", objPath, err)
	}

	coll, err := ebpf.NewCollection(spec)
	if err != nil {
		return nil, fmt.Errorf("creating BPF collection: %w", err)
	}

	log.Debugf("BPF objects loaded from %s", objPath)

	prog, ok := coll.Programs[progFileOpen]
	if !ok {
		coll.Close()
		return nil, fmt.Errorf("program %q not found in %s", progFileOpen, objPath)
	}

	lsmLink, err := link.AttachLSM(link.LSMOptions{Program: prog})
	if err != nil {
		coll.Close()
		if errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.EINVAL) {
			return nil, fmt.Errorf("attaching LSM hook (kernel built without CONFIG_BPF_LSM?): %w", err)
		}
		return nil, fmt.Errorf("attaching LSM hook: %w", err)
	}

	log.Info("✓ LSM file_open program attached")

	events, ok := coll.Maps[mapOpenEvents]
	if !ok {
		lsmLink.Close()
		coll.Close()
		return nil, fmt.Errorf("map %q not found in %s", mapOpenEvents, objPath)
	}

	rbReader, err := ringbuf.NewReader(events)
	if err != nil {
		lsmLink.Close()
		coll.Close()
		return nil, fmt.Errorf("creating ring buffer reader: %w", err)
	}

	return &DataPlane{
		coll:     coll,
		lsmLink:  lsmLink,
		rbReader: rbReader,
		objPath:  objPath,
	}, nil
}

// Close cleans up the data plane resources.
func (dp *DataPlane) Close() error {
	var errs []error

	if dp.rbReader != nil {
		if err := dp.rbReader.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing ring buffer reader: %w", err))
		}
	}
	if dp.lsmLink != nil {
		if err := dp.lsmLink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("detaching LSM program: %w", err))
		}
	}
	if dp.coll != nil {
		dp.coll.Close()
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	log.Info("Data plane closed successfully")
	return nil
}

// GetStatistics retrieves current open-event statistics.
func (dp *DataPlane) GetStatistics() Statistics {
	stats := Statistics{}

	statsMap, ok := dp.coll.Maps[mapStats]
	if !ok {
		return stats
	}

	// Sum the per-CPU slots for one counter index
	readStat := func(key uint32) uint64 {
		var values []uint64
		if err := statsMap.Lookup(&key, &values); err != nil {
			log.Debugf("Failed to lookup stat key %d: %v", key, err)
			return 0
		}
		var total uint64
		for _, v := range values {
			total += v
		}
		return total
	}

	stats.TotalOpens = readStat(0)
	stats.DroppedEvents = readStat(1)
	return stats
}

// MonitorOpenEvents continuously reads open events from the ring
// buffer and classifies each through the decision point. Returns when
// the ring buffer is closed.
func (dp *DataPlane) MonitorOpenEvents(decider *enforce.Decider, m *metrics.Metrics) {
	log.Info("Starting file-open event monitoring")

	for {
		record, err := dp.rbReader.Read()
		if err != nil {
			if errors.Is(err, ringbuf.ErrClosed) {
				log.Info("Ring buffer closed")
				return
			}
			log.Errorf("Reading from ring buffer: %v", err)
			continue
		}

		ev, err := parseOpenEvent(record.RawSample)
		if err != nil {
			log.Warnf("Discarding malformed open event: %v", err)
			continue
		}

		if m != nil {
			m.OpenEventsTotal.Inc()
		}
		decider.Decide(ev)
	}
}
