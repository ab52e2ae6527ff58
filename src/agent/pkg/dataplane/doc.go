// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause

// Package dataplane is the interception collaborator: it loads the BPF
// LSM file_open program, attaches it, and delivers one open event per
// intercepted operation to the enforcement decision point.
//
// The data plane manages:
//   - BPF object lifecycle (loading, attachment, cleanup)
//   - LSM hook integration (file_open)
//   - Ring buffer for kernel-to-userspace event delivery
//   - Per-CPU counters for event statistics
//
// # Architecture
//
// The kernel side publishes a fixed-layout record per file open:
//
//	struct open_event {
//	    u32  uid;
//	    u32  pid;
//	    char comm[16];
//	    char path[256];
//	};
//
// The userspace side parses each record and calls the decision point
// synchronously. The classification is observational here: the LSM
// program itself never denies, matching the advisory baseline policy.
//
// # Example Usage
//
//	dp, err := dataplane.New("/usr/lib/secrules/file_open.bpf.o")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dp.Close()
//
//	go dp.MonitorOpenEvents(decider, m)
//
// # Thread Safety
//
// The DataPlane type is safe for concurrent use. Statistics queries
// and the event loop can run from different goroutines.
package dataplane
