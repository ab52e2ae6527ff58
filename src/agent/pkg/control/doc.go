// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause

// Package control dispatches control-protocol requests to the boundary
// codec and the rule store.
//
// The Handler is the protocol state machine: each request runs
// Received → Decoded → Applied → Responded, or short-circuits to
// Rejected on any validation failure. Requests are stateless between
// calls; the streaming dump is resumed purely by the caller-advanced
// offset, the way read() on a device node works.
//
// The Server in this package is the device-node collaborator: it
// accepts unix-socket connections carrying one framed request each and
// routes them onto the Handler. It holds no protocol state of its own.
package control
