// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package control

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/metrics"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/rules"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/wire"
)

// Status is the wire-level result of a control request. Non-negative
// values are successes (possibly qualified), negative values are
// rejections mapped from the error taxonomy.
type Status int32

const (
	StatusOK        Status = 0
	StatusNotFound  Status = 1
	StatusTruncated Status = 2

	StatusInvalidInput Status = -1
	StatusFull         Status = -2
	StatusInternal     Status = -3
	StatusBadOpcode    Status = -4
)

// String returns the human-readable name used in logs and by the CLI.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusTruncated:
		return "truncated"
	case StatusInvalidInput:
		return "invalid_input"
	case StatusFull:
		return "full"
	case StatusInternal:
		return "internal"
	case StatusBadOpcode:
		return "bad_opcode"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// statusFromError maps a store/codec error onto the wire status.
func statusFromError(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, rules.ErrInvalidInput):
		return StatusInvalidInput
	case errors.Is(err, rules.ErrTableFull):
		return StatusFull
	case errors.Is(err, rules.ErrTruncated):
		return StatusTruncated
	default:
		return StatusInternal
	}
}

// Handler dispatches decoded control requests to the rule store. It is
// stateless between requests and safe for concurrent use: all shared
// state lives behind the store's own guard.
type Handler struct {
	store   rules.Table
	metrics *metrics.Metrics
}

// NewHandler creates a handler over the given store. Metrics may be
// nil in tests.
func NewHandler(store rules.Table, m *metrics.Metrics) *Handler {
	return &Handler{store: store, metrics: m}
}

// HandleIoctl processes one ioctl-style request and returns the wire
// status plus the response payload (empty for write-path ops).
func (h *Handler) HandleIoctl(op uint32, payload []byte) (Status, []byte) {
	var (
		status Status
		reply  []byte
	)

	switch op {
	case wire.OpAddRule:
		status = h.addRule(payload)
	case wire.OpRemoveRule:
		status = h.removeRule(payload)
	case wire.OpReadRules:
		status, reply = h.readRules(payload)
	case wire.OpLegacyWrite:
		status = h.HandleWrite(payload)
	case wire.OpStreamRead:
		status, reply = h.streamRead(payload)
	default:
		log.Warnf("Unknown control opcode %d", op)
		status = StatusBadOpcode
	}

	h.observe(op, status)
	return status, reply
}

// addRule decodes and applies an add request. Decode happens before
// any lock is taken; the store acquires its write guard only for the
// append itself.
func (h *Handler) addRule(payload []byte) Status {
	r, err := wire.DecodeWriteRequest(payload)
	if err != nil {
		log.Warnf("Rejected add request: %v", err)
		return statusFromError(err)
	}

	if err := h.store.Add(r); err != nil {
		log.Warnf("Failed to add rule for uid %d: %v", r.OwnerUID, err)
		return statusFromError(err)
	}

	log.Infof("Rule added: uid=%d", r.OwnerUID)
	return StatusOK
}

// removeRule decodes and applies a remove request. A miss is reported
// as StatusNotFound, which is a non-fatal outcome, not a rejection.
func (h *Handler) removeRule(payload []byte) Status {
	r, err := wire.DecodeWriteRequest(payload)
	if err != nil {
		log.Warnf("Rejected remove request: %v", err)
		return statusFromError(err)
	}

	if !h.store.Remove(r.OwnerUID, r.Text) {
		log.Debugf("Remove miss: uid=%d", r.OwnerUID)
		return StatusNotFound
	}

	log.Infof("Rule removed: uid=%d", r.OwnerUID)
	return StatusOK
}

// readRules serves the atomic by-uid snapshot dump. The reply is at
// most wire.DumpBufferSize bytes of newline-terminated rule texts;
// StatusTruncated reports a dump cut at a record boundary.
func (h *Handler) readRules(payload []byte) (Status, []byte) {
	uid, err := wire.DecodeReadRequest(payload)
	if err != nil {
		log.Warnf("Rejected read request: %v", err)
		return statusFromError(err), nil
	}

	dump, err := wire.EncodeDump(h.store.List(uid), wire.DumpBufferSize)
	if err != nil {
		log.Warnf("Dump for uid %d truncated: %v", uid, err)
		return StatusTruncated, dump
	}
	return StatusOK, dump
}

// HandleWrite is the legacy add-without-uid path. The rule is recorded
// for rules.LegacyOwner, which the codec keeps disjoint from the
// all-users read sentinel.
func (h *Handler) HandleWrite(payload []byte) Status {
	text, err := wire.DecodeLegacyWrite(payload)
	if err != nil {
		log.Warnf("Rejected legacy write: %v", err)
		return statusFromError(err)
	}

	// The legacy owner uid is applied here, never taken from the
	// caller; the codec rejects it at the boundary.
	if err := h.store.Add(rules.Rule{OwnerUID: rules.LegacyOwner, Text: text}); err != nil {
		log.Warnf("Failed legacy add: %v", err)
		return statusFromError(err)
	}

	log.Infof("Legacy rule added (owner=%d)", rules.LegacyOwner)
	return StatusOK
}

// streamRead serves the resumable dump-all read. The dump is
// regenerated per call and sliced at the caller's offset, so a caller
// advancing its offset walks the whole dump to EOF (empty reply).
func (h *Handler) streamRead(payload []byte) (Status, []byte) {
	offset, count, err := wire.DecodeStreamRequest(payload)
	if err != nil {
		log.Warnf("Rejected stream read: %v", err)
		return statusFromError(err), nil
	}

	dump := h.renderFullDump()
	if offset >= uint64(len(dump)) {
		return StatusOK, nil // EOF
	}

	end := offset + uint64(count)
	if end > uint64(len(dump)) {
		end = uint64(len(dump))
	}
	return StatusOK, dump[offset:end]
}

// HandleRead is the device read() entrypoint: it returns up to count
// bytes of the full dump starting at *offset and advances the offset,
// mirroring the resumable semantics of the char device.
func (h *Handler) HandleRead(offset *uint64, count uint32) ([]byte, Status) {
	status, chunk := h.streamRead(wire.EncodeStreamRequest(*offset, count))
	if status != StatusOK {
		return nil, status
	}
	*offset += uint64(len(chunk))
	return chunk, StatusOK
}

// renderFullDump produces the grouped pretty-printed dump served by
// the streaming read path, one uid section per user in first-seen
// order.
func (h *Handler) renderFullDump() []byte {
	snapshot := h.store.List(rules.AllUsers)

	var (
		order []uint32
		byUID = make(map[uint32][]string)
	)
	for _, r := range snapshot {
		if _, seen := byUID[r.OwnerUID]; !seen {
			order = append(order, r.OwnerUID)
		}
		byUID[r.OwnerUID] = append(byUID[r.OwnerUID], r.Text)
	}

	var out []byte
	for _, uid := range order {
		out = append(out, fmt.Sprintf("---- UID: %d ----\n", uid)...)
		for i, text := range byUID[uid] {
			out = append(out, fmt.Sprintf("Rule %d: %s\n", i+1, text)...)
		}
		out = append(out, " ---- ---- ----\n"...)
	}
	return out
}

func (h *Handler) observe(op uint32, status Status) {
	if h.metrics == nil {
		return
	}
	h.metrics.ControlRequestsTotal.WithLabelValues(opName(op), status.String()).Inc()
	h.metrics.RulesCount.Set(float64(h.store.Len()))
}

func opName(op uint32) string {
	switch op {
	case wire.OpAddRule:
		return "add"
	case wire.OpRemoveRule:
		return "remove"
	case wire.OpReadRules:
		return "read"
	case wire.OpLegacyWrite:
		return "legacy_write"
	case wire.OpStreamRead:
		return "stream_read"
	default:
		return "unknown"
	}
}
