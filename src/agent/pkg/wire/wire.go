// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/rules"
)

// Opcodes of the control protocol. Add and remove carry a write
// request; read carries a read request and returns a dump payload.
const (
	OpAddRule    uint32 = 1
	OpRemoveRule uint32 = 2
	OpReadRules  uint32 = 3

	// OpLegacyWrite is the earliest protocol revision: a raw rule
	// string with no uid, accepted as an add for rules.LegacyOwner.
	OpLegacyWrite uint32 = 4

	// OpStreamRead resumes the plain streaming dump at a caller-held
	// offset, mirroring read() on the device node.
	OpStreamRead uint32 = 5
)

const (
	// RuleSize is the fixed size of the rule buffer in write requests.
	RuleSize = 256

	// WriteRequestSize is uid (4 bytes) plus the rule buffer.
	WriteRequestSize = 4 + RuleSize

	// ReadRequestSize is the uid selector of a read request.
	ReadRequestSize = 4

	// DumpBufferSize is the fixed capacity of the ioctl read reply.
	DumpBufferSize = 4096

	// StreamRequestSize is offset (8 bytes) plus count (4 bytes).
	StreamRequestSize = 12
)

// DecodeWriteRequest validates an add/remove payload and converts it
// into an owned rule record.
//
// The rule buffer's logical length is the position of the first NUL.
// A NUL in the final byte yields the maximum rule length of
// RuleSize-1; a buffer with no NUL at all is unterminated and
// rejected. Sentinel uids are rejected as owners.
func DecodeWriteRequest(payload []byte) (rules.Rule, error) {
	if len(payload) != WriteRequestSize {
		return rules.Rule{}, fmt.Errorf("%w: write request is %d bytes, want %d",
			rules.ErrInvalidInput, len(payload), WriteRequestSize)
	}

	uid := binary.LittleEndian.Uint32(payload[:4])
	buf := payload[4:]

	n := bytes.IndexByte(buf, 0)
	if n < 0 {
		return rules.Rule{}, fmt.Errorf("%w: rule buffer is unterminated", rules.ErrInvalidInput)
	}

	if uid == rules.LegacyOwner {
		return rules.Rule{}, fmt.Errorf("%w: uid %d is reserved for legacy writes", rules.ErrInvalidInput, uid)
	}

	r := rules.Rule{
		OwnerUID: uid,
		Text:     string(buf[:n]),
	}
	if err := r.Validate(); err != nil {
		return rules.Rule{}, err
	}
	return r, nil
}

// DecodeReadRequest extracts the uid selector of a read-by-uid
// request. rules.AllUsers means "all users" and is the only sentinel
// accepted here.
func DecodeReadRequest(payload []byte) (uint32, error) {
	if len(payload) != ReadRequestSize {
		return 0, fmt.Errorf("%w: read request is %d bytes, want %d",
			rules.ErrInvalidInput, len(payload), ReadRequestSize)
	}
	uid := binary.LittleEndian.Uint32(payload)
	if uid == rules.LegacyOwner {
		return 0, fmt.Errorf("%w: uid %d is reserved for legacy writes", rules.ErrInvalidInput, uid)
	}
	return uid, nil
}

// DecodeStreamRequest extracts the (offset, count) pair of a resumable
// streaming read.
func DecodeStreamRequest(payload []byte) (offset uint64, count uint32, err error) {
	if len(payload) != StreamRequestSize {
		return 0, 0, fmt.Errorf("%w: stream request is %d bytes, want %d",
			rules.ErrInvalidInput, len(payload), StreamRequestSize)
	}
	offset = binary.LittleEndian.Uint64(payload[:8])
	count = binary.LittleEndian.Uint32(payload[8:12])
	return offset, count, nil
}

// DecodeLegacyWrite validates a raw rule string from the legacy
// write-without-uid path. The payload is the rule bytes themselves,
// optionally NUL- or newline-terminated, and is bound to
// rules.LegacyOwner by the caller.
func DecodeLegacyWrite(payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", fmt.Errorf("%w: empty legacy write", rules.ErrInvalidInput)
	}
	if n := bytes.IndexByte(payload, 0); n >= 0 {
		payload = payload[:n]
	}
	payload = bytes.TrimRight(payload, "\n")
	if len(payload) == 0 {
		return "", fmt.Errorf("%w: empty legacy write", rules.ErrInvalidInput)
	}
	if len(payload) > rules.MaxTextLen {
		return "", fmt.Errorf("%w: legacy rule exceeds %d bytes", rules.ErrInvalidInput, rules.MaxTextLen)
	}
	if bytes.IndexByte(payload, 0) >= 0 {
		return "", fmt.Errorf("%w: legacy rule contains interior NUL", rules.ErrInvalidInput)
	}
	return string(payload), nil
}

// EncodeDump serializes records as newline-terminated rule texts, in
// table order, into a buffer of at most capacity bytes.
//
// If the full serialization does not fit, output stops at the last
// complete record boundary and the returned error is
// rules.ErrTruncated; a rule line is never cut mid-string and the
// buffer capacity is never exceeded.
func EncodeDump(records []rules.Rule, capacity int) ([]byte, error) {
	if capacity < 0 {
		capacity = 0
	}
	out := make([]byte, 0, capacity)
	for _, r := range records {
		line := len(r.Text) + 1
		if len(out)+line > capacity {
			return out, fmt.Errorf("%w: %d of %d records fit in %d bytes",
				rules.ErrTruncated, countLines(out), len(records), capacity)
		}
		out = append(out, r.Text...)
		out = append(out, '\n')
	}
	return out, nil
}

func countLines(b []byte) int {
	return bytes.Count(b, []byte{'\n'})
}

// EncodeWriteRequest builds the fixed-layout add/remove payload used
// by control clients. The inverse of DecodeWriteRequest.
func EncodeWriteRequest(uid uint32, text string) ([]byte, error) {
	if len(text) == 0 || len(text) > rules.MaxTextLen {
		return nil, fmt.Errorf("%w: rule text must be 1..%d bytes", rules.ErrInvalidInput, rules.MaxTextLen)
	}
	// An interior NUL would decode as a shorter rule than was sent.
	for i := 0; i < len(text); i++ {
		if text[i] == 0 {
			return nil, fmt.Errorf("%w: rule text contains interior NUL", rules.ErrInvalidInput)
		}
	}
	payload := make([]byte, WriteRequestSize)
	binary.LittleEndian.PutUint32(payload[:4], uid)
	copy(payload[4:], text)
	return payload, nil
}

// EncodeReadRequest builds the uid selector payload of a read request.
func EncodeReadRequest(uid uint32) []byte {
	payload := make([]byte, ReadRequestSize)
	binary.LittleEndian.PutUint32(payload, uid)
	return payload
}

// EncodeStreamRequest builds the (offset, count) payload of a
// resumable streaming read.
func EncodeStreamRequest(offset uint64, count uint32) []byte {
	payload := make([]byte, StreamRequestSize)
	binary.LittleEndian.PutUint64(payload[:8], offset)
	binary.LittleEndian.PutUint32(payload[8:12], count)
	return payload
}
