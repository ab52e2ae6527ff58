// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package dataplane

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/enforce"
)

// Layout of struct open_event as emitted by the LSM program.
const (
	commSize      = 16
	pathSize      = 256
	openEventSize = 4 + 4 + commSize + pathSize
)

// parseOpenEvent decodes one fixed-layout ring buffer record into an
// enforcement event. comm and path are NUL-padded byte arrays; the
// logical strings end at the first NUL.
func parseOpenEvent(raw []byte) (enforce.Event, error) {
	if len(raw) < openEventSize {
		return enforce.Event{}, fmt.Errorf("open event is %d bytes, want %d", len(raw), openEventSize)
	}

	ev := enforce.Event{
		UID:  binary.LittleEndian.Uint32(raw[0:4]),
		PID:  binary.LittleEndian.Uint32(raw[4:8]),
		Comm: cString(raw[8 : 8+commSize]),
		Path: cString(raw[8+commSize : openEventSize]),
	}
	return ev, nil
}

// cString returns the bytes up to the first NUL as a string.
func cString(b []byte) string {
	if n := bytes.IndexByte(b, 0); n >= 0 {
		b = b[:n]
	}
	return string(b)
}
