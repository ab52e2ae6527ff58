// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package control

import (
	"fmt"
	"net"
	"time"

	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/rules"
	"github.com/lucaxaverius/Rust4Linux/src/agent/pkg/wire"
)

// Client speaks the framed control protocol over the agent's unix
// socket. One connection per request, matching the server.
type Client struct {
	path    string
	timeout time.Duration
}

// NewClient creates a client for the control socket at path.
func NewClient(path string) *Client {
	return &Client{path: path, timeout: ioTimeout}
}

// Do sends one request and returns the reply status and payload. The
// error is non-nil only for channel failures (connect, frame I/O); a
// rejection travels in the status.
func (c *Client) Do(op uint32, payload []byte) (Status, []byte, error) {
	conn, err := net.DialTimeout("unix", c.path, c.timeout)
	if err != nil {
		return 0, nil, fmt.Errorf("connecting to control socket %s: %w", c.path, err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	var header [frameHeaderSize]byte
	putFrameHeader(header[:], op, uint32(len(payload)))
	if _, err := conn.Write(header[:]); err != nil {
		return 0, nil, fmt.Errorf("writing request: %w", err)
	}
	if len(payload) > 0 {
		if _, err := conn.Write(payload); err != nil {
			return 0, nil, fmt.Errorf("writing request payload: %w", err)
		}
	}

	status, reply, err := readReply(conn)
	if err != nil {
		return 0, nil, fmt.Errorf("reading reply: %w", err)
	}
	return status, reply, nil
}

// AddRule registers a rule for uid.
func (c *Client) AddRule(uid uint32, text string) (Status, error) {
	payload, err := wire.EncodeWriteRequest(uid, text)
	if err != nil {
		return StatusInvalidInput, err
	}
	status, _, err := c.Do(wire.OpAddRule, payload)
	return status, err
}

// RemoveRule removes the exact (uid, text) record.
func (c *Client) RemoveRule(uid uint32, text string) (Status, error) {
	payload, err := wire.EncodeWriteRequest(uid, text)
	if err != nil {
		return StatusInvalidInput, err
	}
	status, _, err := c.Do(wire.OpRemoveRule, payload)
	return status, err
}

// ReadRules fetches the atomic by-uid dump. Pass rules.AllUsers for an
// unfiltered dump.
func (c *Client) ReadRules(uid uint32) (Status, []byte, error) {
	return c.Do(wire.OpReadRules, wire.EncodeReadRequest(uid))
}

// ReadAll walks the resumable streaming dump to EOF and returns the
// full pretty-printed output.
func (c *Client) ReadAll() ([]byte, error) {
	var (
		out    []byte
		offset uint64
	)
	for {
		status, chunk, err := c.Do(wire.OpStreamRead, wire.EncodeStreamRequest(offset, wire.DumpBufferSize))
		if err != nil {
			return nil, err
		}
		if status != StatusOK {
			return nil, fmt.Errorf("stream read rejected: %s", status)
		}
		if len(chunk) == 0 {
			return out, nil // EOF
		}
		out = append(out, chunk...)
		offset += uint64(len(chunk))
	}
}

// LegacyWrite submits a raw rule string on the legacy path; the server
// records it for rules.LegacyOwner.
func (c *Client) LegacyWrite(text string) (Status, error) {
	if len(text) == 0 || len(text) > rules.MaxTextLen {
		return StatusInvalidInput, fmt.Errorf("%w: rule text must be 1..%d bytes",
			rules.ErrInvalidInput, rules.MaxTextLen)
	}
	status, _, err := c.Do(wire.OpLegacyWrite, []byte(text))
	return status, err
}
