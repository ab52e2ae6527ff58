// SPDX-License-Identifier: GPL-2.0 OR BSD-3-Clause
package control

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// MaxFrameSize bounds the payload length field of an incoming frame.
// Anything larger is rejected before allocation; the largest legal
// request is a write request plus slack for legacy rule bytes.
const MaxFrameSize = 64 * 1024

// frameHeaderSize is opcode (4 bytes) plus payload length (4 bytes).
const frameHeaderSize = 8

// replyHeaderSize is status (4 bytes) plus payload length (4 bytes).
const replyHeaderSize = 8

// ioTimeout bounds a single request/reply exchange so a stalled
// client cannot pin a connection goroutine forever.
const ioTimeout = 10 * time.Second

// Server is the unix-socket device collaborator. Each accepted
// connection carries exactly one framed request:
//
//	[op u32le][len u32le][payload]
//
// and receives one framed reply:
//
//	[status i32le][len u32le][payload]
//
// All protocol semantics live in the Handler; the server only frames.
type Server struct {
	path    string
	handler *Handler

	ln net.Listener
	wg sync.WaitGroup
}

// NewServer creates a control server that will listen on the given
// socket path.
func NewServer(path string, h *Handler) *Server {
	return &Server{path: path, handler: h}
}

// Start binds the socket and begins accepting requests in background
// goroutines. A stale socket file from a previous run is removed.
func (s *Server) Start() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing stale control socket: %w", err)
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.path, err)
	}
	s.ln = ln

	log.Infof("Control server listening on %s", s.path)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop closes the listener, waits for in-flight requests, and removes
// the socket file.
func (s *Server) Stop() error {
	if s.ln == nil {
		return nil
	}
	err := s.ln.Close()
	s.wg.Wait()
	if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
		err = rmErr
	}
	log.Info("Control server stopped")
	return err
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Errorf("Control accept failed: %v", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(conn)
		}()
	}
}

// serveConn reads one framed request, routes it through the handler
// and writes the framed reply. Malformed frames are answered with
// StatusInvalidInput where a reply is still possible.
func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(ioTimeout))

	op, payload, err := readFrame(conn)
	if err != nil {
		log.Warnf("Dropping malformed control frame: %v", err)
		_ = writeReply(conn, StatusInvalidInput, nil)
		return
	}

	status, reply := s.handler.HandleIoctl(op, payload)

	if err := writeReply(conn, status, reply); err != nil {
		log.Warnf("Failed to write control reply: %v", err)
	}
}

func readFrame(r io.Reader) (op uint32, payload []byte, err error) {
	var header [frameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, fmt.Errorf("reading frame header: %w", err)
	}

	op = binary.LittleEndian.Uint32(header[:4])
	length := binary.LittleEndian.Uint32(header[4:8])
	if length > MaxFrameSize {
		return 0, nil, fmt.Errorf("frame payload of %d bytes exceeds limit %d", length, MaxFrameSize)
	}

	// The payload is copied into an owned bounded buffer before any
	// decoding; the raw connection never reaches the codec.
	payload = make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("reading frame payload: %w", err)
	}
	return op, payload, nil
}

func putFrameHeader(dst []byte, op, length uint32) {
	binary.LittleEndian.PutUint32(dst[:4], op)
	binary.LittleEndian.PutUint32(dst[4:8], length)
}

func readReply(r io.Reader) (Status, []byte, error) {
	var header [replyHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, fmt.Errorf("reading reply header: %w", err)
	}

	status := Status(int32(binary.LittleEndian.Uint32(header[:4])))
	length := binary.LittleEndian.Uint32(header[4:8])
	if length > MaxFrameSize {
		return 0, nil, fmt.Errorf("reply payload of %d bytes exceeds limit %d", length, MaxFrameSize)
	}
	if length == 0 {
		return status, nil, nil
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("reading reply payload: %w", err)
	}
	return status, payload, nil
}

func writeReply(w io.Writer, status Status, payload []byte) error {
	var header [replyHeaderSize]byte
	binary.LittleEndian.PutUint32(header[:4], uint32(status))
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(payload)))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}
