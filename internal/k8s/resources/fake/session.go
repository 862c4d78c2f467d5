package fake

import (
	"bytes"
	"io"
	"sync"
)

// Session echoes nothing by itself: tests push output with Emit and inspect
// what was written to stdin with Input.
type Session struct {
	mu     sync.Mutex
	stdin  bytes.Buffer
	out    *io.PipeReader
	outW   *io.PipeWriter
	Cols   uint16
	Rows   uint16
	closed bool
}

// NewSession creates an open session
func NewSession() *Session {
	r, w := io.Pipe()
	return &Session{out: r, outW: w}
}

func (s *Session) Read(p []byte) (int, error) { return s.out.Read(p) }

func (s *Session) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, io.ErrClosedPipe
	}
	return s.stdin.Write(p)
}

func (s *Session) Resize(cols, rows uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cols, s.Rows = cols, rows
	return nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.outW.Close()
}

// Emit makes data readable from the session. It blocks until read.
func (s *Session) Emit(data string) error {
	_, err := s.outW.Write([]byte(data))
	return err
}

// Input returns everything written to stdin so far
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stdin.String()
}

// Closed reports whether Close was called
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
