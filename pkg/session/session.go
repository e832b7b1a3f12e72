// Package session owns the open serial device and its two text transcoding
// pipes: incoming bytes decoded to text for the display, outgoing text
// encoded to bytes for transmission.
package session

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/frankcappelle/xterm1/pkg/serialport"
)

// BaudRate is the fixed line speed for every session. There is no
// configuration surface for it.
const BaudRate = 115200

// readBufferSize is the chunk granularity of the decode pipe
const readBufferSize = 4096

var (
	// ErrWriterClosed indicates a write was attempted after session
	// shutdown began.
	ErrWriterClosed = errors.New("session writer is closed")

	// ErrReaderClaimed indicates a second consumer tried to claim the
	// decode pipe while one already holds it.
	ErrReaderClaimed = errors.New("session reader is already claimed")
)

// Session is an open serial device plus its decode and encode pipes. At most
// one Session is open at a time; it is owned exclusively by the connection
// controller from Open until Close.
type Session struct {
	portName string
	port     serialport.Port

	// decode pipe: device bytes -> text. Invalid byte sequences are
	// replaced rather than erroring, and multi-byte sequences are never
	// split across chunk boundaries.
	decode *transform.Reader

	// encode pipe: text -> device bytes
	encode *transform.Writer

	mu         sync.Mutex
	writerLive bool
	closed     bool

	readMu      sync.Mutex
	readClaimed bool
	readBuf     []byte

	bytesSent atomic.Int64
	bytesRecv atomic.Int64
}

// Open requests the named port from the transport at the fixed baud rate and
// layers the transcoding pipes over its byte streams. The device is locked
// exclusively until Close or process exit.
func Open(transport serialport.Transport, portName string) (*Session, error) {
	port, err := transport.Open(portName, BaudRate)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	return &Session{
		portName:   portName,
		port:       port,
		decode:     transform.NewReader(port, unicode.UTF8.NewDecoder()),
		encode:     transform.NewWriter(port, unicode.UTF8.NewEncoder()),
		writerLive: true,
		readBuf:    make([]byte, readBufferSize),
	}, nil
}

// PortName returns the name of the device this session is attached to
func (s *Session) PortName() string {
	return s.portName
}

// AcquireReader claims the decode pipe for a single consumer
func (s *Session) AcquireReader() error {
	s.readMu.Lock()
	defer s.readMu.Unlock()

	if s.readClaimed {
		return ErrReaderClaimed
	}
	s.readClaimed = true
	return nil
}

// ReleaseReader releases the decode pipe claim so another consumer could
// take it. Safe to call when no claim is held.
func (s *Session) ReleaseReader() {
	s.readMu.Lock()
	defer s.readMu.Unlock()

	s.readClaimed = false
}

// ReadChunk blocks until the next decoded text chunk is available and
// returns it. It returns io.EOF when the device stream ends gracefully. A
// chunk may be returned alongside a non-nil error.
func (s *Session) ReadChunk() (string, error) {
	n, err := s.decode.Read(s.readBuf)
	if n > 0 {
		s.bytesRecv.Add(int64(n))
		return string(s.readBuf[:n]), err
	}
	if err == nil {
		err = io.EOF
	}
	return "", err
}

// WriteText pushes text into the encode pipe for transmission. Writes are
// serialized and transmitted in call order. Once shutdown has begun it
// fails with ErrWriterClosed.
func (s *Session) WriteText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.writerLive {
		return ErrWriterClosed
	}

	n, err := s.encode.Write([]byte(text))
	s.bytesSent.Add(int64(n))
	if err != nil {
		return fmt.Errorf("failed to write to session: %w", err)
	}

	return nil
}

// Close is a best-effort, non-blocking release of the device. It detaches
// the writer first so the write path becomes unreachable, then closes the
// port. Completion of the OS-level release is not guaranteed before Close
// returns; only process exit guarantees it.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.writerLive = false

	if err := s.port.Close(); err != nil {
		return fmt.Errorf("failed to close port %s: %w", s.portName, err)
	}

	return nil
}

// Stats returns the byte counters for the session so far
func (s *Session) Stats() (bytesSent, bytesRecv int64) {
	return s.bytesSent.Load(), s.bytesRecv.Load()
}
