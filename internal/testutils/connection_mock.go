package testutils

import (
	"bytes"
	"io"
	"net"
	"sync"
	"time"
)

// ConnectionMock is a mock implementation of net.Conn for testing.
// Every Read returns at most one of the scripted chunks, so tests control
// exactly how the byte stream is split across reads.
type ConnectionMock struct {
	mu       sync.Mutex
	chunks   [][]byte
	readErr  error
	writeBuf bytes.Buffer
	closed   bool
}

// NewConnectionMock creates a new mock connection that delivers the given
// chunks one per Read and then io.EOF
func NewConnectionMock(chunks ...string) *ConnectionMock {
	m := &ConnectionMock{readErr: io.EOF}
	for _, c := range chunks {
		m.chunks = append(m.chunks, []byte(c))
	}
	return m
}

// WithReadError replaces the error returned once all chunks are consumed
func (m *ConnectionMock) WithReadError(err error) *ConnectionMock {
	m.readErr = err
	return m
}

func (m *ConnectionMock) Read(b []byte) (n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, net.ErrClosed
	}
	if len(m.chunks) == 0 {
		return 0, m.readErr
	}

	n = copy(b, m.chunks[0])
	if n < len(m.chunks[0]) {
		m.chunks[0] = m.chunks[0][n:]
	} else {
		m.chunks = m.chunks[1:]
	}
	return n, nil
}

func (m *ConnectionMock) Write(b []byte) (n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, net.ErrClosed
	}
	return m.writeBuf.Write(b)
}

func (m *ConnectionMock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsClosed reports whether Close was called
func (m *ConnectionMock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *ConnectionMock) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 6379}
}

func (m *ConnectionMock) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 50000}
}

func (m *ConnectionMock) SetDeadline(t time.Time) error      { return nil }
func (m *ConnectionMock) SetReadDeadline(t time.Time) error  { return nil }
func (m *ConnectionMock) SetWriteDeadline(t time.Time) error { return nil }

// GetWritten returns the raw bytes written to the mock connection
func (m *ConnectionMock) GetWritten() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeBuf.String()
}
